package notice

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var (
	createTitle    string
	createMessage  string
	createAudience string
)

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Publish a notice",
	Example: `  edugridctl notice create --title "Exam week" --message "Exams start on Monday" --audience student`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}

		created, err := client.CreateNotice(cmd.Context(), sdk.NoticeInput{
			Title:    createTitle,
			Message:  createMessage,
			Audience: createAudience,
		})
		if err != nil {
			return output.FieldErrors(err)
		}

		pterm.Success.Printf("Published notice %s (%s)\n", created.ID, created.Title)
		return nil
	},
}

var (
	updateTitle    string
	updateMessage  string
	updateAudience string
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Replace the content of a notice",
	Args:    cobra.ExactArgs(1),
	Example: `  edugridctl notice update 65f0c1 --title "Exam week" --message "Exams start on Tuesday"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		err = client.UpdateNotice(cmd.Context(), args[0], sdk.NoticeInput{
			Title:    updateTitle,
			Message:  updateMessage,
			Audience: updateAudience,
		})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Updated notice %s\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.DeleteNotice(cmd.Context(), args[0]); err != nil {
			return err
		}
		pterm.Success.Printf("Deleted notice %s\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Notice title")
	createCmd.Flags().StringVar(&createMessage, "message", "", "Notice body")
	createCmd.Flags().StringVar(&createAudience, "audience", string(sdk.NoticeAudienceAll), "Audience: all, student or teacher")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("message")

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "Notice title")
	updateCmd.Flags().StringVar(&updateMessage, "message", "", "Notice body")
	updateCmd.Flags().StringVar(&updateAudience, "audience", string(sdk.NoticeAudienceAll), "Audience: all, student or teacher")
	_ = updateCmd.MarkFlagRequired("title")
	_ = updateCmd.MarkFlagRequired("message")
}
