package notice

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Notices the director addresses to named teachers and HODs",
}

var staffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff notices",
	Long: `Directors see every staff notice they published. Other roles see the
notices that name them as a recipient.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, client, err := config.Account(ctx)
		if err != nil {
			return err
		}

		var notices []sdk.DirectorNotice
		if user.Role == sdk.RoleDirector {
			notices, err = client.ListDirectorNotices(ctx)
		} else {
			notices, err = client.ListNoticesAddressedTo(ctx, user.Name)
		}
		if err != nil {
			return err
		}
		return output.Table("No staff notices", staffRows(notices))
	},
}

func staffRows(notices []sdk.DirectorNotice) pterm.TableData {
	rows := pterm.TableData{{"ID", "Title", "Audience", "Recipients", "Message"}}
	for _, n := range notices {
		rows = append(rows, []string{n.ID, n.Title, n.Audience, strings.Join(n.Recipients(), ", "), n.Message})
	}
	return rows
}

var (
	staffTitle    string
	staffMessage  string
	staffAudience string
	staffTo       []string
	staffMembers  []string
)

var staffCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Publish a staff notice",
	Example: `  edugridctl notice staff create --audience Teachers --to "Tess Ray" --to "Sam Lee" --title Audit --message "Audit on Friday"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDirector)
		if err != nil {
			return err
		}
		created, err := client.CreateDirectorNotice(ctx, sdk.DirectorNoticeInput{
			Title:           staffTitle,
			Message:         staffMessage,
			Audience:        staffAudience,
			SelectedMembers: staffMembers,
			RecipientNames:  staffTo,
		})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Published staff notice %s to %d recipient(s)\n", created.ID, len(staffTo))
		return nil
	},
}

var staffUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the title and message of a staff notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDirector)
		if err != nil {
			return err
		}
		updated, err := client.UpdateDirectorNotice(ctx, args[0], sdk.DirectorNoticeUpdate{Title: staffTitle, Message: staffMessage})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Updated staff notice %s (%s)\n", args[0], updated.Title)
		return nil
	},
}

var staffDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a staff notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDirector)
		if err != nil {
			return err
		}
		if err := client.DeleteDirectorNotice(ctx, args[0]); err != nil {
			return err
		}
		pterm.Success.Printf("Deleted staff notice %s\n", args[0])
		return nil
	},
}

func init() {
	staffCmd.AddCommand(staffListCmd, staffCreateCmd, staffUpdateCmd, staffDeleteCmd)

	for _, c := range []*cobra.Command{staffCreateCmd, staffUpdateCmd} {
		c.Flags().StringVar(&staffTitle, "title", "", "Notice title")
		c.Flags().StringVar(&staffMessage, "message", "", "Notice body")
		_ = c.MarkFlagRequired("title")
		_ = c.MarkFlagRequired("message")
	}
	staffCreateCmd.Flags().StringVar(&staffAudience, "audience", sdk.DirectorAudienceTeachers, "Audience: Teachers or HODs")
	staffCreateCmd.Flags().StringArrayVar(&staffTo, "to", nil, "Recipient name (repeatable)")
	staffCreateCmd.Flags().StringArrayVar(&staffMembers, "member", nil, "Recipient account ID (repeatable)")
	_ = staffCreateCmd.MarkFlagRequired("to")
}
