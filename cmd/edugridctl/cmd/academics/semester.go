package academics

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var (
	semesterText string
	semesterNum  string
)

var semesterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List semesters",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := config.Client(cmd.Context())
		if err != nil {
			return err
		}
		semesters, err := client.ListSemesters(cmd.Context())
		if err != nil {
			return err
		}
		return output.Table("No semesters", semesterRows(semesters))
	},
}

func semesterRows(semesters []sdk.Semester) pterm.TableData {
	rows := pterm.TableData{{"ID", "Semester", "Number"}}
	for _, s := range semesters {
		rows = append(rows, []string{s.ID, s.Text, s.Num})
	}
	return rows
}

var semesterCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Add a semester",
	Example: `  edugridctl semester create --text "First Year" --num 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		created, err := client.CreateSemester(ctx, sdk.SemesterInput{Text: semesterText, Num: semesterNum})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Created semester %s (%s)\n", created.ID, semesterText)
		return nil
	},
}

var semesterUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename or renumber a semester",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		if err := client.UpdateSemester(ctx, args[0], sdk.SemesterInput{Text: semesterText, Num: semesterNum}); err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Updated semester %s\n", args[0])
		return nil
	},
}

var semesterDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a semester",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		if err := client.DeleteSemester(ctx, args[0]); err != nil {
			return err
		}
		pterm.Success.Printf("Deleted semester %s\n", args[0])
		return nil
	},
}

func init() {
	SemesterCmd.AddCommand(semesterListCmd, semesterCreateCmd, semesterUpdateCmd, semesterDeleteCmd)

	for _, c := range []*cobra.Command{semesterCreateCmd, semesterUpdateCmd} {
		c.Flags().StringVar(&semesterText, "text", "", "Semester name, e.g. \"First Year\"")
		c.Flags().StringVar(&semesterNum, "num", "", "Semester number")
	}
}
