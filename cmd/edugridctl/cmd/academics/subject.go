package academics

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var (
	subjectSemester string
	subjectName     string
	subjectCode     string
)

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects, optionally of one semester",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := config.Client(cmd.Context())
		if err != nil {
			return err
		}
		subjects, err := client.ListSubjects(cmd.Context(), subjectSemester)
		if err != nil {
			return err
		}
		return output.Table("No subjects", subjectRows(subjects))
	},
}

func subjectRows(subjects []sdk.Subject) pterm.TableData {
	rows := pterm.TableData{{"ID", "Code", "Name"}}
	for _, s := range subjects {
		rows = append(rows, []string{s.ID, s.Codename, s.Name})
	}
	return rows
}

func subjectInput() sdk.SubjectInput {
	return sdk.SubjectInput{Name: subjectName, Codename: subjectCode, Semester: subjectSemester}
}

var subjectCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Add a subject to a semester",
	Example: `  edugridctl subject create --semester s1 --name "Data Structures" --code CS201`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		created, err := client.CreateSubject(ctx, subjectInput())
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Created subject %s (%s)\n", created.ID, subjectCode)
		return nil
	},
}

var subjectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a subject's name, code and semester",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		if err := client.UpdateSubject(ctx, args[0], subjectInput()); err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Updated subject %s\n", args[0])
		return nil
	},
}

var subjectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		if err := client.DeleteSubject(ctx, args[0]); err != nil {
			return err
		}
		pterm.Success.Printf("Deleted subject %s\n", args[0])
		return nil
	},
}

func init() {
	SubjectCmd.AddCommand(subjectListCmd, subjectCreateCmd, subjectUpdateCmd, subjectDeleteCmd)

	subjectListCmd.Flags().StringVar(&subjectSemester, "semester", "", "Semester ID whose subjects to list")
	for _, c := range []*cobra.Command{subjectCreateCmd, subjectUpdateCmd} {
		c.Flags().StringVar(&subjectSemester, "semester", "", "Semester ID the subject belongs to")
		c.Flags().StringVar(&subjectName, "name", "", "Subject name")
		c.Flags().StringVar(&subjectCode, "code", "", "Subject codename")
	}
}
