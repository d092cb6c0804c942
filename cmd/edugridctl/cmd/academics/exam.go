package academics

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var (
	examDate     string
	examType     string
	examSubject  string
	examSemester string
)

var examListCmd = &cobra.Command{
	Use:   "list <semester-id>",
	Short: "List the examinations of a semester",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := config.Client(cmd.Context())
		if err != nil {
			return err
		}
		exams, err := client.ListExaminations(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output.Table("No examinations scheduled", examRows(exams))
	},
}

func examRows(exams []sdk.Examination) pterm.TableData {
	rows := pterm.TableData{{"ID", "Date", "Type", "Subject"}}
	for _, e := range exams {
		date := e.Date
		if len(date) > len(sdk.AttendanceDateLayout) {
			date = date[:len(sdk.AttendanceDateLayout)]
		}
		rows = append(rows, []string{e.ID, date, e.Type, e.Subject.String()})
	}
	return rows
}

func examInput() sdk.ExaminationInput {
	return sdk.ExaminationInput{Date: examDate, Type: examType, SubjectID: examSubject, SemesterID: examSemester}
}

var examCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Schedule an examination",
	Example: `  edugridctl exam create --semester s1 --subject sub1 --type Midterm --date 2026-11-03`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		created, err := client.CreateExamination(ctx, examInput())
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Scheduled %s examination %s on %s\n", examType, created.ID, examDate)
		return nil
	},
}

var examUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Reschedule an examination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		if err := client.UpdateExamination(ctx, args[0], examInput()); err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Updated examination %s\n", args[0])
		return nil
	},
}

var examDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Cancel an examination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		if err := client.DeleteExamination(ctx, args[0]); err != nil {
			return err
		}
		pterm.Success.Printf("Cancelled examination %s\n", args[0])
		return nil
	},
}

func init() {
	ExamCmd.AddCommand(examListCmd, examCreateCmd, examUpdateCmd, examDeleteCmd)

	for _, c := range []*cobra.Command{examCreateCmd, examUpdateCmd} {
		c.Flags().StringVar(&examSemester, "semester", "", "Semester ID")
		c.Flags().StringVar(&examSubject, "subject", "", "Subject ID")
		c.Flags().StringVar(&examType, "type", "", "Examination type, e.g. Midterm")
		c.Flags().StringVar(&examDate, "date", "", "Examination date, YYYY-MM-DD")
	}
}
