// Package assignment holds the commands teachers use to publish assignments
// and students use to hand them in.
package assignment

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

// AssignmentCmd is the parent command for assignment operations
var AssignmentCmd = &cobra.Command{
	Use:   "assignment",
	Short: "Publish, list and hand in assignments",
}

var (
	year    string
	subject string
	dueDate string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List assignments",
	Long: `Teachers see the assignments they published. Students see the assignments
of their semester, each marked with whether they handed it in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, client, err := config.RequireRole(ctx, sdk.RoleTeacher, sdk.RoleStudent)
		if err != nil {
			return err
		}

		var assignments []sdk.Assignment
		if user.Role == sdk.RoleTeacher {
			assignments, err = client.ListAssignments(ctx, sdk.AssignmentFilter{TeacherID: user.ID, Year: year, SubjectID: subject})
		} else {
			assignments, err = client.ListStudentAssignments(ctx, year)
		}
		if err != nil {
			return err
		}
		return output.Table("No assignments", assignmentRows(assignments))
	},
}

func assignmentRows(assignments []sdk.Assignment) pterm.TableData {
	rows := pterm.TableData{{"ID", "Subject", "Due", "Done", "File"}}
	for _, a := range assignments {
		due := a.DueDate
		if len(due) > len(sdk.AttendanceDateLayout) {
			due = due[:len(sdk.AttendanceDateLayout)]
		}
		done := ""
		if a.Done {
			done = "yes"
		}
		rows = append(rows, []string{a.ID, a.Subject.String(), due, done, a.FileURL})
	}
	return rows
}

var uploadCmd = &cobra.Command{
	Use:     "upload <file>",
	Short:   "Publish an assignment file",
	Example: `  edugridctl assignment upload sheet1.pdf --year s1 --subject sub1 --due 2026-11-10`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, client, err := config.RequireRole(ctx, sdk.RoleTeacher)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		err = client.UploadAssignment(ctx, sdk.AssignmentUpload{
			TeacherID: user.ID,
			Year:      year,
			SubjectID: subject,
			DueDate:   dueDate,
			FileName:  filepath.Base(args[0]),
			File:      f,
		})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Published %s\n", filepath.Base(args[0]))
		return nil
	},
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <assignment-id>",
	Short: "List what students handed in for an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleTeacher)
		if err != nil {
			return err
		}
		submissions, err := client.ListSubmissions(ctx, args[0])
		if err != nil {
			return err
		}
		rows := pterm.TableData{{"ID", "Student", "File"}}
		for _, s := range submissions {
			rows = append(rows, []string{s.ID, s.Student.String(), s.FileURL})
		}
		return output.Table("No submissions yet", rows)
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Count submissions per assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, client, err := config.RequireRole(ctx, sdk.RoleTeacher)
		if err != nil {
			return err
		}
		counts, err := client.SubmissionCounts(ctx, user.ID, year)
		if err != nil {
			return err
		}
		return output.Table("No submissions yet", countRows(counts))
	},
}

// countRows lists assignments by id so the output is stable.
func countRows(counts map[string]int) pterm.TableData {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := pterm.TableData{{"Assignment", "Submissions"}}
	for _, id := range ids {
		rows = append(rows, []string{id, strconv.Itoa(counts[id])})
	}
	return rows
}

var submitCmd = &cobra.Command{
	Use:   "submit <assignment-id> <file>",
	Short: "Hand in an assignment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, client, err := config.RequireRole(ctx, sdk.RoleStudent)
		if err != nil {
			return err
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		err = client.SubmitAssignment(ctx, sdk.SubmissionUpload{
			StudentID:    user.ID,
			AssignmentID: args[0],
			FileName:     filepath.Base(args[1]),
			File:         f,
		})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Submitted %s for assignment %s\n", filepath.Base(args[1]), args[0])
		return nil
	},
}

func init() {
	AssignmentCmd.AddCommand(listCmd, uploadCmd, submissionsCmd, countsCmd, submitCmd)

	for _, c := range []*cobra.Command{listCmd, uploadCmd, countsCmd} {
		c.Flags().StringVar(&year, "year", "", "Semester ID")
	}
	for _, c := range []*cobra.Command{listCmd, uploadCmd} {
		c.Flags().StringVar(&subject, "subject", "", "Subject ID")
	}
	uploadCmd.Flags().StringVar(&dueDate, "due", "", "Due date, YYYY-MM-DD")
}
