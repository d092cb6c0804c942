package attendance

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var (
	mineSubject string
	mineDate    string
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Show your attendance history and rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, client, err := config.RequireRole(ctx, sdk.RoleStudent)
		if err != nil {
			return err
		}
		records, err := client.StudentAttendance(ctx, user.ID, sdk.AttendanceQuery{SubjectID: mineSubject, Date: mineDate})
		if err != nil {
			return output.FieldErrors(err)
		}
		if err := output.Table("No attendance recorded", recordRows(records)); err != nil {
			return err
		}
		if len(records) > 0 {
			pterm.Info.Println(summaryLine(records))
		}
		return nil
	},
}

func recordRows(records []sdk.AttendanceRecord) pterm.TableData {
	rows := pterm.TableData{{"Date", "Subject", "Status"}}
	for _, r := range records {
		rows = append(rows, []string{r.Day(), r.SubjectName, string(r.Status)})
	}
	return rows
}

func summaryLine(records []sdk.AttendanceRecord) string {
	present, absent, rate := sdk.SummarizeAttendance(records)
	return fmt.Sprintf("Present %d, absent %d (%.1f%% attendance)", present, absent, rate)
}

func init() {
	mineCmd.Flags().StringVar(&mineSubject, "subject", "", "Only this subject ID")
	mineCmd.Flags().StringVar(&mineDate, "date", "", "Only this date, YYYY-MM-DD")
}
