package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/pkg/sdk"
)

var (
	submitSubject string
	submitDate    string
	submitPresent []string
	submitAbsent  []string
	submitOut     string
)

// buildStatuses merges the present and absent ID lists. A student listed in
// both is rejected.
func buildStatuses(present, absent []string) (map[string]sdk.AttendanceStatus, error) {
	statuses := make(map[string]sdk.AttendanceStatus, len(present)+len(absent))
	add := func(ids []string, status sdk.AttendanceStatus) error {
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if prev, ok := statuses[id]; ok && prev != status {
				return fmt.Errorf("student %s is marked both present and absent", id)
			}
			statuses[id] = status
		}
		return nil
	}
	if err := add(present, sdk.AttendancePresent); err != nil {
		return nil, err
	}
	if err := add(absent, sdk.AttendanceAbsent); err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("at least one student must be marked")
	}
	return statuses, nil
}

func parseDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	d, err := time.Parse(sdk.AttendanceDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", raw)
	}
	return d, nil
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Mark attendance for a subject",
	Long: `Records attendance for a subject on a date and downloads the PDF receipt
the portal generates for it.`,
	Example: `  edugridctl attendance submit --subject sub1 --present st1,st3 --absent st2 --out receipt.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses, err := buildStatuses(submitPresent, submitAbsent)
		if err != nil {
			return err
		}
		date, err := parseDate(submitDate, time.Now())
		if err != nil {
			return err
		}

		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}

		sheet := sdk.NewAttendanceSheet(submitSubject, date, statuses)
		receipt, err := client.SubmitAttendance(cmd.Context(), sheet)
		if err != nil {
			return err
		}

		present, absent := sheet.Summary()
		pterm.Success.Printf("Attendance recorded for %s on %s (%d present, %d absent)\n",
			sheet.SubjectID, sheet.Date, present, absent)

		if receipt.PDFErr != nil {
			pterm.Warning.Printf("Receipt unavailable: %v\n", receipt.PDFErr)
			return nil
		}
		if submitOut != "" {
			if err := writePDF(submitOut, receipt.PDF); err != nil {
				return err
			}
			pterm.Info.Printf("Receipt saved to %s\n", submitOut)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitSubject, "subject", "", "Subject ID")
	submitCmd.Flags().StringVar(&submitDate, "date", "", "Date as YYYY-MM-DD (default today)")
	submitCmd.Flags().StringSliceVar(&submitPresent, "present", nil, "Comma-separated IDs of present students")
	submitCmd.Flags().StringSliceVar(&submitAbsent, "absent", nil, "Comma-separated IDs of absent students")
	submitCmd.Flags().StringVarP(&submitOut, "out", "o", "", "Write the PDF receipt to this file")
	_ = submitCmd.MarkFlagRequired("subject")
}
