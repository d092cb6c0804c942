package academics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/cmd/edugridctl/internal/output"
	"github.com/edugrid/portal/pkg/sdk"
)

var scheduleListCmd = &cobra.Command{
	Use:   "list <semester-id>",
	Short: "Show a semester's timetable, Monday to Saturday",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := config.Client(cmd.Context())
		if err != nil {
			return err
		}
		periods, err := client.ListSchedule(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output.Table("No periods scheduled", periodRows(periods))
	},
}

// periodRows orders periods by weekday and start time.
func periodRows(periods []sdk.Period) pterm.TableData {
	sorted := append([]sdk.Period(nil), periods...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Day != sorted[j].Day {
			return sorted[i].Day < sorted[j].Day
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	rows := pterm.TableData{{"Day", "Time", "Subject", "Teacher"}}
	for _, p := range sorted {
		rows = append(rows, []string{
			p.Weekday().String(),
			p.StartTime + "-" + p.EndTime,
			p.Subject.String(),
			p.Teacher.String(),
		})
	}
	return rows
}

// parseWeekday accepts a day number from 1 (Monday) to 6 (Saturday), or an
// English day name abbreviated to at least three letters.
func parseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(sdk.Weekdays) {
			return n, nil
		}
		return 0, fmt.Errorf("day %d is outside 1 (Monday) to 6 (Saturday)", n)
	}
	if len(s) >= 3 {
		for _, d := range sdk.Weekdays {
			if strings.HasPrefix(strings.ToLower(d.String()), s) {
				return int(d), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown day %q; use Monday to Saturday", s)
}

var (
	periodSemester string
	periodSubject  string
	periodTeacher  string
	periodDay      string
	periodStart    string
	periodEnd      string
)

var scheduleAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a weekly period to a semester's timetable",
	Example: `  edugridctl schedule add --semester s1 --subject sub1 --teacher t1 --day tue --start 09:00 --end 10:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, client, err := config.RequireRole(ctx, sdk.RoleDepartment)
		if err != nil {
			return err
		}
		day, err := parseWeekday(periodDay)
		if err != nil {
			return err
		}
		created, err := client.CreatePeriod(ctx, sdk.PeriodInput{
			Teacher:   periodTeacher,
			Subject:   periodSubject,
			Semester:  periodSemester,
			Day:       day,
			StartTime: periodStart,
			EndTime:   periodEnd,
		})
		if err != nil {
			return output.FieldErrors(err)
		}
		pterm.Success.Printf("Added period %s on %s %s-%s\n", created.ID, sdk.Weekdays[day-1], periodStart, periodEnd)
		return nil
	},
}

func init() {
	ScheduleCmd.AddCommand(scheduleListCmd, scheduleAddCmd)

	f := scheduleAddCmd.Flags()
	f.StringVar(&periodSemester, "semester", "", "Semester ID")
	f.StringVar(&periodSubject, "subject", "", "Subject ID")
	f.StringVar(&periodTeacher, "teacher", "", "Teacher ID")
	f.StringVar(&periodDay, "day", "", "Day of week, Monday to Saturday")
	f.StringVar(&periodStart, "start", "", "Start time, HH:MM")
	f.StringVar(&periodEnd, "end", "", "End time, HH:MM")
	_ = scheduleAddCmd.MarkFlagRequired("day")
}
