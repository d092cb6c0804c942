// Package academics holds the semester, subject, schedule and examination
// commands. Department admins manage them; other roles read them.
package academics

import (
	"github.com/spf13/cobra"
)

// SemesterCmd is the parent command for semester management
var SemesterCmd = &cobra.Command{
	Use:   "semester",
	Short: "List and manage semesters",
}

// SubjectCmd is the parent command for subject management
var SubjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "List and manage the subjects of a semester",
}

// ScheduleCmd is the parent command for weekly timetables
var ScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show and extend a semester's weekly timetable",
}

// ExamCmd is the parent command for examinations
var ExamCmd = &cobra.Command{
	Use:   "exam",
	Short: "List and schedule examinations",
}
