package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ScheduleTimeLayout is the clock format of a period's start and end.
const ScheduleTimeLayout = "15:04"

// Weekdays a period can fall on, numbered the way the backend stores them.
// Sunday is never scheduled.
var Weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}

// Period is one recurring weekly slot of a semester's timetable.
type Period struct {
	ID        string `json:"_id"`
	Teacher   Ref    `json:"teacher"`
	Subject   Ref    `json:"subject"`
	Semester  Ref    `json:"semester"`
	Day       int    `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Weekday returns the period's day of week.
func (p Period) Weekday() time.Weekday {
	return time.Weekday(p.Day % 7)
}

// PeriodInput is the payload for adding a period.
type PeriodInput struct {
	Teacher   string `json:"teacher" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
	Day       int    `json:"day" validate:"min=1,max=6"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

func (in PeriodInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	start, _ := time.Parse(ScheduleTimeLayout, in.StartTime)
	end, _ := time.Parse(ScheduleTimeLayout, in.EndTime)
	if !end.After(start) {
		return &ValidationError{Fields: map[string]string{"endTime": "End time must be after start time"}}
	}
	return nil
}

// ListSchedule returns the timetable of a semester, dropping entries outside Monday to Saturday.
func (c *Client) ListSchedule(ctx context.Context, semesterID string) ([]Period, error) {
	if semesterID == "" {
		return nil, fmt.Errorf("semester id is required")
	}
	var periods []Period
	if err := c.doJSON(ctx, http.MethodGet, "schedule/fetch-with-semester/"+url.PathEscape(semesterID), nil, nil, &periods); err != nil {
		return nil, err
	}
	kept := periods[:0]
	for _, p := range periods {
		if p.Day >= 1 && p.Day <= 6 {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// CreatePeriod adds a period to a semester's timetable.
func (c *Client) CreatePeriod(ctx context.Context, input PeriodInput) (*Period, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var period Period
	if err := c.doJSON(ctx, http.MethodPost, "schedule/create", nil, input, &period); err != nil {
		return nil, err
	}
	return &period, nil
}
