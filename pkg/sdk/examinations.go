package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Examination is a scheduled exam of one subject.
type Examination struct {
	ID       string `json:"_id"`
	Date     string `json:"examDate"`
	Type     string `json:"examType"`
	Subject  Ref    `json:"subject"`
	Semester Ref    `json:"semester"`
}

// ExaminationInput is the payload for scheduling or rescheduling an exam.
type ExaminationInput struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Type       string `json:"examType" validate:"required"`
	SubjectID  string `json:"subjectId" validate:"required"`
	SemesterID string `json:"semesterId" validate:"required"`
}

// ListExaminations returns the exams of a semester.
func (c *Client) ListExaminations(ctx context.Context, semesterID string) ([]Examination, error) {
	if semesterID == "" {
		return nil, fmt.Errorf("semester id is required")
	}
	var exams []Examination
	if err := c.doJSONKey(ctx, http.MethodGet, "examination/semester/"+url.PathEscape(semesterID), nil, nil, "examinations", &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// CreateExamination schedules an exam.
func (c *Client) CreateExamination(ctx context.Context, input ExaminationInput) (*Examination, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	var exam Examination
	if err := c.doJSON(ctx, http.MethodPost, "examination/create", nil, input, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

// UpdateExamination reschedules an exam.
func (c *Client) UpdateExamination(ctx context.Context, id string, input ExaminationInput) error {
	if id == "" {
		return fmt.Errorf("examination id is required")
	}
	if err := validateStruct(input); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPatch, "examination/update/"+url.PathEscape(id), nil, input, nil)
}

// DeleteExamination cancels an exam. The backend exposes deletion as a GET.
func (c *Client) DeleteExamination(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("examination id is required")
	}
	return c.doJSON(ctx, http.MethodGet, "examination/delete/"+url.PathEscape(id), nil, nil, nil)
}
