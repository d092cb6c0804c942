package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Semester is an academic year/class grouping subjects are attached to.
type Semester struct {
	ID   string `json:"_id"`
	Text string `json:"semester_text"`
	Num  string `json:"semester_num"`
}

// SemesterInput is the payload for creating or updating a semester.
type SemesterInput struct {
	Text string `json:"semester_text" validate:"required,min=3"`
	Num  string `json:"semester_num" validate:"required"`
}

// Subject is a course taught within a semester.
type Subject struct {
	ID       string `json:"_id"`
	Name     string `json:"subject_name"`
	Codename string `json:"subject_codename"`
	Semester string `json:"student_class,omitempty"`
}

// SubjectInput is the payload for creating or updating a subject. The
// backend names the semester reference "year".
type SubjectInput struct {
	Name     string `json:"subject_name" validate:"required,min=3"`
	Codename string `json:"subject_codename" validate:"required"`
	Semester string `json:"year" validate:"required"`
}

// ListSemesters returns all semesters.
func (c *Client) ListSemesters(ctx context.Context) ([]Semester, error) {
	var semesters []Semester
	if err := c.doJSON(ctx, http.MethodGet, "semester/all", nil, nil, &semesters); err != nil {
		return nil, err
	}
	return semesters, nil
}

// CreateSemester adds a semester.
func (c *Client) CreateSemester(ctx context.Context, input SemesterInput) (*Semester, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	var semester Semester
	if err := c.doJSON(ctx, http.MethodPost, "semester/create", nil, input, &semester); err != nil {
		return nil, err
	}
	return &semester, nil
}

// UpdateSemester replaces a semester's text and number.
func (c *Client) UpdateSemester(ctx context.Context, id string, input SemesterInput) error {
	if id == "" {
		return fmt.Errorf("semester id is required")
	}
	if err := validateStruct(input); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPatch, "semester/update/"+url.PathEscape(id), nil, input, nil)
}

// DeleteSemester removes a semester. The backend exposes deletion as a GET.
func (c *Client) DeleteSemester(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("semester id is required")
	}
	return c.doJSON(ctx, http.MethodGet, "semester/delete/"+url.PathEscape(id), nil, nil, nil)
}

// ListSubjects returns the subjects of a semester, or all subjects when semesterID is empty.
func (c *Client) ListSubjects(ctx context.Context, semesterID string) ([]Subject, error) {
	query := url.Values{}
	if semesterID != "" {
		query.Set("student_class", semesterID)
	}
	var subjects []Subject
	if err := c.doJSONKey(ctx, http.MethodGet, "subject/fetch-with-query", query, nil, "subjects", &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// CreateSubject adds a subject to a semester.
func (c *Client) CreateSubject(ctx context.Context, input SubjectInput) (*Subject, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	var subject Subject
	if err := c.doJSON(ctx, http.MethodPost, "subject/create", nil, input, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

// UpdateSubject replaces a subject's name, codename and semester.
func (c *Client) UpdateSubject(ctx context.Context, id string, input SubjectInput) error {
	if id == "" {
		return fmt.Errorf("subject id is required")
	}
	if err := validateStruct(input); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPatch, "subject/update/"+url.PathEscape(id), nil, input, nil)
}

// DeleteSubject removes a subject.
func (c *Client) DeleteSubject(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("subject id is required")
	}
	return c.doJSON(ctx, http.MethodGet, "subject/delete/"+url.PathEscape(id), nil, nil, nil)
}
