package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// Assignment is a file a teacher published for a semester's subject.
type Assignment struct {
	ID        string    `json:"_id"`
	Teacher   Ref       `json:"teacherId"`
	Subject   Ref       `json:"subject"`
	Year      string    `json:"year"`
	DueDate   string    `json:"dueDate"`
	FileURL   string    `json:"fileUrl"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Submission is a student's uploaded answer to an assignment.
type Submission struct {
	ID      string `json:"_id"`
	Student Ref    `json:"student"`
	FileURL string `json:"fileUrl"`
}

// AssignmentFilter narrows a teacher's assignment list. Empty fields are not sent.
type AssignmentFilter struct {
	TeacherID string `validate:"required"`
	Year      string
	SubjectID string
}

// AssignmentUpload is a teacher publishing a new assignment.
type AssignmentUpload struct {
	TeacherID string    `json:"teacherId" validate:"required"`
	Year      string    `json:"year" validate:"required"`
	SubjectID string    `json:"subjectId" validate:"required"`
	DueDate   string    `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	FileName  string    `json:"file" validate:"required"`
	File      io.Reader `json:"-" validate:"-"`
}

// SubmissionUpload is a student handing in an assignment.
type SubmissionUpload struct {
	StudentID    string    `json:"studentId" validate:"required"`
	AssignmentID string    `json:"assignmentId" validate:"required"`
	FileName     string    `json:"file" validate:"required"`
	File         io.Reader `json:"-" validate:"-"`
}

// ListAssignments returns the assignments a teacher published.
func (c *Client) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	query := url.Values{"teacherId": {filter.TeacherID}}
	if filter.Year != "" {
		query.Set("year", filter.Year)
	}
	if filter.SubjectID != "" {
		query.Set("subjectId", filter.SubjectID)
	}
	var assignments []Assignment
	if err := c.doJSON(ctx, http.MethodGet, "assignments", query, nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UploadAssignment publishes an assignment file.
func (c *Client) UploadAssignment(ctx context.Context, upload AssignmentUpload) error {
	if err := validateStruct(upload); err != nil {
		return err
	}
	fields := map[string]string{
		"teacherId": upload.TeacherID,
		"year":      upload.Year,
		"subjectId": upload.SubjectID,
		"dueDate":   upload.DueDate,
	}
	return c.postFile(ctx, "assignments", fields, upload.FileName, upload.File)
}

// ListStudentAssignments returns the assignments of a semester, each flagged
// with whether the current student already handed it in.
func (c *Client) ListStudentAssignments(ctx context.Context, year string) ([]Assignment, error) {
	query := url.Values{}
	if year != "" {
		query.Set("year", year)
	}
	var assignments []Assignment
	if err := c.doJSONKey(ctx, http.MethodGet, "assignments/student", query, nil, "assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListSubmissions returns what students handed in for an assignment.
func (c *Client) ListSubmissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	if assignmentID == "" {
		return nil, fmt.Errorf("assignment id is required")
	}
	query := url.Values{"assignmentId": {assignmentID}}
	var submissions []Submission
	if err := c.doJSON(ctx, http.MethodGet, "assignments/student/submissions", query, nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// SubmissionCounts returns the number of submissions per assignment id for a
// teacher's assignments in a semester.
func (c *Client) SubmissionCounts(ctx context.Context, teacherID, year string) (map[string]int, error) {
	if teacherID == "" {
		return nil, fmt.Errorf("teacher id is required")
	}
	query := url.Values{"teacherId": {teacherID}}
	if year != "" {
		query.Set("year", year)
	}
	raw, _, err := c.do(ctx, http.MethodGet, "assignments/submission-counts-bulk", query, nil)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, fmt.Errorf("decode submission counts: %w", err)
	}
	return counts, nil
}

// SubmitAssignment uploads a student's answer.
func (c *Client) SubmitAssignment(ctx context.Context, upload SubmissionUpload) error {
	if err := validateStruct(upload); err != nil {
		return err
	}
	fields := map[string]string{
		"studentId":    upload.StudentID,
		"assignmentId": upload.AssignmentID,
	}
	return c.postFile(ctx, "assignments/student/upload", fields, upload.FileName, upload.File)
}

// postFile sends fields and one file as multipart/form-data.
func (c *Client) postFile(ctx context.Context, apiPath string, fields map[string]string, fileName string, file io.Reader) error {
	if file == nil {
		return fmt.Errorf("%s: no file to upload", fileName)
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}
	if _, err := io.Copy(part, io.LimitReader(file, maxResponseBody)); err != nil {
		return fmt.Errorf("read %s: %w", fileName, err)
	}
	for _, name := range sortedKeys(fields) {
		if err := w.WriteField(name, fields[name]); err != nil {
			return fmt.Errorf("encode upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}

	raw, _, err := c.send(ctx, http.MethodPost, apiPath, nil, &body, w.FormDataContentType())
	if err != nil {
		return err
	}
	return decodePayload(http.MethodPost, apiPath, raw, "data", nil)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
