package sdk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// AttendanceStatus is the mark recorded for one student.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// AttendanceDateLayout is the calendar date format the backend expects.
const AttendanceDateLayout = "2006-01-02"

// ErrEmptyPDF is returned when the backend produced an attendance PDF with no content.
var ErrEmptyPDF = errors.New("received empty PDF from server")

// AttendanceMark is one student's status within a sheet.
type AttendanceMark struct {
	StudentID string           `json:"studentId" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
}

// AttendanceSheet is the attendance of one subject on one date.
type AttendanceSheet struct {
	SubjectID string           `json:"subjectId" validate:"required"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Marks     []AttendanceMark `json:"attendanceData" validate:"required,min=1,dive"`
}

// NewAttendanceSheet builds a sheet from a student→status map. Marks are
// ordered by student ID so the request body is deterministic.
func NewAttendanceSheet(subjectID string, date time.Time, statuses map[string]AttendanceStatus) AttendanceSheet {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	marks := make([]AttendanceMark, 0, len(ids))
	for _, id := range ids {
		marks = append(marks, AttendanceMark{StudentID: id, Status: statuses[id]})
	}
	return AttendanceSheet{
		SubjectID: subjectID,
		Date:      date.Format(AttendanceDateLayout),
		Marks:     marks,
	}
}

// Summary counts present and absent marks.
func (s AttendanceSheet) Summary() (present, absent int) {
	for _, m := range s.Marks {
		switch m.Status {
		case AttendancePresent:
			present++
		case AttendanceAbsent:
			absent++
		}
	}
	return present, absent
}

// AttendancePDFRecord is a stored attendance receipt listed by the backend.
type AttendancePDFRecord struct {
	ID          string `json:"id"`
	SubjectName string `json:"subjectName"`
	Date        string `json:"date"`
}

// AttendanceReceipt is the outcome of SubmitAttendance.
type AttendanceReceipt struct {
	Sheet   AttendanceSheet
	PDF     []byte
	Records []AttendancePDFRecord
	// PDFErr is set when the sheet was recorded but the receipt could not be produced.
	PDFErr error
}

// MarkAttendance records a sheet.
func (c *Client) MarkAttendance(ctx context.Context, sheet AttendanceSheet) error {
	if err := validateStruct(sheet); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, "attendance/mark", nil, sheet, nil)
}

// AttendancePDF asks the backend to render the receipt for subject on date.
func (c *Client) AttendancePDF(ctx context.Context, subjectID, date string) ([]byte, error) {
	if subjectID == "" || date == "" {
		return nil, fmt.Errorf("subject and date are required")
	}
	raw, _, err := c.do(ctx, http.MethodGet,
		"attendance/generateAttendancePDF/"+url.PathEscape(subjectID)+"/"+url.PathEscape(date), nil, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPDF
	}
	return raw, nil
}

// ListAttendancePDFs returns the receipts stored for the current teacher.
func (c *Client) ListAttendancePDFs(ctx context.Context) ([]AttendancePDFRecord, error) {
	var records []AttendancePDFRecord
	if err := c.doJSON(ctx, http.MethodGet, "attendance/pdfs", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchAttendancePDF downloads a stored receipt.
func (c *Client) FetchAttendancePDF(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("pdf id is required")
	}
	raw, _, err := c.do(ctx, http.MethodGet, "attendance/pdf/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPDF
	}
	return raw, nil
}

// SubmitAttendance records the sheet, fetches its PDF receipt and refreshes the
// stored receipt list. A failure to record is returned as an error; receipt
// failures after a successful mark are reported in AttendanceReceipt.PDFErr.
func (c *Client) SubmitAttendance(ctx context.Context, sheet AttendanceSheet) (*AttendanceReceipt, error) {
	if err := c.MarkAttendance(ctx, sheet); err != nil {
		return nil, fmt.Errorf("submit attendance: %w", err)
	}

	receipt := &AttendanceReceipt{Sheet: sheet}
	pdf, err := c.AttendancePDF(ctx, sheet.SubjectID, sheet.Date)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return receipt, err
		}
		log.Printf("attendance: receipt for subject=%s date=%s failed: %v", sheet.SubjectID, sheet.Date, err)
		receipt.PDFErr = err
		return receipt, nil
	}
	receipt.PDF = pdf

	records, err := c.ListAttendancePDFs(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return receipt, err
		}
		log.Printf("attendance: refresh stored receipts failed: %v", err)
		return receipt, nil
	}
	receipt.Records = records
	return receipt, nil
}

// AttendanceRecord is one entry of a student's attendance history.
type AttendanceRecord struct {
	ID          string           `json:"_id"`
	Date        string           `json:"date"`
	SubjectName string           `json:"subjectName"`
	Status      AttendanceStatus `json:"status"`
}

// Day returns the calendar date of the record, dropping any time of day.
func (r AttendanceRecord) Day() string {
	if len(r.Date) > len(AttendanceDateLayout) {
		return r.Date[:len(AttendanceDateLayout)]
	}
	return r.Date
}

// AttendanceQuery narrows a student's attendance history. Empty fields are not sent.
type AttendanceQuery struct {
	SubjectID string `json:"subject"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// StudentAttendance returns the attendance history of a student, newest
// first as the backend orders it. Statuses are normalized to lower case.
func (c *Client) StudentAttendance(ctx context.Context, studentID string, q AttendanceQuery) ([]AttendanceRecord, error) {
	if studentID == "" {
		return nil, fmt.Errorf("student id is required")
	}
	if err := validateStruct(q); err != nil {
		return nil, err
	}
	query := url.Values{}
	if q.SubjectID != "" {
		query.Set("subject", q.SubjectID)
	}
	if q.Date != "" {
		query.Set("date", q.Date)
	}

	var records []AttendanceRecord
	if err := c.doJSON(ctx, http.MethodGet, "attendance/student/"+url.PathEscape(studentID), query, nil, &records); err != nil {
		return nil, err
	}
	kept := records[:0]
	for _, r := range records {
		r.Status = AttendanceStatus(strings.ToLower(string(r.Status)))
		if q.Date != "" && r.Day() != q.Date {
			continue
		}
		kept = append(kept, r)
	}
	return kept, nil
}

// SummarizeAttendance counts present and absent records and the share present, in percent.
func SummarizeAttendance(records []AttendanceRecord) (present, absent int, rate float64) {
	for _, r := range records {
		switch r.Status {
		case AttendancePresent:
			present++
		case AttendanceAbsent:
			absent++
		}
	}
	if total := present + absent; total > 0 {
		rate = float64(present) * 100 / float64(total)
	}
	return present, absent, rate
}
