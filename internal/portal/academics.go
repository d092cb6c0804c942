package portal

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edugrid/portal/pkg/sdk"
)

// maxUploadMemory bounds the multipart form held in memory; larger files spill to disk.
const maxUploadMemory = 10 << 20

var errNoUser = errors.New("session has no user")

// decodeBody decodes a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return false
	}
	return true
}

// currentUser returns the user the gate admitted.
func currentUser(w http.ResponseWriter, r *http.Request) (*sdk.User, bool) {
	session, ok := sdk.SessionFromContext(r.Context())
	if !ok {
		respondError(w, r, sdk.ErrNotAuthenticated)
		return nil, false
	}
	if session.User == nil || session.User.ID == "" {
		respondError(w, r, errNoUser)
		return nil, false
	}
	return session.User, true
}

// respondDone answers a write that returns no record.
func respondDone(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondList[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		respondError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func respondCreated[T any](w http.ResponseWriter, r *http.Request, item *T, err error) {
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *handlers) listSemesters(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.session.Client.ListSemesters(r.Context())
	respondList(w, r, semesters, err)
}

func (h *handlers) createSemester(w http.ResponseWriter, r *http.Request) {
	var in sdk.SemesterInput
	if !decodeBody(w, r, &in) {
		return
	}
	semester, err := h.session.Client.CreateSemester(r.Context(), in)
	respondCreated(w, r, semester, err)
}

func (h *handlers) updateSemester(w http.ResponseWriter, r *http.Request) {
	var in sdk.SemesterInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondDone(w, r, h.session.Client.UpdateSemester(r.Context(), chi.URLParam(r, "id"), in))
}

func (h *handlers) deleteSemester(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.session.Client.DeleteSemester(r.Context(), chi.URLParam(r, "id")))
}

func (h *handlers) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.session.Client.ListSubjects(r.Context(), r.URL.Query().Get("semester"))
	respondList(w, r, subjects, err)
}

func (h *handlers) createSubject(w http.ResponseWriter, r *http.Request) {
	var in sdk.SubjectInput
	if !decodeBody(w, r, &in) {
		return
	}
	subject, err := h.session.Client.CreateSubject(r.Context(), in)
	respondCreated(w, r, subject, err)
}

func (h *handlers) updateSubject(w http.ResponseWriter, r *http.Request) {
	var in sdk.SubjectInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondDone(w, r, h.session.Client.UpdateSubject(r.Context(), chi.URLParam(r, "id"), in))
}

func (h *handlers) deleteSubject(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.session.Client.DeleteSubject(r.Context(), chi.URLParam(r, "id")))
}

func (h *handlers) schedule(w http.ResponseWriter, r *http.Request) {
	periods, err := h.session.Client.ListSchedule(r.Context(), chi.URLParam(r, "semester"))
	respondList(w, r, periods, err)
}

func (h *handlers) createPeriod(w http.ResponseWriter, r *http.Request) {
	var in sdk.PeriodInput
	if !decodeBody(w, r, &in) {
		return
	}
	period, err := h.session.Client.CreatePeriod(r.Context(), in)
	respondCreated(w, r, period, err)
}

func (h *handlers) examinations(w http.ResponseWriter, r *http.Request) {
	exams, err := h.session.Client.ListExaminations(r.Context(), chi.URLParam(r, "semester"))
	respondList(w, r, exams, err)
}

func (h *handlers) createExamination(w http.ResponseWriter, r *http.Request) {
	var in sdk.ExaminationInput
	if !decodeBody(w, r, &in) {
		return
	}
	exam, err := h.session.Client.CreateExamination(r.Context(), in)
	respondCreated(w, r, exam, err)
}

func (h *handlers) updateExamination(w http.ResponseWriter, r *http.Request) {
	var in sdk.ExaminationInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondDone(w, r, h.session.Client.UpdateExamination(r.Context(), chi.URLParam(r, "id"), in))
}

func (h *handlers) deleteExamination(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.session.Client.DeleteExamination(r.Context(), chi.URLParam(r, "id")))
}

func (h *handlers) updateNotice(w http.ResponseWriter, r *http.Request) {
	var in sdk.NoticeInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondDone(w, r, h.session.Client.UpdateNotice(r.Context(), chi.URLParam(r, "id"), in))
}

func (h *handlers) deleteNotice(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.session.Client.DeleteNotice(r.Context(), chi.URLParam(r, "id")))
}

// Assignments

func (h *handlers) teacherAssignments(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	assignments, err := h.session.Client.ListAssignments(r.Context(), sdk.AssignmentFilter{
		TeacherID: user.ID,
		Year:      q.Get("semester"),
		SubjectID: q.Get("subject"),
	})
	respondList(w, r, assignments, err)
}

type multipartFile struct {
	multipart.File
	Name string
}

// uploadedFile opens the "file" part of a multipart request, answering 400 when it is missing.
func uploadedFile(w http.ResponseWriter, r *http.Request) (*multipartFile, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Expected a multipart upload"})
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Missing file", Fields: map[string]string{"file": "file is a required field"}})
		return nil, false
	}
	return &multipartFile{File: file, Name: header.Filename}, true
}

func (h *handlers) uploadAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	upload, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer upload.Close()

	err := h.session.Client.UploadAssignment(r.Context(), sdk.AssignmentUpload{
		TeacherID: user.ID,
		Year:      r.FormValue("semester"),
		SubjectID: r.FormValue("subject"),
		DueDate:   r.FormValue("dueDate"),
		FileName:  upload.Name,
		File:      upload,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Assignment uploaded successfully"})
}

func (h *handlers) submissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.session.Client.ListSubmissions(r.Context(), chi.URLParam(r, "id"))
	respondList(w, r, submissions, err)
}

func (h *handlers) submissionCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	counts, err := h.session.Client.SubmissionCounts(r.Context(), user.ID, r.URL.Query().Get("semester"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *handlers) studentAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.session.Client.ListStudentAssignments(r.Context(), r.URL.Query().Get("semester"))
	respondList(w, r, assignments, err)
}

func (h *handlers) submitAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	upload, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer upload.Close()

	err := h.session.Client.SubmitAssignment(r.Context(), sdk.SubmissionUpload{
		StudentID:    user.ID,
		AssignmentID: chi.URLParam(r, "id"),
		FileName:     upload.Name,
		File:         upload,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "File uploaded successfully"})
}

// Student attendance

type attendanceHistory struct {
	Present int                    `json:"present"`
	Absent  int                    `json:"absent"`
	Rate    float64                `json:"rate"`
	Records []sdk.AttendanceRecord `json:"records"`
}

func (h *handlers) studentAttendance(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	records, err := h.session.Client.StudentAttendance(r.Context(), user.ID, sdk.AttendanceQuery{
		SubjectID: q.Get("subject"),
		Date:      q.Get("date"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if records == nil {
		records = []sdk.AttendanceRecord{}
	}
	present, absent, rate := sdk.SummarizeAttendance(records)
	writeJSON(w, http.StatusOK, attendanceHistory{Present: present, Absent: absent, Rate: rate, Records: records})
}

// Director notices

func (h *handlers) directorNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.session.Client.ListDirectorNotices(r.Context())
	respondList(w, r, notices, err)
}

func (h *handlers) noticesAddressedToMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	notices, err := h.session.Client.ListNoticesAddressedTo(r.Context(), user.Name)
	respondList(w, r, notices, err)
}

func (h *handlers) createDirectorNotice(w http.ResponseWriter, r *http.Request) {
	var in sdk.DirectorNoticeInput
	if !decodeBody(w, r, &in) {
		return
	}
	in.Audience = canonicalAudience(in.Audience)
	notice, err := h.session.Client.CreateDirectorNotice(r.Context(), in)
	respondCreated(w, r, notice, err)
}

func (h *handlers) updateDirectorNotice(w http.ResponseWriter, r *http.Request) {
	var in sdk.DirectorNoticeUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	notice, err := h.session.Client.UpdateDirectorNotice(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (h *handlers) deleteDirectorNotice(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.session.Client.DeleteDirectorNotice(r.Context(), chi.URLParam(r, "id")))
}

// canonicalAudience accepts "teachers" or "hods" in any case.
func canonicalAudience(audience string) string {
	switch strings.ToLower(strings.TrimSpace(audience)) {
	case "teachers":
		return sdk.DirectorAudienceTeachers
	case "hods":
		return sdk.DirectorAudienceHODs
	default:
		return audience
	}
}
