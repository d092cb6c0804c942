package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePortal is a minimal backend covering the dashboard endpoints.
type fakePortal struct {
	mu        sync.Mutex
	marked    []AttendanceSheet
	pdf       []byte
	notices   []Notice
	requestID []string
}

func (f *fakePortal) router(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.requestID = append(f.requestID, req.Header.Get("X-Request-Id"))
			f.mu.Unlock()
			if req.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	writeData := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}

	r.Get("/api/notice/{audience}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeData(w, f.notices)
	})
	r.Post("/api/notice/create", func(w http.ResponseWriter, req *http.Request) {
		var in NoticeInput
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		n := Notice{ID: "n1", Title: in.Title, Message: in.Message, Audience: in.Audience}
		f.mu.Lock()
		f.notices = append(f.notices, n)
		f.mu.Unlock()
		writeData(w, n)
	})
	r.Patch("/api/notice/update/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, nil)
	})
	r.Get("/api/notice/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "n1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Notice not found"}`))
			return
		}
		writeData(w, nil)
	})
	r.Post("/api/attendance/mark", func(w http.ResponseWriter, req *http.Request) {
		var sheet AttendanceSheet
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&sheet))
		f.mu.Lock()
		f.marked = append(f.marked, sheet)
		f.mu.Unlock()
		writeData(w, nil)
	})
	r.Get("/api/attendance/generateAttendancePDF/{subject}/{date}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(f.pdf)
	})
	r.Get("/api/attendance/pdfs", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, []AttendancePDFRecord{{ID: "p1", SubjectName: "Networks", Date: "2024-03-01"}})
	})
	r.Get("/api/attendance/pdf/{id}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("%PDF-stored-" + chi.URLParam(req, "id")))
	})
	r.Get("/api/semester/all", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, []Semester{{ID: "s1", Text: "Sixth", Num: "6"}})
	})
	r.Get("/api/subject/fetch-with-query", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, []Subject{{ID: "sub1", Name: "Networks", Codename: "CS601", Semester: req.URL.Query().Get("student_class")}})
	})
	return r
}

func newTestSession(t *testing.T, f *fakePortal) (*SessionContext, *recordingNavigator) {
	t.Helper()
	server := httptest.NewServer(f.router(t))
	t.Cleanup(server.Close)

	nav := &recordingNavigator{}
	backend := newMapBackend(map[string]string{
		TokenKey: "tok",
		UserKey:  `{"id":"t1","name":"Tess","role":"teacher"}`,
	})
	sc := OpenSessionContext(context.Background(), SessionContextOptions{
		BaseURL:   server.URL,
		Backend:   backend,
		Navigator: nav,
	})
	t.Cleanup(sc.Close)
	return sc, nav
}

func TestSessionContextHydratesAndAuthorizes(t *testing.T) {
	f := &fakePortal{}
	sc, nav := newTestSession(t, f)

	session, err := sc.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, session.Role())

	semesters, err := sc.Client.ListSemesters(context.Background())
	require.NoError(t, err)
	require.Len(t, semesters, 1)
	assert.Equal(t, "Sixth", semesters[0].Text)
	assert.Empty(t, nav.redirects())

	require.Len(t, f.requestID, 1)
	_, err = uuid.Parse(f.requestID[0])
	assert.NoError(t, err, "requests carry a request id")
}

func TestSessionContextClose(t *testing.T) {
	sc, _ := newTestSession(t, &fakePortal{})
	sc.Close()
	sc.Close()
	assert.Nil(t, sc.HTTPClient.Transport)

	sc.Store.Logout(context.Background())
	_, err := sc.RequireSession()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestNotices(t *testing.T) {
	ctx := context.Background()
	f := &fakePortal{}
	sc, _ := newTestSession(t, f)

	_, err := sc.Client.CreateNotice(ctx, NoticeInput{Title: "Hi", Message: "short", Audience: "student"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "message")

	created, err := sc.Client.CreateNotice(ctx, NoticeInput{Title: "Exam week", Message: "Exams start on Monday", Audience: "student"})
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)

	notices, err := sc.Client.ListNotices(ctx, NoticeFeedFor(RoleStudent))
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "Exam week", notices[0].Title)

	_, err = sc.Client.ListNotices(ctx, "everyone")
	assert.Error(t, err)

	require.NoError(t, sc.Client.UpdateNotice(ctx, "n1", NoticeInput{Title: "Exam week", Message: "Exams start on Tuesday", Audience: "all"}))
	require.NoError(t, sc.Client.DeleteNotice(ctx, "n1"))

	err = sc.Client.DeleteNotice(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Notice not found", apiErr.Message)
}

func TestNoticeFeedFor(t *testing.T) {
	assert.Equal(t, NoticeAudienceStudent, NoticeFeedFor("Student"))
	assert.Equal(t, NoticeAudienceTeacher, NoticeFeedFor(RoleTeacher))
	assert.Equal(t, NoticeAudienceAll, NoticeFeedFor(RoleDirector))
}

func TestSubmitAttendance(t *testing.T) {
	ctx := context.Background()
	f := &fakePortal{pdf: []byte("%PDF-1.4 receipt")}
	sc, _ := newTestSession(t, f)

	date := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sheet := NewAttendanceSheet("sub1", date, map[string]AttendanceStatus{
		"st2": AttendanceAbsent,
		"st1": AttendancePresent,
		"st3": AttendancePresent,
	})
	present, absent := sheet.Summary()
	assert.Equal(t, 2, present)
	assert.Equal(t, 1, absent)

	receipt, err := sc.Client.SubmitAttendance(ctx, sheet)
	require.NoError(t, err)
	require.NoError(t, receipt.PDFErr)
	assert.Equal(t, "%PDF-1.4 receipt", string(receipt.PDF))
	require.Len(t, receipt.Records, 1)
	assert.Equal(t, "Networks", receipt.Records[0].SubjectName)

	require.Len(t, f.marked, 1)
	assert.Equal(t, "2024-03-01", f.marked[0].Date)
	assert.Equal(t, []AttendanceMark{
		{StudentID: "st1", Status: AttendancePresent},
		{StudentID: "st2", Status: AttendanceAbsent},
		{StudentID: "st3", Status: AttendancePresent},
	}, f.marked[0].Marks)

	stored, err := sc.Client.FetchAttendancePDF(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-stored-p1", string(stored))
}

func TestSubmitAttendanceEmptyReceipt(t *testing.T) {
	f := &fakePortal{}
	sc, _ := newTestSession(t, f)

	sheet := NewAttendanceSheet("sub1", time.Now(), map[string]AttendanceStatus{"st1": AttendancePresent})
	receipt, err := sc.Client.SubmitAttendance(context.Background(), sheet)
	require.NoError(t, err, "the sheet itself was recorded")
	assert.True(t, errors.Is(receipt.PDFErr, ErrEmptyPDF))
	assert.Nil(t, receipt.Records)
	assert.Len(t, f.marked, 1)
}

func TestMarkAttendanceValidation(t *testing.T) {
	f := &fakePortal{}
	sc, _ := newTestSession(t, f)

	tests := []struct {
		name  string
		sheet AttendanceSheet
		field string
	}{
		{"no subject", AttendanceSheet{Date: "2024-03-01", Marks: []AttendanceMark{{StudentID: "a", Status: AttendancePresent}}}, "subjectId"},
		{"bad date", AttendanceSheet{SubjectID: "s", Date: "01/03/2024", Marks: []AttendanceMark{{StudentID: "a", Status: AttendancePresent}}}, "date"},
		{"no marks", AttendanceSheet{SubjectID: "s", Date: "2024-03-01"}, "attendanceData"},
		{"bad status", AttendanceSheet{SubjectID: "s", Date: "2024-03-01", Marks: []AttendanceMark{{StudentID: "a", Status: "late"}}}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sc.Client.MarkAttendance(context.Background(), tt.sheet)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.Empty(t, f.marked)
}

func TestSubjectsQuery(t *testing.T) {
	sc, _ := newTestSession(t, &fakePortal{})

	subjects, err := sc.Client.ListSubjects(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "s1", subjects[0].Semester)
	assert.Equal(t, "CS601", subjects[0].Codename)
}

func TestExpiredSessionDuringDashboardCall(t *testing.T) {
	f := &fakePortal{}
	sc, nav := newTestSession(t, f)
	sc.Store.Login(context.Background(), User{ID: "t1", Role: RoleTeacher}, "revoked")

	_, err := sc.Client.ListAttendancePDFs(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, sc.Store.IsAuthenticated())
	assert.Equal(t, []string{LoginRoute}, nav.redirects())
}

// openTestSession serves routes behind the bearer check used by fakePortal
// and returns a session logged in as user.
func openTestSession(t *testing.T, user string, routes func(r chi.Router)) *SessionContext {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api", routes)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	sc := OpenSessionContext(context.Background(), SessionContextOptions{
		BaseURL: server.URL,
		Backend: newMapBackend(map[string]string{TokenKey: "tok", UserKey: user}),
	})
	t.Cleanup(sc.Close)
	return sc
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// call records one request seen by a test backend.
type call struct {
	Method string
	Path   string
	Body   map[string]any
}

type callLog struct {
	mu    sync.Mutex
	calls []call
}

func (l *callLog) record(t *testing.T) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			c := call{Method: req.Method, Path: req.URL.Path}
			if req.Header.Get("Content-Type") == "application/json" {
				assert.NoError(t, json.NewDecoder(req.Body).Decode(&c.Body))
			}
			l.mu.Lock()
			l.calls = append(l.calls, c)
			l.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	}
}

func (l *callLog) all() []call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]call(nil), l.calls...)
}

const teacherUser = `{"id":"t1","name":"Tess","role":"teacher"}`

func TestSessionContextLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	sc, _ := newTestSession(t, &fakePortal{})
	assert.Contains(t, buf.String(), "session: active user=t1 role=teacher")

	sc.Store.Logout(context.Background())
	assert.Contains(t, buf.String(), "session: cleared")

	sc.Close()
	buf.Reset()
	sc.Store.Login(context.Background(), User{ID: "s9", Role: RoleStudent}, "tok2")
	assert.NotContains(t, buf.String(), "session:")
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		key     string
		want    []string
		wantErr string
	}{
		{name: "data field", body: `{"success":true,"data":["a"]}`, key: "data", want: []string{"a"}},
		{name: "named field", body: `{"success":true,"subjects":["b"]}`, key: "subjects", want: []string{"b"}},
		{name: "named field falls back to data", body: `{"success":true,"data":["c"]}`, key: "subjects", want: []string{"c"}},
		{name: "bare array", body: ` ["d","e"]`, key: "data", want: []string{"d", "e"}},
		{name: "empty body", body: "", key: "data"},
		{name: "null payload", body: `{"data":null}`, key: "data"},
		{name: "unsuccessful", body: `{"success":false,"message":"Semester exists"}`, key: "data", wantErr: "Semester exists"},
		{name: "not json", body: `<html>`, key: "data", wantErr: "decode x response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			err := decodePayload(http.MethodGet, "x", []byte(tt.body), tt.key, &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Ref
	}{
		{"bare id", `"65f0"`, Ref{ID: "65f0"}},
		{"numeric id", `42`, Ref{ID: "42"}},
		{"null", `null`, Ref{}},
		{"teacher", `{"_id":"t1","name":"Tess"}`, Ref{ID: "t1", Name: "Tess"}},
		{"subject", `{"_id":"s1","subject_name":"Networks","subject_codename":"CS601"}`, Ref{ID: "s1", Name: "Networks"}},
		{"semester text", `{"_id":"y1","semester_text":"Sixth"}`, Ref{ID: "y1", Name: "Sixth"}},
		{"semester number", `{"_id":"y1","semester_num":6}`, Ref{ID: "y1", Name: "6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Ref
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "y1", Ref{ID: "y1"}.String())
	assert.Equal(t, "Sixth", Ref{ID: "y1", Name: "Sixth"}.String())
}

func TestSemesterAndSubjectManagement(t *testing.T) {
	ctx := context.Background()
	calls := &callLog{}
	sc := openTestSession(t, `{"id":"d1","role":"department"}`, func(r chi.Router) {
		r.Use(calls.record(t))
		r.Post("/semester/create", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true, "data": Semester{ID: "y1", Text: "Sixth", Num: "6"}})
		})
		r.Patch("/semester/update/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true})
		})
		r.Get("/semester/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": false, "message": "Semester has subjects"})
		})
		r.Get("/subject/fetch-with-query", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true, "subjects": []Subject{{ID: "sub1", Name: "Networks", Codename: "CS601"}}})
		})
		r.Post("/subject/create", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true, "data": Subject{ID: "sub2", Name: "Compilers"}})
		})
		r.Patch("/subject/update/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true})
		})
		r.Get("/subject/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true})
		})
	})

	_, err := sc.Client.CreateSemester(ctx, SemesterInput{Text: "VI"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "semester_text")
	assert.Contains(t, verr.Fields, "semester_num")

	semester, err := sc.Client.CreateSemester(ctx, SemesterInput{Text: "Sixth", Num: "6"})
	require.NoError(t, err)
	assert.Equal(t, "y1", semester.ID)
	require.NoError(t, sc.Client.UpdateSemester(ctx, "y1", SemesterInput{Text: "Sixth", Num: "6"}))

	err = sc.Client.DeleteSemester(ctx, "y1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Semester has subjects", apiErr.Message)

	subjects, err := sc.Client.ListSubjects(ctx, "y1")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "CS601", subjects[0].Codename)

	_, err = sc.Client.CreateSubject(ctx, SubjectInput{Name: "Compilers", Codename: "CS602"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "year")

	subject, err := sc.Client.CreateSubject(ctx, SubjectInput{Name: "Compilers", Codename: "CS602", Semester: "y1"})
	require.NoError(t, err)
	assert.Equal(t, "sub2", subject.ID)
	require.NoError(t, sc.Client.UpdateSubject(ctx, "sub2", SubjectInput{Name: "Compilers II", Codename: "CS602", Semester: "y1"}))
	require.NoError(t, sc.Client.DeleteSubject(ctx, "sub2"))
	assert.Error(t, sc.Client.DeleteSubject(ctx, ""))

	got := calls.all()
	require.Len(t, got, 7)
	assert.Equal(t, call{Method: http.MethodPost, Path: "/api/semester/create", Body: map[string]any{"semester_text": "Sixth", "semester_num": "6"}}, got[0])
	assert.Equal(t, "/api/semester/update/y1", got[1].Path)
	assert.Equal(t, http.MethodPatch, got[1].Method)
	assert.Equal(t, map[string]any{"subject_name": "Compilers", "subject_codename": "CS602", "year": "y1"}, got[4].Body)
	assert.Equal(t, call{Method: http.MethodGet, Path: "/api/subject/delete/sub2"}, got[6])
}

func TestSchedule(t *testing.T) {
	ctx := context.Background()
	var created map[string]any
	sc := openTestSession(t, `{"id":"d1","role":"department"}`, func(r chi.Router) {
		r.Get("/schedule/fetch-with-semester/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "y1", chi.URLParam(req, "id"))
			_, _ = w.Write([]byte(`{"success":true,"data":[
				{"_id":"p1","teacher":{"_id":"t1","name":"Tess"},"subject":{"_id":"s1","subject_name":"Networks"},"semester":"y1","day":1,"startTime":"09:00","endTime":"10:00"},
				{"_id":"p2","teacher":"t2","subject":"s2","semester":"y1","day":0,"startTime":"09:00","endTime":"10:00"},
				{"_id":"p3","teacher":"t2","subject":"s2","semester":"y1","day":6,"startTime":"11:00","endTime":"12:00"}]}`))
		})
		r.Post("/schedule/create", func(w http.ResponseWriter, req *http.Request) {
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&created))
			writeJSON(w, map[string]any{"success": true, "data": map[string]any{"_id": "p4", "day": 2}})
		})
	})

	periods, err := sc.Client.ListSchedule(ctx, "y1")
	require.NoError(t, err)
	require.Len(t, periods, 2, "sunday entries are dropped")
	assert.Equal(t, "Tess", periods[0].Teacher.String())
	assert.Equal(t, "Networks", periods[0].Subject.String())
	assert.Equal(t, time.Monday, periods[0].Weekday())
	assert.Equal(t, time.Saturday, periods[1].Weekday())
	assert.Equal(t, "t2", periods[1].Teacher.ID)

	valid := PeriodInput{Teacher: "t1", Subject: "s1", Semester: "y1", Day: 2, StartTime: "09:00", EndTime: "10:30"}
	tests := []struct {
		name  string
		edit  func(*PeriodInput)
		field string
	}{
		{"sunday", func(in *PeriodInput) { in.Day = 0 }, "day"},
		{"past saturday", func(in *PeriodInput) { in.Day = 7 }, "day"},
		{"bad clock", func(in *PeriodInput) { in.StartTime = "9am" }, "startTime"},
		{"ends before start", func(in *PeriodInput) { in.EndTime = "08:00" }, "endTime"},
		{"zero length", func(in *PeriodInput) { in.EndTime = in.StartTime }, "endTime"},
		{"no teacher", func(in *PeriodInput) { in.Teacher = "" }, "teacher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := sc.Client.CreatePeriod(ctx, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.Nil(t, created)

	period, err := sc.Client.CreatePeriod(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "p4", period.ID)
	assert.Equal(t, float64(2), created["day"])
	assert.Equal(t, "10:30", created["endTime"])
}

func TestExaminations(t *testing.T) {
	ctx := context.Background()
	calls := &callLog{}
	sc := openTestSession(t, `{"id":"d1","role":"department"}`, func(r chi.Router) {
		r.Use(calls.record(t))
		r.Get("/examination/semester/{id}", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"examinations":[
				{"_id":"e1","examDate":"2024-05-02","examType":"Midterm","subject":{"_id":"s1","subject_name":"Networks"},"semester":{"_id":"y1","semester_num":6}}]}`))
		})
		r.Post("/examination/create", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true, "data": map[string]any{"_id": "e2", "examType": "Final"}})
		})
		r.Patch("/examination/update/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true})
		})
		r.Get("/examination/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true})
		})
	})

	exams, err := sc.Client.ListExaminations(ctx, "y1")
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "Networks", exams[0].Subject.String())
	assert.Equal(t, "6", exams[0].Semester.String())

	_, err = sc.Client.CreateExamination(ctx, ExaminationInput{Date: "02/05/2024", Type: "Final", SubjectID: "s1", SemesterID: "y1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date")

	in := ExaminationInput{Date: "2024-06-10", Type: "Final", SubjectID: "s1", SemesterID: "y1"}
	exam, err := sc.Client.CreateExamination(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "e2", exam.ID)
	require.NoError(t, sc.Client.UpdateExamination(ctx, "e2", in))
	require.NoError(t, sc.Client.DeleteExamination(ctx, "e2"))
	_, err = sc.Client.ListExaminations(ctx, "")
	assert.Error(t, err)

	got := calls.all()
	require.Len(t, got, 4)
	assert.Equal(t, map[string]any{"date": "2024-06-10", "examType": "Final", "subjectId": "s1", "semesterId": "y1"}, got[1].Body)
	assert.Equal(t, call{Method: http.MethodPatch, Path: "/api/examination/update/e2", Body: got[1].Body}, got[2])
	assert.Equal(t, "/api/examination/delete/e2", got[3].Path)
}

func TestAssignments(t *testing.T) {
	ctx := context.Background()
	var (
		mu      sync.Mutex
		uploads []map[string]string
	)
	readUpload := func(t *testing.T, req *http.Request) {
		if !assert.NoError(t, req.ParseMultipartForm(1<<20)) {
			return
		}
		file, header, err := req.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		assert.NoError(t, err)
		fields := map[string]string{"filename": header.Filename, "content": string(content)}
		for k, v := range req.MultipartForm.Value {
			fields[k] = v[0]
		}
		mu.Lock()
		uploads = append(uploads, fields)
		mu.Unlock()
	}

	sc := openTestSession(t, teacherUser, func(r chi.Router) {
		r.Get("/assignments", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "teacherId=t1&year=y1", req.URL.RawQuery)
			_, _ = w.Write([]byte(`[{"_id":"a1","subject":{"_id":"s1","subject_name":"Networks"},"year":"y1","dueDate":"2024-05-01","fileUrl":"/uploads/a1.pdf"}]`))
		})
		r.Post("/assignments", func(w http.ResponseWriter, req *http.Request) {
			readUpload(t, req)
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, map[string]any{"message": "Assignment uploaded successfully"})
		})
		r.Get("/assignments/student", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "Sixth", req.URL.Query().Get("year"))
			_, _ = w.Write([]byte(`{"success":true,"assignments":[{"_id":"a1","done":true},{"_id":"a2","done":false}]}`))
		})
		r.Get("/assignments/student/submissions", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "a1", req.URL.Query().Get("assignmentId"))
			_, _ = w.Write([]byte(`[{"_id":"x1","student":{"_id":"st1","name":"Sam"},"fileUrl":"/uploads/x1.pdf"}]`))
		})
		r.Get("/assignments/submission-counts-bulk", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"a1":3,"a2":0}`))
		})
		r.Post("/assignments/student/upload", func(w http.ResponseWriter, req *http.Request) {
			readUpload(t, req)
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, map[string]any{"message": "File uploaded successfully"})
		})
	})

	_, err := sc.Client.ListAssignments(ctx, AssignmentFilter{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	assignments, err := sc.Client.ListAssignments(ctx, AssignmentFilter{TeacherID: "t1", Year: "y1"})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "Networks", assignments[0].Subject.String())

	err = sc.Client.UploadAssignment(ctx, AssignmentUpload{TeacherID: "t1", Year: "y1", SubjectID: "s1", DueDate: "May 1", FileName: "a.pdf", File: strings.NewReader("x")})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "dueDate")
	assert.Error(t, sc.Client.UploadAssignment(ctx, AssignmentUpload{TeacherID: "t1", Year: "y1", SubjectID: "s1", FileName: "a.pdf"}))

	require.NoError(t, sc.Client.UploadAssignment(ctx, AssignmentUpload{
		TeacherID: "t1", Year: "y1", SubjectID: "s1", DueDate: "2024-05-01",
		FileName: "sheet.pdf", File: strings.NewReader("%PDF-sheet"),
	}))

	mine, err := sc.Client.ListStudentAssignments(ctx, "Sixth")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].Done)
	assert.False(t, mine[1].Done)

	submissions, err := sc.Client.ListSubmissions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Equal(t, "Sam", submissions[0].Student.String())

	counts, err := sc.Client.SubmissionCounts(ctx, "t1", "y1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a1": 3, "a2": 0}, counts)

	require.NoError(t, sc.Client.SubmitAssignment(ctx, SubmissionUpload{
		StudentID: "st1", AssignmentID: "a2", FileName: "answer.pdf", File: strings.NewReader("%PDF-answer"),
	}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, uploads, 2)
	assert.Equal(t, map[string]string{
		"filename": "sheet.pdf", "content": "%PDF-sheet",
		"teacherId": "t1", "year": "y1", "subjectId": "s1", "dueDate": "2024-05-01",
	}, uploads[0])
	assert.Equal(t, map[string]string{
		"filename": "answer.pdf", "content": "%PDF-answer",
		"studentId": "st1", "assignmentId": "a2",
	}, uploads[1])
}

func TestStudentAttendance(t *testing.T) {
	ctx := context.Background()
	sc := openTestSession(t, `{"id":"st1","name":"Sam","role":"student"}`, func(r chi.Router) {
		r.Get("/attendance/student/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "st1", chi.URLParam(req, "id"))
			assert.Equal(t, "s1", req.URL.Query().Get("subject"))
			_, _ = w.Write([]byte(`{"success":true,"data":[
				{"_id":"r1","date":"2024-03-01T00:00:00.000Z","subjectName":"Networks","status":"Present"},
				{"_id":"r2","date":"2024-03-02T00:00:00.000Z","subjectName":"Networks","status":"ABSENT"},
				{"_id":"r3","date":"2024-03-03","subjectName":"Networks","status":"present"}]}`))
		})
	})

	records, err := sc.Client.StudentAttendance(ctx, "st1", AttendanceQuery{SubjectID: "s1"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, AttendancePresent, records[0].Status)
	assert.Equal(t, AttendanceAbsent, records[1].Status)
	assert.Equal(t, "2024-03-01", records[0].Day())

	present, absent, rate := SummarizeAttendance(records)
	assert.Equal(t, 2, present)
	assert.Equal(t, 1, absent)
	assert.InDelta(t, 66.67, rate, 0.01)

	onDay, err := sc.Client.StudentAttendance(ctx, "st1", AttendanceQuery{SubjectID: "s1", Date: "2024-03-02"})
	require.NoError(t, err)
	require.Len(t, onDay, 1)
	assert.Equal(t, "r2", onDay[0].ID)

	_, err = sc.Client.StudentAttendance(ctx, "st1", AttendanceQuery{Date: "March 2"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date")

	_, _, rate = SummarizeAttendance(nil)
	assert.Zero(t, rate)
}

func TestDirectorNotices(t *testing.T) {
	ctx := context.Background()
	calls := &callLog{}
	sc := openTestSession(t, `{"id":"dir1","name":"Dana","role":"director"}`, func(r chi.Router) {
		r.Use(calls.record(t))
		feed := `{"success":true,"data":[
			{"_id":"d1","title":"Budget","message":"Submit budgets","audience":"HODs","recipientName":"tess"},
			{"_id":"d2","title":"Audit","message":"Audit on Friday","audience":"Teachers","recipientName":["Sam","TESS "]},
			{"_id":"d3","title":"Leave","message":"Leave policy","audience":"Teachers","recipientNames":["Sam"]}]}`
		r.Get("/directorNotice/all", func(w http.ResponseWriter, req *http.Request) { _, _ = w.Write([]byte(feed)) })
		r.Get("/directorNotice/recipient", func(w http.ResponseWriter, req *http.Request) { _, _ = w.Write([]byte(feed)) })
		r.Post("/directorNotice/create", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"notices":[{"_id":"d4","title":"Meet","recipientName":"Tess"},{"_id":"d5","recipientName":"Sam"}]}`))
		})
		r.Put("/directorNotice/update/{id}", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"notice":{"_id":"d4","title":"Meeting moved"}}`))
		})
		r.Delete("/directorNotice/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{"success": true})
		})
	})

	all, err := sc.Client.ListDirectorNotices(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Sam", "TESS "}, all[1].Recipients())

	mine, err := sc.Client.ListNoticesAddressedTo(ctx, "Tess")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "d1", mine[0].ID)
	assert.Equal(t, "d2", mine[1].ID)

	none, err := sc.Client.ListNoticesAddressedTo(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = sc.Client.CreateDirectorNotice(ctx, DirectorNoticeInput{Title: "Meet", Message: "Staff meeting at 3", Audience: "Everyone", RecipientNames: []string{}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "audience")
	assert.Contains(t, verr.Fields, "recipientNames")

	created, err := sc.Client.CreateDirectorNotice(ctx, DirectorNoticeInput{
		Title: "Meet", Message: "Staff meeting at 3", Audience: DirectorAudienceTeachers,
		SelectedMembers: []string{"t1", "t2"}, RecipientNames: []string{"Tess", "Sam"},
	})
	require.NoError(t, err)
	assert.Equal(t, "d4", created.ID)

	updated, err := sc.Client.UpdateDirectorNotice(ctx, "d4", DirectorNoticeUpdate{Title: "Meeting moved", Message: "Staff meeting at 4"})
	require.NoError(t, err)
	assert.Equal(t, "Meeting moved", updated.Title)
	require.NoError(t, sc.Client.DeleteDirectorNotice(ctx, "d4"))

	got := calls.all()
	require.Len(t, got, 6)
	assert.Equal(t, []any{"Tess", "Sam"}, got[3].Body["recipientNames"])
	assert.Equal(t, []any{"t1", "t2"}, got[3].Body["selectedAudienceMembers"])
	assert.Equal(t, call{Method: http.MethodPut, Path: "/api/directorNotice/update/d4", Body: map[string]any{"title": "Meeting moved", "message": "Staff meeting at 4"}}, got[4])
	assert.Equal(t, call{Method: http.MethodDelete, Path: "/api/directorNotice/delete/d4"}, got[5])
}
