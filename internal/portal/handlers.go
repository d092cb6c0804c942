package portal

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edugrid/portal/pkg/sdk"
)

type handlers struct {
	session *sdk.SessionContext
}

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("portal: encode response: %v", err)
	}
}

// respondError maps SDK errors onto portal responses. An expired session has
// already been torn down by the authorizer; the user is sent back to login.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *sdk.ValidationError
		apiErr *sdk.APIError
	)
	switch {
	case errors.Is(err, sdk.ErrUnauthorized), errors.Is(err, sdk.ErrNotAuthenticated):
		http.Redirect(w, r, sdk.LoginRoute, http.StatusFound)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid input", Fields: verr.Fields})
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: msg})
	default:
		log.Printf("portal: %s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Something went wrong"})
	}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"authenticated": h.session.Store.IsAuthenticated(),
	})
}

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	if session := h.session.Store.Snapshot(); session.Authenticated() {
		http.Redirect(w, r, session.Role().LandingPath(), http.StatusFound)
		return
	}
	http.Redirect(w, r, sdk.LoginRoute, http.StatusFound)
}

func (h *handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	if session := h.session.Store.Snapshot(); session.Authenticated() {
		http.Redirect(w, r, session.Role().LandingPath(), http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"roles":   sdk.Roles,
		"message": "POST role, email and password to log in",
	})
}

// maxLoginBody bounds the login request read into a wipeable buffer.
const maxLoginBody = 64 << 10

type loginBody struct {
	Role     string     `json:"role"`
	Email    string     `json:"email"`
	Password sdk.Secret `json:"password"`
}

// decodeLogin reads the credentials from a JSON or form body. JSON bodies are
// read into a buffer that is wiped before returning, so the password only
// survives in the returned Secret.
func decodeLogin(r *http.Request) (loginBody, string) {
	var body loginBody
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
		if err == nil {
			err = json.Unmarshal(raw, &body)
		}
		sdk.Secret(raw).Wipe()
		if err != nil {
			body.Password.Wipe()
			return loginBody{}, "Invalid request body"
		}
		return body, ""
	}

	if err := r.ParseForm(); err != nil {
		return loginBody{}, "Invalid form"
	}
	return loginBody{
		Role:     r.PostForm.Get("role"),
		Email:    r.PostForm.Get("email"),
		Password: sdk.Secret(r.PostForm.Get("password")),
	}, ""
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	body, problem := decodeLogin(r)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: problem})
		return
	}

	// Login zeroes the password buffer once the exchange is over.
	req := &sdk.LoginRequest{
		Role:     sdk.Role(body.Role),
		Email:    body.Email,
		Password: body.Password,
	}

	result, err := h.session.Exchange.Login(r.Context(), req)
	if err != nil {
		var (
			loginErr *sdk.LoginError
			verr     *sdk.ValidationError
		)
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid input", Fields: verr.Fields})
		case errors.As(err, &loginErr):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: loginErr.Message})
		default:
			respondError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, result.Landing, http.StatusSeeOther)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.session.Store.Logout(r.Context())
	http.Redirect(w, r, sdk.LoginRoute, http.StatusSeeOther)
}

// dashboardView is the payload of a role's landing route.
type dashboardView struct {
	User      *sdk.User      `json:"user"`
	Landing   string         `json:"landing"`
	Notices   []sdk.Notice   `json:"notices"`
	Semesters []sdk.Semester `json:"semesters,omitempty"`
}

type dashboardPart func(h *handlers, r *http.Request, session sdk.Session, view *dashboardView) error

func withNotices(h *handlers, r *http.Request, session sdk.Session, view *dashboardView) error {
	notices, err := h.session.Client.ListNotices(r.Context(), sdk.NoticeFeedFor(session.Role()))
	if err != nil {
		return err
	}
	view.Notices = notices
	return nil
}

func withSemesters(h *handlers, r *http.Request, _ sdk.Session, view *dashboardView) error {
	semesters, err := h.session.Client.ListSemesters(r.Context())
	if err != nil {
		return err
	}
	view.Semesters = semesters
	return nil
}

func (h *handlers) dashboard(parts ...dashboardPart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sdk.SessionFromContext(r.Context())
		if !ok {
			respondError(w, r, sdk.ErrNotAuthenticated)
			return
		}
		view := dashboardView{User: session.User, Landing: session.Role().LandingPath()}
		for _, part := range parts {
			if err := part(h, r, session, &view); err != nil {
				respondError(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *handlers) notices(w http.ResponseWriter, r *http.Request) {
	session, ok := sdk.SessionFromContext(r.Context())
	if !ok {
		respondError(w, r, sdk.ErrNotAuthenticated)
		return
	}
	audience := sdk.NoticeAudience(strings.ToLower(r.URL.Query().Get("audience")))
	if audience == "" {
		audience = sdk.NoticeFeedFor(session.Role())
	}
	notices, err := h.session.Client.ListNotices(r.Context(), audience)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

func (h *handlers) createNotice(w http.ResponseWriter, r *http.Request) {
	var input sdk.NoticeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}
	notice, err := h.session.Client.CreateNotice(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, notice)
}

type attendanceResult struct {
	Present  int                       `json:"present"`
	Absent   int                       `json:"absent"`
	PDFBytes int                       `json:"pdfBytes"`
	PDFError string                    `json:"pdfError,omitempty"`
	Records  []sdk.AttendancePDFRecord `json:"records"`
}

func (h *handlers) submitAttendance(w http.ResponseWriter, r *http.Request) {
	var sheet sdk.AttendanceSheet
	if err := json.NewDecoder(r.Body).Decode(&sheet); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}
	receipt, err := h.session.Client.SubmitAttendance(r.Context(), sheet)
	if err != nil {
		respondError(w, r, err)
		return
	}

	present, absent := receipt.Sheet.Summary()
	result := attendanceResult{
		Present:  present,
		Absent:   absent,
		PDFBytes: len(receipt.PDF),
		Records:  receipt.Records,
	}
	if receipt.PDFErr != nil {
		result.PDFError = receipt.PDFErr.Error()
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handlers) attendancePDFs(w http.ResponseWriter, r *http.Request) {
	records, err := h.session.Client.ListAttendancePDFs(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handlers) attendancePDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.session.Client.FetchAttendancePDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
