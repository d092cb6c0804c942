package portal

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/edugrid/portal/pkg/sdk"
)

// RouterOptions controls the construction of the portal router.
// Session is required; the remaining fields have defaults.
type RouterOptions struct {
	Session       *sdk.SessionContext
	Gate          *sdk.Gate
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the development CORS policy for a local front end.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the portal: public login, logout and health endpoints
// plus the role dashboards behind the route gate.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("portal router requires a session context")
	}
	gate := opts.Gate
	if gate == nil {
		var err error
		if gate, err = sdk.NewGate(sdk.DefaultRoutes()); err != nil {
			return nil, fmt.Errorf("build route gate: %w", err)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	// Undeclared paths are public, so the gate can guard the whole tree.
	r.Use(gate.Middleware(opts.Session.Store))

	h := &handlers{session: opts.Session}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = h.health
	}
	r.Get("/health", healthHandler)

	r.Get(sdk.LoginRoute, h.loginPage)
	r.Post(sdk.LoginRoute, h.login)
	r.Post("/logout", h.logout)
	r.Get(sdk.HomeRoute, h.home)

	r.Route("/student", func(r chi.Router) {
		r.Get("/", h.dashboard(withNotices))
		r.Get("/notice", h.notices)
		r.Get("/attendance", h.studentAttendance)
		r.Get("/examinations/{semester}", h.examinations)
		r.Get("/assignments", h.studentAssignments)
		r.Post("/assignments/{id}/submission", h.submitAssignment)
	})
	r.Route("/teacher", func(r chi.Router) {
		r.Get("/", h.dashboard(withNotices, withSemesters))
		r.Get("/notice", h.notices)
		r.Get("/director-notices", h.noticesAddressedToMe)
		r.Post("/attendance", h.submitAttendance)
		r.Get("/attendance/pdfs", h.attendancePDFs)
		r.Get("/attendance/pdf/{id}", h.attendancePDF)
		r.Get("/subjects", h.listSubjects)
		r.Get("/schedule/{semester}", h.schedule)
		r.Get("/examinations/{semester}", h.examinations)
		r.Get("/assignments", h.teacherAssignments)
		r.Post("/assignments", h.uploadAssignment)
		r.Get("/assignments/counts", h.submissionCounts)
		r.Get("/assignments/{id}/submissions", h.submissions)
	})
	r.Route("/department", func(r chi.Router) {
		r.Get("/", h.dashboard(withNotices, withSemesters))
		r.Get("/notice", h.notices)
		r.Post("/notice", h.createNotice)
		r.Patch("/notice/{id}", h.updateNotice)
		r.Delete("/notice/{id}", h.deleteNotice)

		r.Get("/semesters", h.listSemesters)
		r.Post("/semesters", h.createSemester)
		r.Patch("/semesters/{id}", h.updateSemester)
		r.Delete("/semesters/{id}", h.deleteSemester)

		r.Get("/subjects", h.listSubjects)
		r.Post("/subjects", h.createSubject)
		r.Patch("/subjects/{id}", h.updateSubject)
		r.Delete("/subjects/{id}", h.deleteSubject)

		r.Get("/schedule/{semester}", h.schedule)
		r.Post("/schedule", h.createPeriod)

		r.Get("/examinations/{semester}", h.examinations)
		r.Post("/examinations", h.createExamination)
		r.Patch("/examinations/{id}", h.updateExamination)
		r.Delete("/examinations/{id}", h.deleteExamination)
	})
	r.Route("/director", func(r chi.Router) {
		r.Get("/dashboard", h.dashboard(withNotices, withSemesters))
		r.Get("/notice", h.notices)
		r.Post("/notice", h.createNotice)
		r.Patch("/notice/{id}", h.updateNotice)
		r.Delete("/notice/{id}", h.deleteNotice)

		r.Get("/staff-notices", h.directorNotices)
		r.Post("/staff-notices", h.createDirectorNotice)
		r.Put("/staff-notices/{id}", h.updateDirectorNotice)
		r.Delete("/staff-notices/{id}", h.deleteDirectorNotice)
	})

	return r, nil
}
