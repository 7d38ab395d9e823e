// Package web serves the browser UI: login, the dashboard shell and the
// appointments manager.
package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"clinic-admin/internal/identity"
	"clinic-admin/internal/metrics"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/model"
	"clinic-admin/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Gateway signs browser users in and up.
type Gateway interface {
	SignIn(ctx context.Context, email, password string) (*identity.Identity, error)
	SignUp(ctx context.Context, email, password string) (*identity.Identity, error)
}

type Server struct {
	gw       Gateway
	sessions *session.Manager
	repo     Repository
	views    *Views
	limiter  *middleware.RateLimiter
	log      logrus.FieldLogger
	pages    map[string]*template.Template
}

func NewServer(gw Gateway, sessions *session.Manager, repo Repository, limiter *middleware.RateLimiter, log logrus.FieldLogger) (*Server, error) {
	pages, err := parsePages("login", "dashboard", "appointments")
	if err != nil {
		return nil, err
	}
	return &Server{
		gw:       gw,
		sessions: sessions,
		repo:     repo,
		views:    NewViews(repo),
		limiter:  limiter,
		log:      log.WithField("component", "web"),
		pages:    pages,
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Instrument)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	app := r.PathPrefix("/").Subrouter()
	app.Use(s.sessions.Middleware)

	limited := middleware.LimitHTTP(s.limiter)
	app.HandleFunc("/", s.loginPage).Methods(http.MethodGet)
	app.Handle("/login", limited(http.HandlerFunc(s.login))).Methods(http.MethodPost)
	app.Handle("/signup", limited(http.HandlerFunc(s.signup))).Methods(http.MethodPost)
	app.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	app.Handle("/dashboard", s.protected(s.dashboard)).Methods(http.MethodGet)
	app.Handle("/appointments", s.protected(s.listAppointments)).Methods(http.MethodGet)
	app.Handle("/appointments", s.protected(s.saveAppointment)).Methods(http.MethodPost)
	app.Handle("/appointments.ics", s.protected(s.exportCalendar)).Methods(http.MethodGet)
	app.Handle("/appointments/new", s.protected(s.newAppointment)).Methods(http.MethodGet)
	app.Handle("/appointments/cancel", s.protected(s.cancelAppointment)).Methods(http.MethodPost)
	app.Handle("/appointments/{id}/edit", s.protected(s.editAppointment)).Methods(http.MethodGet)
	app.Handle("/appointments/{id}/delete", s.protected(s.deleteAppointment)).Methods(http.MethodPost)
	return r
}

// protected sends signed-out visitors back to the login screen.
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()).Identity() == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h(w, r)
	})
}

type Card struct {
	Title string
	Value int
}

// dashboard counters are placeholders, not live figures
var dashboardCards = []Card{
	{"Total Appointments", 23},
	{"Pending Approvals", 5},
	{"Registered Users", 12},
}

type pageData struct {
	Flash  *Flash
	Email  string
	Signup bool
	Cards  []Card
	View   Snapshot
	Notice string
}

func parsePages(names ...string) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"title": func(s model.Status) string {
			if s == "" {
				return ""
			}
			return strings.ToUpper(string(s[:1])) + string(s[1:])
		},
	}
	out := make(map[string]*template.Template, len(names))
	for _, n := range names {
		t, err := template.New(n).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+n+".html")
		if err != nil {
			return nil, err
		}
		out[n] = t
	}
	return out, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, page string, data pageData) {
	data.Flash = popFlash(w, r)
	if id := session.FromContext(r.Context()).Identity(); id != nil {
		data.Email = id.Email
	}

	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.WithError(err).WithField("page", page).Error("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
