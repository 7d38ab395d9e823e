package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/identity"
	"clinic-admin/internal/session"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).Identity() != nil {
		redirect(w, r, "/dashboard")
		return
	}
	s.render(w, r, http.StatusOK, "login", pageData{Signup: r.URL.Query().Get("mode") == "signup"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	id, err := s.gw.SignIn(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		msg := "Login failed: invalid email or password."
		if errors.Is(err, identity.ErrGatewayUnavailable) {
			msg = "Login failed: the sign-in service is unavailable. Please try again."
		}
		setFlash(w, "error", msg)
		redirect(w, r, "/")
		return
	}
	session.FromContext(r.Context()).Set(id)
	s.log.WithField("uid", id.UserID).Info("signed in")
	redirect(w, r, "/dashboard")
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	_, err := s.gw.SignUp(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			msg = "Signup failed: This email is already in use. Please log in or use a different email."
		case errors.Is(err, identity.ErrWeakPassword):
			msg = "Signup failed: password must be at least 6 characters."
		case errors.Is(err, identity.ErrInvalidEmail):
			msg = "Signup failed: please enter a valid email address."
		default:
			msg = "Signup failed. Please try again."
		}
		setFlash(w, "error", msg)
		redirect(w, r, "/?mode=signup")
		return
	}
	setFlash(w, "success", "Signup successful! You can now log in.")
	redirect(w, r, "/")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sc := session.FromContext(r.Context())
	if err := sc.Logout(r.Context()); err != nil {
		s.log.WithError(err).Warn("logout failed")
		setFlash(w, "error", "Logout failed. Please try again.")
		redirect(w, r, "/dashboard")
		return
	}
	redirect(w, r, "/")
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dashboard", pageData{Cards: dashboardCards})
}

// view returns this browser's list view switched to the current identity.
func (s *Server) view(r *http.Request) (*ListView, error) {
	sc := session.FromContext(r.Context())
	lv := s.views.Get(sc.SID())
	return lv, lv.SetIdentity(r.Context(), sc.OwnerID())
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	sc := session.FromContext(r.Context())
	lv := s.views.Get(sc.SID())
	s.renderList(w, r, http.StatusOK, lv, lv.Open(r.Context(), sc.OwnerID()))
}

func (s *Server) newAppointment(w http.ResponseWriter, r *http.Request) {
	lv, err := s.view(r)
	lv.Add()
	s.renderList(w, r, http.StatusOK, lv, err)
}

func (s *Server) editAppointment(w http.ResponseWriter, r *http.Request) {
	lv, err := s.view(r)
	if err == nil {
		err = lv.Edit(mux.Vars(r)["id"])
	}
	if err != nil {
		setFlash(w, "error", notice(err))
		redirect(w, r, "/appointments")
		return
	}
	s.renderList(w, r, http.StatusOK, lv, nil)
}

func (s *Server) saveAppointment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := &Form{}
	f.Bind(r.PostForm)

	lv, err := s.view(r)
	if err == nil {
		err = lv.Submit(r.Context(), f)
	} else {
		lv.Keep(f, err)
	}
	if err != nil {
		s.renderList(w, r, statusFor(err), lv, err)
		return
	}
	if f.Editing() {
		setFlash(w, "success", "Appointment updated successfully")
	} else {
		setFlash(w, "success", "Appointment added successfully")
	}
	redirect(w, r, "/appointments")
}

func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	s.views.Get(session.FromContext(r.Context()).SID()).Cancel()
	redirect(w, r, "/appointments")
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	lv, err := s.view(r)
	if err == nil {
		err = lv.Delete(r.Context(), mux.Vars(r)["id"])
	}
	if err != nil {
		setFlash(w, "error", notice(err))
	} else {
		setFlash(w, "success", "Appointment deleted")
	}
	redirect(w, r, "/appointments")
}

func (s *Server) exportCalendar(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.FetchAll(r.Context(), session.FromContext(r.Context()).OwnerID())
	if err != nil {
		http.Error(w, notice(err), http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := WriteCalendar(&buf, list); err != nil {
		s.log.WithError(err).Error("calendar export failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
	buf.WriteTo(w)
}

func (s *Server) renderList(w http.ResponseWriter, r *http.Request, code int, lv *ListView, err error) {
	data := pageData{View: lv.Snapshot()}
	if err != nil {
		data.Notice = notice(err)
	}
	s.render(w, r, code, "appointments", data)
}

var fieldLabels = map[string]string{
	"date":        "Date",
	"time":        "Time",
	"patientName": "Patient Name",
	"status":      "Status",
}

// notice turns a repository error into the message shown to the user.
func notice(err error) string {
	var ve *appointment.ValidationError
	switch {
	case errors.As(err, &ve):
		label := fieldLabels[ve.Field]
		if label == "" {
			label = ve.Field
		}
		return label + " " + ve.Reason + "."
	case errors.Is(err, appointment.ErrNotFound):
		return "That appointment no longer exists."
	default:
		return "The appointment store is unavailable. Please try again."
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, appointment.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, appointment.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}
