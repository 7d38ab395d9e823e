package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/identity"
	"clinic-admin/internal/logging"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/model"
	"clinic-admin/internal/session"
	"clinic-admin/internal/store"
	"clinic-admin/internal/web"
)

type harness struct {
	t      *testing.T
	ts     *httptest.Server
	client *http.Client
	store  *store.SQLite
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logging.Discard()
	st, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)

	gw := identity.NewGateway(st, "test-secret", log)
	rl := middleware.NewRateLimiter(1000, 1000)
	t.Cleanup(rl.Stop)

	srv, err := web.NewServer(gw, session.NewManager(gw, false, log), appointment.NewRepository(st, log), rl, log)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, ts: ts, client: &http.Client{Jar: jar}, store: st}
}

func (h *harness) get(path string) (int, string) {
	h.t.Helper()
	resp, err := h.client.Get(h.ts.URL + path)
	require.NoError(h.t, err)
	return read(h.t, resp)
}

func (h *harness) post(path string, v url.Values) (int, string) {
	h.t.Helper()
	resp, err := h.client.PostForm(h.ts.URL+path, v)
	require.NoError(h.t, err)
	return read(h.t, resp)
}

func read(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func (h *harness) signUpAndIn(email string) {
	h.t.Helper()
	creds := url.Values{"email": {email}, "password": {"secret1"}}
	_, body := h.post("/signup", creds)
	require.Contains(h.t, body, "Signup successful! You can now log in.")
	_, body = h.post("/login", creds)
	require.Contains(h.t, body, "Total Appointments")
}

func (h *harness) only(t *testing.T) model.Appointment {
	t.Helper()
	list, err := h.store.AppointmentsWhere(context.Background(), store.FieldStatus, string(model.StatusScheduled))
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}

func TestProtectedPagesRedirect(t *testing.T) {
	h := newHarness(t)
	for _, p := range []string{"/dashboard", "/appointments", "/appointments/new", "/appointments.ics"} {
		code, body := h.get(p)
		assert.Equal(t, http.StatusOK, code, p)
		assert.Contains(t, body, "Enter your credentials", p)
	}
}

func TestSignupAndLogin(t *testing.T) {
	h := newHarness(t)

	_, body := h.get("/?mode=signup")
	assert.Contains(t, body, "Create a new account")

	h.signUpAndIn("admin@clinic.test")

	_, body = h.get("/dashboard")
	assert.Contains(t, body, "Pending Approvals")
	assert.Contains(t, body, "Registered Users")
	assert.Contains(t, body, "admin@clinic.test")

	// the login screen forwards signed-in users
	_, body = h.get("/")
	assert.Contains(t, body, "Welcome")
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.signUpAndIn("admin@clinic.test")

	_, body := h.post("/signup", url.Values{"email": {"admin@clinic.test"}, "password": {"another1"}})
	assert.Contains(t, body, "This email is already in use")
}

func TestLoginFailure(t *testing.T) {
	h := newHarness(t)
	_, body := h.post("/login", url.Values{"email": {"nobody@clinic.test"}, "password": {"secret1"}})
	assert.Contains(t, body, "Login failed: invalid email or password.")
}

func TestAppointmentsCRUD(t *testing.T) {
	h := newHarness(t)
	h.signUpAndIn("admin@clinic.test")

	_, body := h.get("/appointments")
	assert.Contains(t, body, "No appointments found.")

	_, body = h.get("/appointments/new")
	assert.Contains(t, body, `name="patientName"`)
	assert.NotContains(t, body, "<table>")

	_, body = h.post("/appointments", url.Values{
		"date": {"2024-05-01"}, "time": {"09:00"}, "patientName": {"Jane Doe"}, "status": {"scheduled"},
	})
	assert.Contains(t, body, "Appointment added successfully")
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "<table>")

	a := h.only(t)
	_, body = h.get("/appointments/" + a.ID + "/edit")
	assert.Contains(t, body, `value="Jane Doe"`)

	_, body = h.post("/appointments", url.Values{
		"id": {a.ID}, "date": {"2024-05-02"}, "time": {"10:30"}, "patientName": {"Jane Roe"}, "status": {"scheduled"},
	})
	assert.Contains(t, body, "Appointment updated successfully")
	assert.Contains(t, body, "Jane Roe")
	got := h.only(t)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.OwnerID, got.OwnerID)

	code, body := h.get("/appointments.ics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "SUMMARY:Jane Roe")
	assert.Contains(t, body, "UID:"+a.ID)
	assert.NotContains(t, body, "TZID=")
	assert.Contains(t, body, "DTSTART:20240502T103000")

	_, body = h.post("/appointments/"+a.ID+"/delete", nil)
	assert.Contains(t, body, "Appointment deleted")
	assert.Contains(t, body, "No appointments found.")

	// deleting again is not an error
	_, body = h.post("/appointments/"+a.ID+"/delete", nil)
	assert.NotContains(t, body, "unavailable")
}

func TestAppointmentValidationKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.signUpAndIn("admin@clinic.test")

	h.get("/appointments/new")
	code, body := h.post("/appointments", url.Values{
		"date": {"2024-05-01"}, "time": {"09:00"}, "patientName": {""}, "status": {"scheduled"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "Patient Name is required.")
	assert.Contains(t, body, `name="patientName"`)

	_, body = h.post("/appointments/cancel", nil)
	assert.Contains(t, body, "No appointments found.")
}

func TestLogoutAndSwitchIdentity(t *testing.T) {
	h := newHarness(t)
	h.signUpAndIn("alice@clinic.test")
	h.post("/appointments", url.Values{
		"date": {"2024-05-01"}, "time": {"09:00"}, "patientName": {"Alice Patient"}, "status": {"scheduled"},
	})

	_, body := h.post("/logout", nil)
	assert.Contains(t, body, "Enter your credentials")
	_, body = h.get("/dashboard")
	assert.Contains(t, body, "Enter your credentials")

	// same browser, new identity
	h.signUpAndIn("bob@clinic.test")
	_, body = h.get("/appointments")
	assert.NotContains(t, body, "Alice Patient")
	assert.Contains(t, body, "No appointments found.")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.get("/")
	code, body := h.get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "clinic_admin_http_requests_total"))
}
