package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clinic-admin/internal/auth"
	"clinic-admin/internal/identity"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	SIDCookie     = "sid"
)

// Authenticator is the part of the identity gateway the manager needs.
type Authenticator interface {
	Verify(token string) (*identity.Identity, error)
	Refresh(ctx context.Context, raw string) (*identity.Identity, error)
	Revoker
}

// Manager rebuilds a Context from cookies on every request and writes cookie
// changes back when the identity changes.
type Manager struct {
	auth   Authenticator
	secure bool
	log    logrus.FieldLogger
}

func NewManager(a Authenticator, secure bool, log logrus.FieldLogger) *Manager {
	return &Manager{auth: a, secure: secure, log: log.WithField("component", "session")}
}

func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := cookie(r, SIDCookie)
		if sid == "" {
			sid = uuid.New().String()
			m.set(w, SIDCookie, sid, 0)
		}

		ident, refreshed := m.resolve(r)
		if refreshed {
			m.Start(w, ident)
		} else if ident == nil && cookie(r, RefreshCookie) != "" {
			m.Clear(w)
		}

		sc := New(sid, ident, m.auth)
		unsub := sc.Subscribe(func(id *identity.Identity) {
			if id == nil {
				m.Clear(w)
				return
			}
			m.Start(w, id)
		})
		defer unsub()

		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), sc)))
	})
}

// resolve prefers the access token and falls back to a refresh.
func (m *Manager) resolve(r *http.Request) (*identity.Identity, bool) {
	if tok := cookie(r, AccessCookie); tok != "" {
		if id, err := m.auth.Verify(tok); err == nil {
			id.RefreshToken = cookie(r, RefreshCookie)
			return id, false
		}
	}
	raw := cookie(r, RefreshCookie)
	if raw == "" {
		return nil, false
	}
	id, err := m.auth.Refresh(r.Context(), raw)
	if err != nil {
		m.log.WithError(err).Debug("refresh failed")
		return nil, false
	}
	return id, true
}

// Start writes the identity's token cookies.
func (m *Manager) Start(w http.ResponseWriter, id *identity.Identity) {
	m.set(w, AccessCookie, id.AccessToken, auth.AccessTTL)
	if id.RefreshToken != "" {
		m.set(w, RefreshCookie, id.RefreshToken, auth.RefreshTTL)
	}
}

// Clear expires the token cookies. The sid survives so the browser keeps its
// view state key.
func (m *Manager) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (m *Manager) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}

func cookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
