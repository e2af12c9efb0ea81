// Package session bridges the two legs of the OAuth handshake with a
// signed cookie. The cookie carries only the opaque login-session ID; the
// state and redirect URI live server-side.
package session

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	// cookieName is the name of the login-hop cookie
	cookieName = "inkwell_oauth"

	// loginIDKey is the session key for the login-session ID
	loginIDKey = "login_session_id"
)

// Manager wraps gorilla/sessions for the OAuth login hop
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a session manager. The cookie lifetime matches the
// server-side login session TTL; the database is the source of truth for
// expiry either way.
func NewManager(secret []byte, ttl time.Duration, domain string, secure bool) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/auth",
		Domain:   domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		// Lax, not Strict: the callback arrives as a top-level redirect
		// from the provider and still needs the cookie.
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// SetLoginID stores the login-session ID in the cookie
func (m *Manager) SetLoginID(r *http.Request, w http.ResponseWriter, id string) error {
	session, err := m.store.Get(r, cookieName)
	if err != nil {
		session, _ = m.store.New(r, cookieName)
	}
	session.Values[loginIDKey] = id
	return session.Save(r, w)
}

// GetLoginID retrieves the login-session ID from the cookie
func (m *Manager) GetLoginID(r *http.Request) (string, error) {
	session, err := m.store.Get(r, cookieName)
	if err != nil {
		return "", err
	}
	id, ok := session.Values[loginIDKey].(string)
	if !ok || id == "" {
		return "", http.ErrNoCookie
	}
	return id, nil
}

// Clear removes the login-hop cookie
func (m *Manager) Clear(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, cookieName)
	if err != nil {
		return nil
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
