package entities

import "time"

// LoginSession is the short-lived server-side record that carries state
// across the OAuth redirect hop. The store enforces expiry; a session past
// ExpiresAt must be treated as nonexistent. Sessions are deleted as soon as
// the callback consumes them.
type LoginSession struct {
	ID          string    `json:"id" db:"id"`
	State       string    `json:"state" db:"state"`               // CSRF token echoed by the provider
	RedirectURI string    `json:"redirect_uri" db:"redirect_uri"` // where to send the user agent after login
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsExpired returns true if the login session has expired.
func (s *LoginSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
