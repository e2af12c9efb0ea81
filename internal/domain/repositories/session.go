package repositories

import (
	"context"
	"time"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
)

// SessionRepository defines the interface for login session data access.
// The store is the single source of truth for session existence: GetByID
// must return ErrSessionNotFound for sessions past their expiry even if the
// row still physically exists.
type SessionRepository interface {
	Create(ctx context.Context, session *entities.LoginSession) error
	GetByID(ctx context.Context, id string) (*entities.LoginSession, error)
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions that expired before the given time
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
