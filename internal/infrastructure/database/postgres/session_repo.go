package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/pkg/idgen"
	"github.com/inkwelljournal/inkwell/internal/pkg/metrics"
)

// SessionRepository implements the SessionRepository interface for PostgreSQL
type SessionRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewSessionRepository creates a new PostgreSQL login session repository
func NewSessionRepository(db *sqlx.DB) repositories.SessionRepository {
	return &SessionRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "session")),
	}
}

type sessionRow struct {
	ID          string    `db:"id"`
	State       string    `db:"state"`
	RedirectURI string    `db:"redirect_uri"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *sessionRow) toEntity() *entities.LoginSession {
	return &entities.LoginSession{
		ID:          r.ID,
		State:       r.State,
		RedirectURI: r.RedirectURI,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
}

// Create stores a new login session
func (r *SessionRepository) Create(ctx context.Context, session *entities.LoginSession) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("session", "create", time.Since(start), err)
	}()

	if session.ID == "" {
		session.ID = idgen.GenerateID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query := `INSERT INTO login_sessions (id, state, redirect_uri, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query,
		session.ID, session.State, session.RedirectURI, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create login session: %w", err)
	}

	return nil
}

// GetByID retrieves a login session by ID. Expired sessions are treated as
// not found; the row itself is left for the janitor.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.LoginSession, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("session", "get_by_id", time.Since(start), err)
	}()

	var row sessionRow
	query := `SELECT id, state, redirect_uri, expires_at, created_at
		FROM login_sessions WHERE id = $1 AND expires_at > $2`

	err = r.db.GetContext(ctx, &row, query, id, time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrSessionNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get login session: %w", err)
	}

	return row.toEntity(), nil
}

// Delete removes a login session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("session", "delete", time.Since(start), err)
	}()

	query := `DELETE FROM login_sessions WHERE id = $1`
	_, err = r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete login session: %w", err)
	}
	return nil
}

// DeleteExpired removes login sessions whose expiry precedes the cutoff
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("session", "delete_expired", time.Since(start), err)
	}()

	query := `DELETE FROM login_sessions WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
