package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/pkg/idgen"
	"github.com/inkwelljournal/inkwell/internal/pkg/metrics"
)

// UserRepository implements the UserRepository interface for PostgreSQL
type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repositories.UserRepository {
	return &UserRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
	}
}

// userRow represents a user as stored in the database
type userRow struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	DisplayName   string         `db:"display_name"`
	AvatarURL     sql.NullString `db:"avatar_url"`
	GoogleID      sql.NullString `db:"google_id"`
	Onboarding    string         `db:"onboarding_state"`
	DailyReminder bool           `db:"daily_reminder"`
	ReminderTime  sql.NullString `db:"reminder_time"`
	WeeklyDigest  bool           `db:"weekly_digest"`
	TotalEntries  int            `db:"total_entries"`
	StreakDays    int            `db:"streak_days"`
	LastEntryAt   sql.NullTime   `db:"last_entry_at"`
	JoinedAt      time.Time      `db:"joined_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// toEntity converts a userRow to a domain entity
func (r *userRow) toEntity() *entities.User {
	user := &entities.User{
		ID:            r.ID,
		Email:         r.Email,
		DisplayName:   r.DisplayName,
		Onboarding:    entities.OnboardingState(r.Onboarding),
		DailyReminder: r.DailyReminder,
		WeeklyDigest:  r.WeeklyDigest,
		TotalEntries:  r.TotalEntries,
		StreakDays:    r.StreakDays,
		JoinedAt:      r.JoinedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if r.AvatarURL.Valid {
		user.AvatarURL = &r.AvatarURL.String
	}
	if r.GoogleID.Valid {
		user.GoogleID = &r.GoogleID.String
	}
	if r.ReminderTime.Valid {
		user.ReminderTime = &r.ReminderTime.String
	}
	if r.LastEntryAt.Valid {
		user.LastEntryAt = &r.LastEntryAt.Time
	}

	return user
}

// userRowFromEntity converts a domain entity to a userRow
func userRowFromEntity(user *entities.User) *userRow {
	row := &userRow{
		ID:            user.ID,
		Email:         strings.ToLower(user.Email),
		DisplayName:   user.DisplayName,
		Onboarding:    string(user.Onboarding),
		DailyReminder: user.DailyReminder,
		WeeklyDigest:  user.WeeklyDigest,
		TotalEntries:  user.TotalEntries,
		StreakDays:    user.StreakDays,
		JoinedAt:      user.JoinedAt,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	if user.AvatarURL != nil {
		row.AvatarURL = sql.NullString{String: *user.AvatarURL, Valid: true}
	}
	if user.GoogleID != nil {
		row.GoogleID = sql.NullString{String: *user.GoogleID, Valid: true}
	}
	if user.ReminderTime != nil {
		row.ReminderTime = sql.NullString{String: *user.ReminderTime, Valid: true}
	}
	if user.LastEntryAt != nil {
		row.LastEntryAt = sql.NullTime{Time: *user.LastEntryAt, Valid: true}
	}

	return row
}

// mapUniqueViolation translates unique-index violations into the sentinel
// errors the service layer branches on
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}
	switch pqErr.Constraint {
	case "users_email_key":
		return repositories.ErrDuplicateEmail
	case "users_google_id_key":
		return repositories.ErrDuplicateGoogleID
	}
	return err
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "create", time.Since(start), err)
	}()

	if user.ID == "" {
		user.ID = idgen.GenerateID()
	}

	r.log.Debug("creating user",
		slog.String("id", user.ID),
		slog.String("email", user.Email))

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := userRowFromEntity(user)

	query := `INSERT INTO users (
			id, email, display_name, avatar_url, google_id, onboarding_state,
			daily_reminder, reminder_time, weekly_digest,
			total_entries, streak_days, last_entry_at,
			joined_at, created_at, updated_at
		) VALUES (
			:id, :email, :display_name, :avatar_url, :google_id, :onboarding_state,
			:daily_reminder, :reminder_time, :weekly_digest,
			:total_entries, :streak_days, :last_entry_at,
			:joined_at, :created_at, :updated_at
		)`

	_, err = r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		err = mapUniqueViolation(err)
		if errors.Is(err, repositories.ErrDuplicateEmail) || errors.Is(err, repositories.ErrDuplicateGoogleID) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, email, display_name, avatar_url, google_id, onboarding_state,
	       daily_reminder, reminder_time, weekly_digest,
	       total_entries, streak_days, last_entry_at,
	       joined_at, created_at, updated_at`

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "get_by_id", time.Since(start), err)
	}()

	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err = r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.toEntity(), nil
}

// GetByEmail retrieves a user by their email address (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "get_by_email", time.Since(start), err)
	}()

	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err = r.db.GetContext(ctx, &row, query, strings.ToLower(email))
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return row.toEntity(), nil
}

// GetByGoogleID retrieves a user by their Google subject identifier
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "get_by_google_id", time.Since(start), err)
	}()

	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`

	err = r.db.GetContext(ctx, &row, query, googleID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	return row.toEntity(), nil
}

// Update an existing user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "update", time.Since(start), err)
	}()

	user.UpdatedAt = time.Now()
	row := userRowFromEntity(user)

	query := `
		UPDATE users SET
			email = :email,
			display_name = :display_name,
			avatar_url = :avatar_url,
			google_id = :google_id,
			onboarding_state = :onboarding_state,
			daily_reminder = :daily_reminder,
			reminder_time = :reminder_time,
			weekly_digest = :weekly_digest,
			total_entries = :total_entries,
			streak_days = :streak_days,
			last_entry_at = :last_entry_at,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		err = mapUniqueViolation(err)
		if errors.Is(err, repositories.ErrDuplicateEmail) || errors.Is(err, repositories.ErrDuplicateGoogleID) {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		err = repositories.ErrUserNotFound
		return err
	}

	return nil
}

// Delete removes a user. Entries are removed by the ON DELETE CASCADE on
// the entries table.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "delete", time.Since(start), err)
	}()

	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		err = repositories.ErrUserNotFound
		return err
	}
	return nil
}
