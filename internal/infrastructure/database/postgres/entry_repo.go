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

// EntryRepository implements the EntryRepository interface for PostgreSQL
type EntryRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewEntryRepository creates a new PostgreSQL entry repository
func NewEntryRepository(db *sqlx.DB) repositories.EntryRepository {
	return &EntryRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "entry")),
	}
}

type entryRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Title     string         `db:"title"`
	Body      string         `db:"body"`
	Mood      sql.NullString `db:"mood"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *entryRow) toEntity() *entities.Entry {
	entry := &entities.Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Mood.Valid {
		entry.Mood = &r.Mood.String
	}
	return entry
}

func entryRowFromEntity(entry *entities.Entry) *entryRow {
	row := &entryRow{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Title:     entry.Title,
		Body:      entry.Body,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
	if entry.Mood != nil {
		row.Mood = sql.NullString{String: *entry.Mood, Valid: true}
	}
	return row
}

// Create stores a new entry
func (r *EntryRepository) Create(ctx context.Context, entry *entities.Entry) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("entry", "create", time.Since(start), err)
	}()

	if entry.ID == "" {
		entry.ID = idgen.GenerateID()
	}

	row := entryRowFromEntity(entry)

	query := `INSERT INTO entries (id, user_id, title, body, mood, created_at, updated_at)
		VALUES (:id, :user_id, :title, :body, :mood, :created_at, :updated_at)`

	_, err = r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by ID
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*entities.Entry, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("entry", "get_by_id", time.Since(start), err)
	}()

	var row entryRow
	query := `SELECT id, user_id, title, body, mood, created_at, updated_at
		FROM entries WHERE id = $1`

	err = r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrEntryNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return row.toEntity(), nil
}

// Update an existing entry
func (r *EntryRepository) Update(ctx context.Context, entry *entities.Entry) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("entry", "update", time.Since(start), err)
	}()

	entry.UpdatedAt = time.Now()
	row := entryRowFromEntity(entry)

	query := `UPDATE entries SET title = :title, body = :body, mood = :mood, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		err = repositories.ErrEntryNotFound
		return err
	}
	return nil
}

// Delete removes an entry
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("entry", "delete", time.Since(start), err)
	}()

	query := `DELETE FROM entries WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		err = repositories.ErrEntryNotFound
		return err
	}
	return nil
}

// ListByUser returns a page of the user's entries, newest first, plus the
// total count for pagination
func (r *EntryRepository) ListByUser(ctx context.Context, userID string, opts repositories.ListEntriesOptions) ([]*entities.Entry, int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("entry", "list_by_user", time.Since(start), err)
	}()

	var total int64
	countQuery := `SELECT COUNT(*) FROM entries WHERE user_id = $1`
	err = r.db.GetContext(ctx, &total, countQuery, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, user_id, title, body, mood, created_at, updated_at
		FROM entries WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var rows []entryRow
	err = r.db.SelectContext(ctx, &rows, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]*entities.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntity()
	}
	return entries, total, nil
}
