package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
)

// EntryService provides business logic for journal entries
type EntryService struct {
	entryRepo repositories.EntryRepository
	userRepo  repositories.UserRepository
	log       *slog.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(entryRepo repositories.EntryRepository, userRepo repositories.UserRepository) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		log:       slog.Default().With(slog.String("service", "entry")),
	}
}

// CreateEntry persists a new entry and updates the owner's usage stats.
// A failed stats update does not fail the entry; the entry is the record
// of truth, the stats are derived convenience.
func (s *EntryService) CreateEntry(ctx context.Context, userID, title, body string, mood *string) (*entities.Entry, error) {
	now := time.Now()
	entry := &entities.Entry{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Mood:      mood,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		user.RecordEntry(now)
		err = s.userRepo.Update(ctx, user)
	}
	if err != nil {
		s.log.Warn("failed to update usage stats",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}

	return entry, nil
}

// GetEntry retrieves an entry by ID. Ownership is checked by the caller
// against the returned entry's UserID.
func (s *EntryService) GetEntry(ctx context.Context, entryID string) (*entities.Entry, error) {
	return s.entryRepo.GetByID(ctx, entryID)
}

// ListEntries returns a page of the user's entries, newest first
func (s *EntryService) ListEntries(ctx context.Context, userID string, limit, offset int) ([]*entities.Entry, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.entryRepo.ListByUser(ctx, userID, repositories.ListEntriesOptions{
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateEntry applies edits to an existing entry
func (s *EntryService) UpdateEntry(ctx context.Context, entry *entities.Entry, title, body string, mood *string) (*entities.Entry, error) {
	if title != "" {
		entry.Title = title
	}
	if body != "" {
		entry.Body = body
	}
	if mood != nil {
		entry.Mood = mood
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	entry.UpdatedAt = time.Now()
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry
func (s *EntryService) DeleteEntry(ctx context.Context, entryID string) error {
	if err := s.entryRepo.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
