package repositories

import (
	"context"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
)

// EntryRepository defines the interface for journal entry data access
type EntryRepository interface {
	Create(ctx context.Context, entry *entities.Entry) error
	GetByID(ctx context.Context, id string) (*entities.Entry, error)
	Update(ctx context.Context, entry *entities.Entry) error
	Delete(ctx context.Context, id string) error

	// ListByUser returns a page of the user's entries, newest first,
	// along with the total count for the user.
	ListByUser(ctx context.Context, userID string, opts ListEntriesOptions) ([]*entities.Entry, int64, error)
}

// ListEntriesOptions provides pagination for listing entries
type ListEntriesOptions struct {
	Limit  int
	Offset int
}
