package repositories

import (
	"context"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
)

// UserRepository defines the interface for user data access.
// Uniqueness of email and google_id is enforced by the store itself, not by
// check-then-insert in callers.
type UserRepository interface {
	// Create a new user; the store assigns ID if empty
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by their (lowercased) email address
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByGoogleID retrieves a user by their Google subject
	GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error)

	// Update an existing user
	Update(ctx context.Context, user *entities.User) error

	// Delete a user and everything they own
	Delete(ctx context.Context, id string) error
}
