package entities

import (
	"strings"
	"time"
)

// Entry is a single journal entry. Entries belong to exactly one user and
// are only ever visible to their owner.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title,omitempty" db:"title"`
	Body      string    `json:"body" db:"body"`
	Mood      *string   `json:"mood,omitempty" db:"mood"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the fields a client can set.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Body) == "" {
		return ErrEmptyEntryBody
	}
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	return nil
}
