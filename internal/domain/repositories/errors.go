package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when a login session cannot be found
	// or has expired (the store treats expired sessions as absent)
	ErrSessionNotFound = errors.New("login session not found")

	// ErrEntryNotFound is returned when a journal entry cannot be found
	ErrEntryNotFound = errors.New("entry not found")

	// ErrDuplicateEmail is returned when a write violates the unique
	// email constraint
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateGoogleID is returned when a write violates the unique
	// provider-subject constraint. Two concurrent first logins for the
	// same subject surface this on the loser; callers re-fetch and
	// converge on the winner's record.
	ErrDuplicateGoogleID = errors.New("google subject already in use")
)
