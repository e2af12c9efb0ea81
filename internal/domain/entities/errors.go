package entities

import "errors"

// Validation errors for client-supplied entity fields
var (
	ErrEmptyEntryBody = errors.New("entry body must not be empty")
	ErrTitleTooLong   = errors.New("entry title exceeds 200 characters")
)
