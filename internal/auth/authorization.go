package auth

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated means no identity is attached to the request ("who are you")
	ErrUnauthenticated = errors.New("no authenticated user in context")

	// ErrAccessDenied means the identity may not touch this resource
	// ("you may not touch this") - distinct from ErrUnauthenticated
	ErrAccessDenied = errors.New("access denied")
)

// CurrentUser contains the authenticated identity attached to a request
type CurrentUser struct {
	ID          string
	Email       string
	DisplayName string
}

// contextKey is the key for storing the identity in context
type contextKey string

const userContextKey contextKey = "user"

// SetUserInContext stores the authenticated identity in the context
func SetUserInContext(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated identity from the context
func UserFromContext(ctx context.Context) (*CurrentUser, error) {
	user, ok := ctx.Value(userContextKey).(*CurrentUser)
	if !ok || user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireOwner checks that the acting identity owns the resource identified
// by ownerID. Runs after authentication; being logged in never implies
// being allowed.
func RequireOwner(ctx context.Context, ownerID string) error {
	user, err := UserFromContext(ctx)
	if err != nil {
		return err
	}
	if user.ID != ownerID {
		return ErrAccessDenied
	}
	return nil
}
