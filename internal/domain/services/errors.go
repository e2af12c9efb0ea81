package services

import "errors"

var (
	// ErrNoEmailFromProvider is returned when the provider profile has no
	// email address; logins cannot proceed without one.
	ErrNoEmailFromProvider = errors.New("provider profile contains no email")

	// ErrEmailLinkedToOtherAccount is returned when a first login presents
	// an email that already belongs to a different provider subject. The
	// accounts are never merged silently.
	ErrEmailLinkedToOtherAccount = errors.New("email already linked to a different account")

	// ErrOnboardingRegression is returned when an update would move a
	// user's onboarding state backwards.
	ErrOnboardingRegression = errors.New("onboarding state cannot move backwards")

	// ErrLoginStateMismatch is returned when the OAuth state echoed by the
	// provider does not match the stored login session.
	ErrLoginStateMismatch = errors.New("login state mismatch")
)
