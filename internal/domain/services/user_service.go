package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwelljournal/inkwell/internal/auth/google"
	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
)

// UserService provides business logic for user management
type UserService struct {
	userRepo repositories.UserRepository
	log      *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      slog.Default().With(slog.String("service", "user")),
	}
}

// GetOrCreateFromProfile resolves a provider profile to a local user.
// Matching is strictly by provider subject, never by email alone, so two
// provider accounts sharing an email are never silently merged.
//
// Returns the user and whether it was newly created.
func (s *UserService) GetOrCreateFromProfile(ctx context.Context, profile *google.Profile) (*entities.User, bool, error) {
	if profile.Email == "" {
		return nil, false, ErrNoEmailFromProvider
	}
	email := strings.ToLower(profile.Email)

	user, err := s.userRepo.GetByGoogleID(ctx, profile.Subject)
	switch {
	case err == nil:
		// Known subject: refresh name and avatar from the fresh profile
		s.applyProfile(user, profile)
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to refresh user from profile: %w", err)
		}
		return user, false, nil

	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, false, fmt.Errorf("failed to look up user by subject: %w", err)
	}

	// Unknown subject but known email: either the subject lookup raced a
	// concurrent insert of the same account, or the address is linked to a
	// different provider account. Converge on the former, reject the latter.
	// The unique constraints on Create below still catch the insert race.
	switch existing, err := s.userRepo.GetByEmail(ctx, email); {
	case err == nil && existing.GoogleID != nil && *existing.GoogleID == profile.Subject:
		return existing, false, nil

	case err == nil:
		s.log.Warn("login rejected: email linked to a different account",
			slog.String("email", email))
		return nil, false, ErrEmailLinkedToOtherAccount

	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, false, fmt.Errorf("failed to look up user by email: %w", err)
	}

	// First login for this subject
	displayName := profile.Name
	if displayName == "" {
		displayName = email
		if i := strings.IndexByte(email, '@'); i > 0 {
			displayName = email[:i]
		}
	}

	subject := profile.Subject
	user = entities.NewUser(email, displayName, &subject)
	if profile.Picture != "" {
		picture := profile.Picture
		user.AvatarURL = &picture
	}

	err = s.userRepo.Create(ctx, user)
	switch {
	case err == nil:
		s.log.Info("created user from first login",
			slog.String("user_id", user.ID),
			slog.String("email", email))
		return user, true, nil

	case errors.Is(err, repositories.ErrDuplicateGoogleID):
		// A concurrent first login won the race; converge on its record.
		winner, getErr := s.userRepo.GetByGoogleID(ctx, profile.Subject)
		if getErr != nil {
			return nil, false, fmt.Errorf("failed to converge on concurrent signup: %w", getErr)
		}
		return winner, false, nil

	case errors.Is(err, repositories.ErrDuplicateEmail):
		// Email belongs to a different subject. Reject explicitly rather
		// than surfacing an opaque constraint failure or merging accounts.
		s.log.Warn("login rejected: email linked to a different account",
			slog.String("email", email))
		return nil, false, ErrEmailLinkedToOtherAccount

	default:
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
}

// applyProfile copies the refreshable fields from a provider profile
func (s *UserService) applyProfile(user *entities.User, profile *google.Profile) {
	if profile.Name != "" {
		user.DisplayName = profile.Name
	}
	if profile.Picture != "" {
		picture := profile.Picture
		user.AvatarURL = &picture
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*entities.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateUserParams holds the user-editable fields; nil means unchanged
type UpdateUserParams struct {
	DisplayName   *string
	Onboarding    *entities.OnboardingState
	DailyReminder *bool
	ReminderTime  *string
	WeeklyDigest  *bool
}

// UpdateUser applies profile and preference changes. Onboarding state only
// ever advances; a regression is rejected rather than ignored.
func (s *UserService) UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Onboarding != nil {
		next := *params.Onboarding
		if !next.Valid() {
			return nil, fmt.Errorf("unknown onboarding state %q", next)
		}
		if next.Precedes(user.Onboarding) {
			return nil, ErrOnboardingRegression
		}
		user.Onboarding = next
	}

	if params.DisplayName != nil && *params.DisplayName != "" {
		user.DisplayName = *params.DisplayName
	}
	if params.DailyReminder != nil {
		user.DailyReminder = *params.DailyReminder
	}
	if params.ReminderTime != nil {
		user.ReminderTime = params.ReminderTime
	}
	if params.WeeklyDigest != nil {
		user.WeeklyDigest = *params.WeeklyDigest
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SetAvatar stores the URL of a freshly uploaded avatar on the user
func (s *UserService) SetAvatar(ctx context.Context, userID, avatarURL string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = &avatarURL
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to set avatar: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user and everything they own. Ownership is enforced
// by the caller; this is the mechanism, not the policy.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.log.Info("deleted user", slog.String("user_id", userID))
	return nil
}
