package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/pkg/metrics"
)

// AuthService owns the server-side login sessions that bridge the two legs
// of the OAuth handshake. Sessions carry only the client's post-auth
// redirect URI plus the CSRF state, and are deleted the moment the callback
// consumes them.
type AuthService struct {
	sessionRepo repositories.SessionRepository
	ttl         time.Duration
	log         *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(sessionRepo repositories.SessionRepository, ttl time.Duration) *AuthService {
	return &AuthService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		log:         slog.Default().With(slog.String("service", "auth")),
	}
}

// BeginLogin creates a login session carrying the client's redirect URI
func (s *AuthService) BeginLogin(ctx context.Context, redirectURI string) (*entities.LoginSession, error) {
	state, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	session := &entities.LoginSession{
		State:       state,
		RedirectURI: redirectURI,
		ExpiresAt:   time.Now().Add(s.ttl),
		CreatedAt:   time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create login session: %w", err)
	}
	return session, nil
}

// ConsumeLogin loads and deletes the login session for a callback. The
// provider-echoed state must match the stored one; an expired or missing
// session surfaces as repositories.ErrSessionNotFound.
func (s *AuthService) ConsumeLogin(ctx context.Context, sessionID, state string) (*entities.LoginSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.State != state {
		s.log.Warn("login state mismatch, possible CSRF attempt",
			slog.String("session_id", sessionID))
		return nil, ErrLoginStateMismatch
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		// The session was read successfully; a failed delete should not
		// abort the login, the janitor will collect it.
		s.log.Warn("failed to delete consumed login session",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}

	return session, nil
}

// CleanupExpired removes login sessions that have passed their TTL
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.sessionRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	if deleted > 0 {
		metrics.SessionsCleaned.Add(float64(deleted))
		s.log.Info("removed expired login sessions", slog.Int64("count", deleted))
	}
	return deleted, nil
}

// RunCleanupLoop periodically removes expired sessions until the context is
// cancelled. Intended to run as a background goroutine from main.
func (s *AuthService) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.CleanupExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("session cleanup failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
