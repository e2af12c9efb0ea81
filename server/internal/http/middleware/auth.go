package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/inkwelljournal/inkwell/internal/auth"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/pkg/metrics"
	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

// Authenticator attaches verified identities to requests. Verification is
// two-step: the token signature and claims first, then a lookup to confirm
// the subject still exists. A valid token for a deleted user is rejected.
type Authenticator struct {
	tokens *auth.TokenService
	users  repositories.UserRepository
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(tokens *auth.TokenService, users repositories.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// extractBearer pulls the token out of the Authorization header
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Require rejects requests without a verifiable identity. Every failure is
// a 401 with a machine-readable code; missing, expired and tampered tokens
// are distinguishable to the client.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			metrics.TokenVerifications.WithLabelValues("missing").Inc()
			respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authorization token required")
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				metrics.TokenVerifications.WithLabelValues("expired").Inc()
				respond.Error(w, http.StatusUnauthorized, respond.CodeTokenExpired, "token has expired")
			default:
				metrics.TokenVerifications.WithLabelValues("invalid").Inc()
				respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidToken, "invalid token")
			}
			return
		}

		user, err := a.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				metrics.TokenVerifications.WithLabelValues("user_gone").Inc()
				respond.Error(w, http.StatusUnauthorized, respond.CodeUserNotFound, "user no longer exists")
				return
			}
			metrics.TokenVerifications.WithLabelValues("error").Inc()
			respond.Error(w, http.StatusInternalServerError, respond.CodeAuthError, "authentication failed")
			return
		}

		metrics.TokenVerifications.WithLabelValues("ok").Inc()
		ctx := auth.SetUserInContext(r.Context(), &auth.CurrentUser{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
