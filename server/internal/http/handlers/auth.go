package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/inkwelljournal/inkwell/internal/auth"
	"github.com/inkwelljournal/inkwell/internal/auth/google"
	"github.com/inkwelljournal/inkwell/internal/config"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/domain/services"
	"github.com/inkwelljournal/inkwell/internal/pkg/metrics"
	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
	"github.com/inkwelljournal/inkwell/server/internal/http/session"
)

// Redirect error codes delivered to the mobile app via the deep link. The
// app shows a message per code; the detail stays in the server logs.
const (
	redirectAuthFailed  = "authentication_failed"
	redirectTokenFailed = "token_generation_failed"
	redirectUserFailed  = "user_creation_failed"
	redirectNoEmail     = "no_email_from_provider"
)

// AuthHandler implements the OAuth login flow and token endpoints
type AuthHandler struct {
	cfg     *config.Config
	google  *google.Client
	authSvc *services.AuthService
	userSvc *services.UserService
	tokens  *auth.TokenService
	cookies *session.Manager
	users   repositories.UserRepository
	log     *slog.Logger
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(
	cfg *config.Config,
	googleClient *google.Client,
	authSvc *services.AuthService,
	userSvc *services.UserService,
	tokens *auth.TokenService,
	cookies *session.Manager,
	users repositories.UserRepository,
) *AuthHandler {
	return &AuthHandler{
		cfg:     cfg,
		google:  googleClient,
		authSvc: authSvc,
		userSvc: userSvc,
		tokens:  tokens,
		cookies: cookies,
		users:   users,
		log:     slog.Default().With(slog.String("handler", "auth")),
	}
}

// InitiateLogin starts the OAuth flow: creates a login session, drops the
// hop cookie and redirects to the provider's consent screen.
// GET /auth/google
func (h *AuthHandler) InitiateLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = h.cfg.MobileScheme
	}
	if !strings.Contains(redirectURI, "://") {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, "redirect_uri must be an absolute URI")
		return
	}

	loginSession, err := h.authSvc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.log.Error("failed to begin login", slog.String("error", err.Error()))
		respond.Error(w, http.StatusInternalServerError, respond.CodeAuthError, "failed to start login")
		return
	}

	if err := h.cookies.SetLoginID(r, w, loginSession.ID); err != nil {
		h.log.Error("failed to set login cookie", slog.String("error", err.Error()))
		respond.Error(w, http.StatusInternalServerError, respond.CodeAuthError, "failed to start login")
		return
	}

	http.Redirect(w, r, h.google.AuthCodeURL(loginSession.State), http.StatusFound)
}

// Callback finishes the OAuth flow. Every failure redirects back into the
// app with a machine-readable error code; success delivers the bearer
// token on the deep link.
// GET /auth/google/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loginID, err := h.cookies.GetLoginID(r)
	if err != nil {
		h.log.Warn("callback without login cookie")
		h.failLogin(w, r, redirectAuthFailed)
		return
	}
	_ = h.cookies.Clear(r, w)

	loginSession, err := h.authSvc.ConsumeLogin(ctx, loginID, r.URL.Query().Get("state"))
	if err != nil {
		h.log.Warn("failed to consume login session", slog.String("error", err.Error()))
		h.failLogin(w, r, redirectAuthFailed)
		return
	}
	redirectURI := loginSession.RedirectURI

	if provErr := r.URL.Query().Get("error"); provErr != "" {
		h.log.Info("provider returned error", slog.String("error", provErr))
		h.failLogin(w, r, redirectAuthFailed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failLogin(w, r, redirectAuthFailed)
		return
	}

	profile, err := h.google.Exchange(ctx, code)
	if err != nil {
		h.log.Error("code exchange failed", slog.String("error", err.Error()))
		h.failLogin(w, r, redirectAuthFailed)
		return
	}

	user, created, err := h.userSvc.GetOrCreateFromProfile(ctx, profile)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoEmailFromProvider):
			h.failLogin(w, r, redirectNoEmail)
		case errors.Is(err, services.ErrEmailLinkedToOtherAccount):
			h.failLogin(w, r, redirectUserFailed)
		default:
			h.log.Error("failed to resolve user", slog.String("error", err.Error()))
			h.failLogin(w, r, redirectUserFailed)
		}
		return
	}

	token, _, err := h.tokens.Issue(user)
	if err != nil {
		h.log.Error("failed to issue token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		h.failLogin(w, r, redirectTokenFailed)
		return
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.Logins.WithLabelValues(outcome).Inc()
	h.log.Info("login completed",
		slog.String("user_id", user.ID),
		slog.Bool("created", created))

	// The deep link carries the token plus the public identity view;
	// internal-only fields never leave the server.
	identity, err := json.Marshal(user.Public())
	if err != nil {
		h.failLogin(w, r, redirectTokenFailed)
		return
	}

	http.Redirect(w, r, appendQuery(redirectURI, url.Values{
		"token": {token},
		"user":  {string(identity)},
	}), http.StatusFound)
}

// failLogin bounces the failure through /auth/error, which owns the
// redirect back into the app
func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, code string) {
	metrics.Logins.WithLabelValues("failed").Inc()
	http.Redirect(w, r, "/auth/error?"+url.Values{"message": {code}}.Encode(), http.StatusFound)
}

// appendQuery attaches query parameters to a URI that may already carry some
func appendQuery(uri string, values url.Values) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + values.Encode()
}

// AuthError hands a login failure back to the app: the callback bounces
// failures here with ?message=<code>, and this redirects into the client
// scheme carrying both the human-readable error and the machine code.
// GET /auth/error
func (h *AuthHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("message")
	if code == "" {
		code = r.URL.Query().Get("error")
	}
	messages := map[string]string{
		redirectAuthFailed:  "authentication with the provider failed",
		redirectTokenFailed: "failed to generate an access token",
		redirectUserFailed:  "failed to create or link the user account",
		redirectNoEmail:     "the provider did not supply an email address",
	}
	message, ok := messages[code]
	if !ok {
		code = redirectAuthFailed
		message = messages[redirectAuthFailed]
	}

	http.Redirect(w, r, appendQuery(h.cfg.MobileScheme, url.Values{
		"error": {message},
		"code":  {code},
	}), http.StatusFound)
}

// verifyRequest is the body of POST /auth/verify when the token is not in
// the Authorization header
type verifyRequest struct {
	Token string `json:"token"`
}

// Verify checks a bearer token and returns the current account data.
// POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authorization token required")
		return
	}

	claims, err := h.tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			respond.Error(w, http.StatusUnauthorized, respond.CodeTokenExpired, "token has expired")
		default:
			respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidToken, "invalid token")
		}
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respond.Error(w, http.StatusUnauthorized, respond.CodeUserNotFound, "user no longer exists")
			return
		}
		respond.Error(w, http.StatusInternalServerError, respond.CodeAuthError, "verification failed")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"tokenValid": true,
		"user":       user,
	})
}

// Logout acknowledges a client-side logout. Tokens are stateless and remain
// valid until expiry; the client discards its copy.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	_ = h.cookies.Clear(r, w)
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "logged out",
	})
}

// Status reports whether the auth subsystem is configured. Boolean flags
// only; no secret material and no per-request identity.
// GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"oauth_configured": h.cfg.OAuthConfigured(),
		"jwt_configured":   h.cfg.JWTSecret != "",
	})
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(r *http.Request) string {
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
