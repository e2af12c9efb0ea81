package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwelljournal/inkwell/internal/auth"
	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

const testSecret = "test-secret-key-that-is-long-enough-123"

// stubUserRepo serves a single user by ID
type stubUserRepo struct {
	user *entities.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *entities.User) error { return nil }
func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, repositories.ErrUserNotFound
}
func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (r *stubUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (r *stubUserRepo) Update(ctx context.Context, user *entities.User) error { return nil }
func (r *stubUserRepo) Delete(ctx context.Context, id string) error           { return nil }

func okHandler(t *testing.T, sawUser *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.UserFromContext(r.Context()); err == nil {
			*sawUser = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var env respond.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func TestRequireMissingToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	authn := NewAuthenticator(tokens, &stubUserRepo{})

	var sawUser bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	authn.Require(okHandler(t, &sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != respond.CodeNoToken {
		t.Errorf("expected code %s, got %s", respond.CodeNoToken, env.Code)
	}
	if sawUser {
		t.Error("handler must not run without a token")
	}
}

func TestRequireExpiredToken(t *testing.T) {
	expiredIssuer := auth.NewTokenService(testSecret, -time.Minute)
	user := &entities.User{ID: "u1", Email: "writer@example.com"}
	token, _, err := expiredIssuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	authn := NewAuthenticator(auth.NewTokenService(testSecret, time.Hour), &stubUserRepo{user: user})

	var sawUser bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authn.Require(okHandler(t, &sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != respond.CodeTokenExpired {
		t.Errorf("expected code %s, got %s", respond.CodeTokenExpired, env.Code)
	}
}

func TestRequireGarbageToken(t *testing.T) {
	authn := NewAuthenticator(auth.NewTokenService(testSecret, time.Hour), &stubUserRepo{})

	var sawUser bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	authn.Require(okHandler(t, &sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != respond.CodeInvalidToken {
		t.Errorf("expected code %s, got %s", respond.CodeInvalidToken, env.Code)
	}
}

func TestRequireDeletedUser(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	token, _, err := tokens.Issue(&entities.User{ID: "gone", Email: "gone@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	authn := NewAuthenticator(tokens, &stubUserRepo{}) // no users exist

	var sawUser bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authn.Require(okHandler(t, &sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != respond.CodeUserNotFound {
		t.Errorf("expected code %s, got %s", respond.CodeUserNotFound, env.Code)
	}
}

func TestRequireValidToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	user := &entities.User{ID: "u1", Email: "writer@example.com", DisplayName: "Writer"}
	token, _, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	authn := NewAuthenticator(tokens, &stubUserRepo{user: user})

	var gotUser *auth.CurrentUser
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authn.Require(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser == nil || gotUser.ID != "u1" {
		t.Fatalf("expected identity u1 in context, got %+v", gotUser)
	}
}
