package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/services"
	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

func newEntryEnv(t *testing.T) (*mux.Router, *memUserRepo, *memEntryRepo) {
	t.Helper()

	users := newMemUserRepo()
	entries := newMemEntryRepo()
	handler := NewEntryHandler(services.NewEntryService(entries, users))

	r := mux.NewRouter()
	r.HandleFunc("/api/entries", handler.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/entries", handler.List).Methods(http.MethodGet)
	r.HandleFunc("/api/entries/{id}", handler.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/entries/{id}", handler.Update).Methods(http.MethodPut)
	r.HandleFunc("/api/entries/{id}", handler.Delete).Methods(http.MethodDelete)
	return r, users, entries
}

func TestCreateAndListEntries(t *testing.T) {
	router, users, _ := newEntryEnv(t)
	user := seedTestUser(t, users)

	body := `{"title":"Morning","body":"Slept well.","mood":"calm"}`
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(body)), user)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = asUser(httptest.NewRequest(http.MethodGet, "/api/entries", nil), user)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("expected one entry, got %s", rec.Body.String())
	}
}

func TestCreateEntryEmptyBody(t *testing.T) {
	router, users, _ := newEntryEnv(t)
	user := seedTestUser(t, users)

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(`{"title":"x"}`)), user)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := envelopeCode(t, rec); code != respond.CodeValidationError {
		t.Errorf("expected %s, got %s", respond.CodeValidationError, code)
	}
}

func TestGetForeignEntryIsForbidden(t *testing.T) {
	router, users, entries := newEntryEnv(t)
	owner := seedTestUser(t, users)

	intruder := entities.NewUser("intruder@example.com", "Intruder", nil)
	if err := users.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), intruder); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	entry := &entities.Entry{UserID: owner.ID, Body: "private thoughts"}
	if err := entries.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/entries/"+entry.ID, nil), intruder)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if code := envelopeCode(t, rec); code != respond.CodeAccessDenied {
		t.Errorf("expected %s, got %s", respond.CodeAccessDenied, code)
	}
}

func TestGetMissingEntry(t *testing.T) {
	router, users, _ := newEntryEnv(t)
	user := seedTestUser(t, users)

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/entries/nope", nil), user)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := envelopeCode(t, rec); code != respond.CodeNotFound {
		t.Errorf("expected %s, got %s", respond.CodeNotFound, code)
	}
}

func TestUpdateOwnEntry(t *testing.T) {
	router, users, entries := newEntryEnv(t)
	user := seedTestUser(t, users)

	entry := &entities.Entry{UserID: user.ID, Body: "draft"}
	if err := entries.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	body := `{"body":"final version"}`
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/entries/"+entry.ID, strings.NewReader(body)), user)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := entries.GetByID(req.Context(), entry.ID)
	if err != nil {
		t.Fatalf("failed to reload entry: %v", err)
	}
	if updated.Body != "final version" {
		t.Errorf("edit not applied, got %q", updated.Body)
	}
}

func TestDeleteForeignEntryIsForbidden(t *testing.T) {
	router, users, entries := newEntryEnv(t)
	owner := seedTestUser(t, users)

	intruder := entities.NewUser("intruder@example.com", "Intruder", nil)
	if err := users.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), intruder); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	entry := &entities.Entry{UserID: owner.ID, Body: "keep out"}
	if err := entries.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/entries/"+entry.ID, nil), intruder)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// The entry must survive the attempt
	if _, err := entries.GetByID(req.Context(), entry.ID); err != nil {
		t.Error("entry should still exist")
	}
}
