package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inkwelljournal/inkwell/internal/auth"
	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/domain/services"
	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

// EntryHandler serves the journal entry endpoints
type EntryHandler struct {
	entrySvc *services.EntryService
	log      *slog.Logger
}

// NewEntryHandler creates the entry handler
func NewEntryHandler(entrySvc *services.EntryService) *EntryHandler {
	return &EntryHandler{
		entrySvc: entrySvc,
		log:      slog.Default().With(slog.String("handler", "entries")),
	}
}

type entryRequest struct {
	Title string  `json:"title"`
	Body  string  `json:"body"`
	Mood  *string `json:"mood"`
}

// Create stores a new entry for the authenticated user.
// POST /api/entries
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authentication required")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, "invalid request body")
		return
	}

	entry, err := h.entrySvc.CreateEntry(r.Context(), user.ID, req.Title, req.Body, req.Mood)
	if err != nil {
		if isEntryValidation(err) {
			respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, err.Error())
			return
		}
		h.log.Error("failed to create entry", slog.String("error", err.Error()))
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to create entry")
		return
	}

	respond.JSON(w, http.StatusCreated, entry)
}

// List returns a page of the authenticated user's entries, newest first.
// GET /api/entries?limit=&offset=
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, total, err := h.entrySvc.ListEntries(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.log.Error("failed to list entries", slog.String("error", err.Error()))
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to list entries")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

// loadOwned fetches an entry and checks the acting user owns it. A 404 for
// missing, 403 for someone else's entry; existence is not hidden.
func (h *EntryHandler) loadOwned(w http.ResponseWriter, r *http.Request) *entities.Entry {
	entryID := mux.Vars(r)["id"]

	entry, err := h.entrySvc.GetEntry(r.Context(), entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "entry not found")
			return nil
		}
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to load entry")
		return nil
	}

	if !requireOwner(w, r, entry.UserID) {
		return nil
	}
	return entry
}

// Get returns a single entry.
// GET /api/entries/{id}
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry := h.loadOwned(w, r)
	if entry == nil {
		return
	}
	respond.JSON(w, http.StatusOK, entry)
}

// Update applies edits to an entry.
// PUT /api/entries/{id}
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	entry := h.loadOwned(w, r)
	if entry == nil {
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, "invalid request body")
		return
	}

	updated, err := h.entrySvc.UpdateEntry(r.Context(), entry, req.Title, req.Body, req.Mood)
	if err != nil {
		if isEntryValidation(err) {
			respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to update entry")
		return
	}

	respond.JSON(w, http.StatusOK, updated)
}

// Delete removes an entry.
// DELETE /api/entries/{id}
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entry := h.loadOwned(w, r)
	if entry == nil {
		return
	}

	if err := h.entrySvc.DeleteEntry(r.Context(), entry.ID); err != nil {
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to delete entry")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"message": "entry deleted"})
}

func isEntryValidation(err error) bool {
	return errors.Is(err, entities.ErrEmptyEntryBody) || errors.Is(err, entities.ErrTitleTooLong)
}
