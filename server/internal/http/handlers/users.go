package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inkwelljournal/inkwell/internal/auth"
	"github.com/inkwelljournal/inkwell/internal/config"
	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
	"github.com/inkwelljournal/inkwell/internal/domain/services"
	"github.com/inkwelljournal/inkwell/internal/infrastructure/storage"
	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

// UserHandler serves the user profile endpoints. All of them are
// owner-only: authentication happens in middleware, ownership here.
type UserHandler struct {
	cfg     *config.Config
	userSvc *services.UserService
	store   *storage.ObjectStore // nil when uploads are disabled
	log     *slog.Logger
}

// NewUserHandler creates the user handler
func NewUserHandler(cfg *config.Config, userSvc *services.UserService, store *storage.ObjectStore) *UserHandler {
	return &UserHandler{
		cfg:     cfg,
		userSvc: userSvc,
		store:   store,
		log:     slog.Default().With(slog.String("handler", "users")),
	}
}

// requireOwner translates the ownership check into the HTTP error pair:
// 401 for "who are you", 403 for "not yours"
func requireOwner(w http.ResponseWriter, r *http.Request, ownerID string) bool {
	if err := auth.RequireOwner(r.Context(), ownerID); err != nil {
		if errors.Is(err, auth.ErrAccessDenied) {
			respond.Error(w, http.StatusForbidden, respond.CodeAccessDenied, "you do not have access to this resource")
		} else {
			respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authentication required")
		}
		return false
	}
	return true
}

// Get returns the full account record.
// GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if !requireOwner(w, r, userID) {
		return
	}

	user, err := h.userSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to load user")
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

// updateUserRequest holds the editable fields; absent fields are unchanged
type updateUserRequest struct {
	DisplayName   *string `json:"display_name"`
	Onboarding    *string `json:"onboarding_state"`
	DailyReminder *bool   `json:"daily_reminder"`
	ReminderTime  *string `json:"reminder_time"`
	WeeklyDigest  *bool   `json:"weekly_digest"`
}

// Update applies profile and preference changes.
// PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if !requireOwner(w, r, userID) {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, "invalid request body")
		return
	}

	params := services.UpdateUserParams{
		DisplayName:   req.DisplayName,
		DailyReminder: req.DailyReminder,
		ReminderTime:  req.ReminderTime,
		WeeklyDigest:  req.WeeklyDigest,
	}
	if req.Onboarding != nil {
		state := entities.OnboardingState(*req.Onboarding)
		params.Onboarding = &state
	}

	user, err := h.userSvc.UpdateUser(r.Context(), userID, params)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			respond.Error(w, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
		case errors.Is(err, services.ErrOnboardingRegression):
			respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, "onboarding state cannot move backwards")
		default:
			respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, err.Error())
		}
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

// Delete removes the account and everything it owns.
// DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if !requireOwner(w, r, userID) {
		return
	}

	if err := h.userSvc.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to delete user")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"message": "account deleted"})
}

// UploadAvatar stores a new avatar image and updates the profile.
// POST /api/users/{id}/avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if !requireOwner(w, r, userID) {
		return
	}

	if h.store == nil {
		respond.Error(w, http.StatusServiceUnavailable, respond.CodeUploadsDisabled, "avatar uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		respond.Error(w, http.StatusRequestEntityTooLarge, respond.CodeValidationError, "upload too large")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidationError, "missing avatar file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !h.allowedType(contentType) {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidationError,
			fmt.Sprintf("content type %q is not allowed", contentType))
		return
	}

	current, err := h.userSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to load user")
		return
	}

	ext := path.Ext(header.Filename)
	if ext == "" {
		ext = extensionFor(contentType)
	}
	key := "avatars/" + userID + ext

	avatarURL, err := h.store.Put(r.Context(), key, contentType, file)
	if err != nil {
		h.log.Error("avatar upload failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to store avatar")
		return
	}

	user, err := h.userSvc.SetAvatar(r.Context(), userID, avatarURL)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "failed to update avatar")
		return
	}

	// The previous avatar object is orphaned once the profile points at the
	// new key. Cleanup is best effort; provider-hosted pictures are skipped
	// because KeyForURL only matches our own store.
	if current.AvatarURL != nil {
		if oldKey, ok := h.store.KeyForURL(*current.AvatarURL); ok && oldKey != key {
			if err := h.store.Delete(r.Context(), oldKey); err != nil {
				h.log.Warn("failed to delete replaced avatar",
					slog.String("user_id", userID),
					slog.String("key", oldKey),
					slog.String("error", err.Error()))
			}
		}
	}

	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) allowedType(contentType string) bool {
	for _, allowed := range h.cfg.AllowedUploadTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}
