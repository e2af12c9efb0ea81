package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

// HealthHandler answers liveness probes
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates the health handler
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports service and database health.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respond.Error(w, http.StatusServiceUnavailable, respond.CodeInternalError, "database unavailable")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
