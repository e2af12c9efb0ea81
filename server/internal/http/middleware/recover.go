package middleware

import (
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/inkwelljournal/inkwell/server/internal/http/respond"
)

// Recover converts handler panics into a 500 response. The panic is
// reported to Sentry when a DSN is configured; the client never sees the
// panic value.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.CurrentHub().Recover(rec)
				slog.Error("panic in handler",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec))
				respond.Error(w, http.StatusInternalServerError, respond.CodeInternalError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
