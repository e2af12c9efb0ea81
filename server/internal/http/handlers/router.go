package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwelljournal/inkwell/server/internal/http/middleware"
)

// RouterConfig collects the handlers and middleware the router mounts
type RouterConfig struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Entries *EntryHandler
	Health  *HealthHandler
	Authn   *middleware.Authenticator
}

// NewRouter builds the HTTP route table. The /api subtree requires a
// verified identity; the /auth subtree is reachable anonymously because
// it is how identities are obtained.
func NewRouter(rc RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", rc.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/auth/google", rc.Auth.InitiateLogin).Methods(http.MethodGet)
	r.HandleFunc("/auth/google/callback", rc.Auth.Callback).Methods(http.MethodGet)
	r.HandleFunc("/auth/error", rc.Auth.AuthError).Methods(http.MethodGet)
	r.HandleFunc("/auth/verify", rc.Auth.Verify).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", rc.Auth.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/status", rc.Auth.Status).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rc.Authn.Require)

	api.HandleFunc("/users/{id}", rc.Users.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", rc.Users.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", rc.Users.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/avatar", rc.Users.UploadAvatar).Methods(http.MethodPost)

	api.HandleFunc("/entries", rc.Entries.Create).Methods(http.MethodPost)
	api.HandleFunc("/entries", rc.Entries.List).Methods(http.MethodGet)
	api.HandleFunc("/entries/{id}", rc.Entries.Get).Methods(http.MethodGet)
	api.HandleFunc("/entries/{id}", rc.Entries.Update).Methods(http.MethodPut)
	api.HandleFunc("/entries/{id}", rc.Entries.Delete).Methods(http.MethodDelete)

	return r
}
