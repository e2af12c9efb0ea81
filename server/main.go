package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/spf13/cobra"

	"github.com/inkwelljournal/inkwell/internal/auth"
	"github.com/inkwelljournal/inkwell/internal/auth/google"
	"github.com/inkwelljournal/inkwell/internal/config"
	"github.com/inkwelljournal/inkwell/internal/domain/services"
	"github.com/inkwelljournal/inkwell/internal/infrastructure/database/postgres"
	"github.com/inkwelljournal/inkwell/internal/infrastructure/storage"
	"github.com/inkwelljournal/inkwell/internal/pkg/idgen"
	"github.com/inkwelljournal/inkwell/internal/pkg/logger"
	"github.com/inkwelljournal/inkwell/migrations"
	"github.com/inkwelljournal/inkwell/server/internal/http/handlers"
	"github.com/inkwelljournal/inkwell/server/internal/http/middleware"
	"github.com/inkwelljournal/inkwell/server/internal/http/session"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Inkwell API server",
		Long:  "The backend API server for the Inkwell journaling app",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.Flags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.Flags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(globalLogger)
	return nil
}

func runServer() error {
	log := slog.Default().With("component", "server")
	log.Info("Starting server initialization")

	// Load and validate configuration. Every violation is printed, then
	// the process refuses to start: a misconfigured secret must never
	// serve traffic.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if violations := cfg.Validate(); len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "config: %v\n", v)
		}
		os.Exit(1)
	}

	// Initialize Snowflake ID generator
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	// Error reporting is optional; without a DSN sentry calls are no-ops
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Connect to PostgreSQL with retries (for Kubernetes startup)
	var pgConn *postgres.Connection
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		var err error
		pgConn, err = postgres.NewConnection(cfg.DatabaseURL)
		if err == nil {
			log.Info("Successfully connected to PostgreSQL")
			break
		}

		if i < maxRetries-1 {
			log.Warn("Failed to connect to PostgreSQL",
				"attempt", i+1,
				"max_retries", maxRetries,
				"error", err,
				"retry_delay", retryDelay)
			time.Sleep(retryDelay)
			retryDelay *= 2
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}
		} else {
			return fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, err)
		}
	}
	defer pgConn.Close()

	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pgConn.DB)
	sessionRepo := postgres.NewSessionRepository(pgConn.DB)
	entryRepo := postgres.NewEntryRepository(pgConn.DB)

	// Services
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(sessionRepo, cfg.SessionTTL)
	entryService := services.NewEntryService(entryRepo, userRepo)

	googleClient := google.NewClient(google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.CallbackURL(),
	})

	// Avatar storage is optional; the upload endpoint reports when disabled
	var objectStore *storage.ObjectStore
	if cfg.Storage.Enabled() {
		objectStore, err = storage.NewObjectStore(context.Background(), storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		log.Info("Avatar storage enabled", "bucket", cfg.Storage.Bucket)
	}

	cookies := session.NewManager([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.CookieDomain, cfg.IsProduction())

	// HTTP plumbing
	authenticator := middleware.NewAuthenticator(tokenService, userRepo)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:    handlers.NewAuthHandler(cfg, googleClient, authService, userService, tokenService, cookies, userRepo),
		Users:   handlers.NewUserHandler(cfg, userService, objectStore),
		Entries: handlers.NewEntryHandler(entryService),
		Health:  handlers.NewHealthHandler(pgConn.DB),
		Authn:   authenticator,
	})

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	var handler http.Handler = router
	handler = rateLimiter.Middleware(handler)
	handler = middleware.LogRequest(handler)
	handler = middleware.Recover(handler)
	handler = cors(handler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Session janitor
	janitorCtx, cancelJanitor := context.WithCancel(context.Background())
	defer cancelJanitor()
	go authService.RunCleanupLoop(janitorCtx, cfg.SessionCleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", cfg.ListenAddr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
