package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is the full application configuration, parsed once at startup and
// passed by reference into every component. No component reads the process
// environment directly.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`

	// PublicBaseURL is the externally reachable URL of this server, used
	// to build the OAuth callback redirect URI.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// MobileScheme is the default deep-link target the callback redirects
	// to when the client did not supply its own redirect_uri.
	MobileScheme string `env:"MOBILE_SCHEME" envDefault:"inkwell://auth"`

	DatabaseURL string `env:"DATABASE_URL"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"720h"` // 30 days
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieDomain  string        `env:"COOKIE_DOMAIN"` // production only

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"120"`

	MaxUploadBytes     int64    `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	AllowedUploadTypes []string `env:"ALLOWED_UPLOAD_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/webp"`

	Storage StorageConfig

	SentryDSN string `env:"SENTRY_DSN"`

	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
}

// StorageConfig holds the S3-compatible object store settings for avatar
// uploads. Optional as a group: when Bucket is empty uploads are disabled.
type StorageConfig struct {
	Bucket    string `env:"STORAGE_BUCKET"`
	Region    string `env:"STORAGE_REGION"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Endpoint  string `env:"STORAGE_ENDPOINT"` // custom endpoint for S3-compatible stores
	PublicURL string `env:"STORAGE_PUBLIC_URL"`
}

// Enabled reports whether an object store is configured.
func (s *StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OAuthConfigured reports whether the Google OAuth credentials are set.
func (c *Config) OAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// CallbackURL returns the OAuth callback endpoint on this server.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/auth/google/callback"
}

// Load parses the environment (plus an optional .env file) into a Config.
// It does NOT validate; callers must run Validate and refuse to start on
// any violation.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := env.Parse(&cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to parse storage environment: %w", err)
	}
	return cfg, nil
}

// Validate checks every required setting and returns ALL violations, not
// just the first. A misconfigured secret is a security incident, not a
// runtime warning: the process must refuse to serve on any violation.
func (c *Config) Validate() []error {
	var errs []error

	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.DatabaseURL == "" {
		fail("DATABASE_URL is required")
	} else if u, err := url.Parse(c.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		fail("DATABASE_URL must be a postgres:// URI")
	}

	if c.JWTSecret == "" {
		fail("JWT_SECRET is required")
	} else if len(c.JWTSecret) < 32 {
		fail("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
	}

	if c.SessionSecret == "" {
		fail("SESSION_SECRET is required")
	} else if len(c.SessionSecret) < 32 {
		fail("SESSION_SECRET must be at least 32 characters, got %d", len(c.SessionSecret))
	}

	if c.GoogleClientID == "" {
		fail("GOOGLE_CLIENT_ID is required")
	}
	if c.GoogleClientSecret == "" {
		fail("GOOGLE_CLIENT_SECRET is required")
	}

	if c.PublicBaseURL == "" {
		fail("PUBLIC_BASE_URL is required")
	} else if u, err := url.Parse(c.PublicBaseURL); err != nil || !u.IsAbs() {
		fail("PUBLIC_BASE_URL must be an absolute URL")
	}

	if !strings.Contains(c.MobileScheme, "://") {
		fail("MOBILE_SCHEME must be a URI with a scheme, got %q", c.MobileScheme)
	}

	if c.TokenTTL <= 0 {
		fail("TOKEN_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		fail("SESSION_TTL must be positive")
	}
	if c.RateLimitWindow <= 0 {
		fail("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimitMax <= 0 {
		fail("RATE_LIMIT_MAX must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		fail("MAX_UPLOAD_BYTES must be positive")
	}

	for _, origin := range c.AllowedOrigins {
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			fail("ALLOWED_ORIGINS entry %q is not a valid origin", origin)
		}
	}

	if c.Storage.Enabled() {
		if c.Storage.Region == "" {
			fail("STORAGE_REGION is required when STORAGE_BUCKET is set")
		}
		if c.Storage.AccessKey == "" {
			fail("STORAGE_ACCESS_KEY is required when STORAGE_BUCKET is set")
		}
		if c.Storage.SecretKey == "" {
			fail("STORAGE_SECRET_KEY is required when STORAGE_BUCKET is set")
		}
	}

	if c.IsProduction() && c.CookieDomain == "" {
		fail("COOKIE_DOMAIN is required in production")
	}

	return errs
}
