// Package google drives the Google OAuth code exchange and maps the
// provider's userinfo document to a typed profile at the boundary.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// Scopes requested from Google. Profile and email only; no extended scopes.
var Scopes = []string{"openid", "email", "profile"}

// Profile is the provider profile as internal code sees it. Email may be
// empty; callers must treat that as a terminal login failure.
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Config configures the OAuth client. The endpoint URLs are overridable so
// tests can point the client at a local server.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserinfoURL string
}

// Client performs the three-legged OAuth exchange against Google
type Client struct {
	oauth       *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
}

// NewClient creates a Google OAuth client
func NewClient(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserinfoURL == "" {
		cfg.UserinfoURL = defaultUserinfoURL
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userinfoURL: cfg.UserinfoURL,
		httpClient:  http.DefaultClient,
	}
}

// AuthCodeURL builds the consent-screen URL carrying the CSRF state
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange swaps an authorization code for the user's profile
func (c *Client) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return c.fetchProfile(ctx, token.AccessToken)
}

// userinfoDoc is the raw userinfo response; it never leaves this package
type userinfoDoc struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (c *Client) fetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var doc userinfoDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if doc.Sub == "" {
		return nil, fmt.Errorf("missing sub in userinfo response")
	}

	return &Profile{
		Subject:       doc.Sub,
		Email:         doc.Email,
		EmailVerified: doc.EmailVerified,
		Name:          doc.Name,
		Picture:       doc.Picture,
	}, nil
}
