package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
)

// Issuer and Audience are bound into every issued token and checked on
// verification; a mismatch rejects the token.
const (
	Issuer   = "inkwell-server"
	Audience = "inkwell-mobile"
)

var (
	// ErrTokenExpired is returned for structurally valid tokens past their expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for bad signatures and issuer/audience mismatches
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenMalformed is returned when the token cannot be parsed at all
	ErrTokenMalformed = errors.New("malformed token")
)

// Claims represents the JWT claims for authentication. Email and display
// name are convenience copies; the subject user ID is authoritative.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless bearer tokens. Verification
// never touches storage; callers re-fetch the subject user themselves, so a
// deleted user is a distinct condition from a bad token.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a token service. The secret must already have been
// validated for length by the config layer.
func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

// Issue creates a signed bearer token for the user
func (s *TokenService) Issue(user *entities.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.lifetime)

	claims := Claims{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify validates a bearer token and returns its claims. The three failure
// modes are distinguished because clients react differently to each:
// expired prompts a silent re-login, invalid and malformed force a logout.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithAudience(Audience))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrTokenInvalid)
	}

	return claims, nil
}
