package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"messego/internal/models"
)

const (
	issuer   = "messego-app"
	audience = "messego-users"

	// TTL is the fixed session lifetime. Logout clears the cookie only;
	// an issued token stays valid until this expiry.
	TTL = 7 * 24 * time.Hour
)

var (
	// ErrMissingSecret means the signing secret is not configured. This is a
	// fatal configuration condition, surfaced as a server error, never bypassed.
	ErrMissingSecret = errors.New("jwt secret is not configured")
	// ErrTokenExpired means the token was valid but its expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and claim mismatches.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Identity is the claim set resolved from a verified token.
type Identity struct {
	UserID int
	Email  string
	Name   string
}

// Claims is the JWT payload minted at login.
type Claims struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens. Verification is stateless:
// there is no revocation list.
type Service struct {
	secret []byte
}

// NewService builds a token service. An empty secret is reported by Issue and
// Verify as ErrMissingSecret; the capability halts entirely instead of
// degrading to unsigned tokens.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue mints a signed token embedding the user identity.
func (s *Service) Issue(user models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer and audience and returns the
// embedded identity.
func (s *Service) Verify(raw string) (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, ErrMissingSecret
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{UserID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}
