package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messego/internal/models"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret")

	signed, err := svc.Issue(models.User{ID: 42, Name: "Alice Doe", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	identity, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, 42, identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "Alice Doe", identity.Name)
}

func TestIssueMissingSecret(t *testing.T) {
	svc := NewService("")

	_, err := svc.Issue(models.User{ID: 1})
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = svc.Verify("whatever")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService("test-secret")

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewService("secret-a").Issue(models.User{ID: 1, Email: "a@b.co", Name: "A"})
	require.NoError(t, err)

	_, err = NewService("secret-b").Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	secret := "test-secret"
	claims := Claims{
		UserID: 1,
		Email:  "a@b.co",
		Name:   "A",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewService(secret).Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongIssuerOrAudience(t *testing.T) {
	secret := "test-secret"

	for name, registered := range map[string]jwt.RegisteredClaims{
		"wrong issuer": {
			Issuer:    "someone-else",
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		"wrong audience": {
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{"other-users"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	} {
		t.Run(name, func(t *testing.T) {
			claims := Claims{UserID: 1, RegisteredClaims: registered}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
			require.NoError(t, err)

			_, err = NewService(secret).Verify(signed)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestVerifyRejectsUnexpectedMethod(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewService("test-secret").Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
