package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messego/internal/token"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "messego"

// Context keys set for downstream handlers once the token is verified.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
)

// Verifier resolves a raw token into an identity.
type Verifier interface {
	Verify(raw string) (token.Identity, error)
}

// Auth gates protected routes. It extracts the session cookie, verifies it
// and attaches the identity to the request context; any failure short-circuits
// with 401 and the wrapped handler never runs.
func Auth(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "No authentication token found",
			})
			return
		}

		identity, err := verifier.Verify(raw)
		if err != nil {
			if errors.Is(err, token.ErrMissingSecret) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Server configuration error",
				})
				return
			}
			message := "Invalid token"
			if errors.Is(err, token.ErrTokenExpired) {
				message = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": message,
			})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserEmail, identity.Email)
		c.Set(ContextUserName, identity.Name)
		c.Next()
	}
}
