package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"messego/internal/middleware"
	"messego/internal/models"
	"messego/internal/observability"
	"messego/internal/repositories"
	"messego/internal/telemetry"
	"messego/internal/token"
)

const (
	bcryptCost   = 12
	cookieMaxAge = int(token.TTL / time.Second)
	cookiePath   = "/"
)

// AuthHandler serves signup, login, logout and the current-identity endpoint.
type AuthHandler struct {
	users      repositories.UserRepository
	tokens     *token.Service
	emitter    *telemetry.Emitter
	production bool
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tokens *token.Service, emitter *telemetry.Emitter, production bool) *AuthHandler {
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		emitter:    emitter,
		production: production,
	}
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	fieldErrors := gin.H{}
	if msg := validateName(req.Name); msg != "" {
		fieldErrors["name"] = msg
	}
	if msg := validateEmail(req.Email); msg != "" {
		fieldErrors["email"] = msg
	}
	if msg := validatePassword(req.Password); msg != "" {
		fieldErrors["password"] = msg
	}
	if len(fieldErrors) > 0 {
		respondValidationError(c, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(c.Request.Context(), name, email, string(hash))
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			respondValidationError(c, http.StatusConflict, "Email already exists",
				gin.H{"email": "An account with this email already exists"})
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.emitter.Emit(c.Request.Context(), telemetry.EventUserSignup, requestIDFromContext(c), &user.ID, gin.H{
		"email": user.Email,
		"ip":    observability.IPFromRequest(c.Request),
	})

	respondOK(c, http.StatusCreated, "Account created successfully", gin.H{
		"user": gin.H{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}

// Login checks credentials, mints a session token and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		respondError(c, http.StatusBadRequest, "Please enter a valid email address")
		return
	}

	// Unknown email and wrong password are indistinguishable to the caller.
	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	signed, err := h.tokens.Issue(user)
	if err != nil {
		if errors.Is(err, token.ErrMissingSecret) {
			respondError(c, http.StatusInternalServerError, "Server configuration error")
			return
		}
		respondError(c, http.StatusInternalServerError, "Token generation failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, signed, cookieMaxAge, cookiePath, "", h.production, true)

	h.emitter.Emit(c.Request.Context(), telemetry.EventUserLogin, requestIDFromContext(c), &user.ID, gin.H{
		"ip": observability.IPFromRequest(c.Request),
	})

	respondOK(c, http.StatusOK, "Login successful", gin.H{
		"user": gin.H{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
		"token": signed,
	})
}

// Logout clears the session cookie. The token itself stays valid until its
// natural expiry; there is no server-side revocation.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, cookiePath, "", h.production, true)
	respondOK(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the identity attached by the auth middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	name := c.GetString(middleware.ContextUserName)
	respondOK(c, http.StatusOK, "Authenticated", gin.H{
		"user": gin.H{
			"id":         currentUserID(c),
			"email":      c.GetString(middleware.ContextUserEmail),
			"name":       name,
			"profileUrl": models.AvatarURL(name),
		},
	})
}
