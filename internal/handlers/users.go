package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messego/internal/models"
	"messego/internal/repositories"
)

const (
	defaultUserPageSize = 10
	maxUserPageSize     = 50
)

// UserHandler serves the contact directory.
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// List returns directory entries matching an optional search term, excluding
// the viewer by default. Page size is capped to bound response size.
func (h *UserHandler) List(c *gin.Context) {
	viewerID := currentUserID(c)
	search := strings.TrimSpace(c.Query("search"))
	excludeSelf := c.DefaultQuery("excludeSelf", "true") != "false"
	page, limit, offset := pageParams(c, defaultUserPageSize, maxUserPageSize)

	contacts, total, err := h.users.List(c.Request.Context(), viewerID, search, limit, offset, excludeSelf)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	for i := range contacts {
		contacts[i].ProfileURL = models.AvatarURL(contacts[i].Name)
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	respondOK(c, http.StatusOK, "Users fetched successfully", gin.H{
		"users":      contacts,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// Detail returns a single user with message counters.
func (h *UserHandler) Detail(c *gin.Context) {
	var req struct {
		UserID int `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		respondError(c, http.StatusBadRequest, "User ID is required")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch user details")
		return
	}

	sent, received, err := h.users.MessageStats(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch user details")
		return
	}

	respondOK(c, http.StatusOK, "User fetched successfully", gin.H{
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"createdAt":  user.CreatedAt,
			"profileUrl": models.AvatarURL(user.Name),
			"messageStats": gin.H{
				"totalSent":     sent,
				"totalReceived": received,
			},
		},
	})
}
