package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"messego/internal/media"
	"messego/internal/models"
	"messego/internal/observability"
	"messego/internal/repositories"
	"messego/internal/telemetry"
)

const (
	defaultMessagePageSize = 20
	maxMessagePageSize     = 100

	// mediaCleanupTimeout bounds the best-effort destroy of an image whose
	// message was soft-deleted. The cleanup runs detached from the request
	// context so an aborted request cannot orphan the call mid-flight.
	mediaCleanupTimeout = 30 * time.Second
)

// MessageHandler serves the conversation and message-delivery endpoints.
type MessageHandler struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	uploader media.Uploader
	emitter  *telemetry.Emitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, users repositories.UserRepository, uploader media.Uploader, emitter *telemetry.Emitter) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		users:    users,
		uploader: uploader,
		emitter:  emitter,
	}
}

// Send stores a new message. Image messages are uploaded through the media
// collaborator first; if that fails the send is aborted and no row is
// created.
func (h *MessageHandler) Send(c *gin.Context) {
	senderID := currentUserID(c)

	var req struct {
		ToID      int    `json:"toId"`
		Type      string `json:"type"`
		Text      string `json:"text"`
		ImageData string `json:"imageData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.Type == "" {
		req.Type = models.MessageTypeText
	}

	if req.ToID == 0 {
		respondError(c, http.StatusBadRequest, "Receiver ID is required")
		return
	}
	if req.ToID == senderID {
		respondError(c, http.StatusBadRequest, "Cannot send message to yourself")
		return
	}

	switch req.Type {
	case models.MessageTypeText:
		if req.Text == "" {
			respondError(c, http.StatusBadRequest, "Text message cannot be empty")
			return
		}
	case models.MessageTypeImage:
		if req.ImageData == "" {
			respondError(c, http.StatusBadRequest, "Image data is required for image messages")
			return
		}
	default:
		respondError(c, http.StatusBadRequest, "Unknown message type")
		return
	}

	if _, err := h.users.GetSummary(c.Request.Context(), req.ToID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "Receiver not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	msg := models.Message{
		FromID: senderID,
		ToID:   req.ToID,
		Type:   req.Type,
	}
	switch req.Type {
	case models.MessageTypeText:
		msg.Text = &req.Text
	case models.MessageTypeImage:
		upload, err := h.uploader.Upload(c.Request.Context(), req.ImageData)
		if err != nil {
			observability.IncMediaFailure("upload")
			log.Printf("image upload failed: sender=%d err=%v", senderID, err)
			respondError(c, http.StatusInternalServerError, "Failed to upload image")
			return
		}
		msg.ImageURL = &upload.URL
		msg.ImagePublicID = &upload.PublicID
	}

	stored, err := h.messages.Create(c.Request.Context(), msg)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	observability.IncMessageSent(stored.Type)
	h.emitter.Emit(c.Request.Context(), telemetry.EventMessageSent, requestIDFromContext(c), &senderID, gin.H{
		"messageId": stored.ID,
		"toId":      stored.ToID,
		"type":      stored.Type,
	})

	respondOK(c, http.StatusOK, "Message sent successfully", gin.H{"message": stored})
}

// Conversation lists the message history with another user, oldest first.
// Unless markAsRead=false, every unread message from that user is marked
// read regardless of the requested page, and the returned unreadCount
// reflects the state after that transition.
func (h *MessageHandler) Conversation(c *gin.Context) {
	viewerID := currentUserID(c)

	otherID, err := strconv.Atoi(c.Param("userId"))
	if err != nil || otherID <= 0 {
		respondError(c, http.StatusBadRequest, "User ID is required")
		return
	}
	markAsRead := c.DefaultQuery("markAsRead", "true") != "false"
	page, limit, offset := pageParams(c, defaultMessagePageSize, maxMessagePageSize)

	otherUser, err := h.users.GetSummary(c.Request.Context(), otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	msgs, err := h.messages.ListConversation(c.Request.Context(), viewerID, otherID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	total, err := h.messages.CountConversation(c.Request.Context(), viewerID, otherID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	if markAsRead {
		marked, err := h.messages.MarkConversationRead(c.Request.Context(), viewerID, otherID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch messages")
			return
		}
		observability.AddMessagesMarkedRead(marked)
	}

	// Counted after the mark-read transition; UI badges depend on the
	// post-transition value.
	unread, err := h.messages.CountUnread(c.Request.Context(), viewerID, otherID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	respondOK(c, http.StatusOK, "Messages fetched successfully", gin.H{
		"messages": msgs,
		"otherUser": gin.H{
			"id":         otherUser.ID,
			"name":       otherUser.Name,
			"email":      otherUser.Email,
			"profileUrl": models.AvatarURL(otherUser.Name),
		},
		"conversation": gin.H{
			"unreadCount":   unread,
			"totalMessages": total,
		},
		"pagination": models.NewPagination(page, limit, total),
	})
}

// DeleteOne soft-deletes a single message. Only the sender may delete.
func (h *MessageHandler) DeleteOne(c *gin.Context) {
	actorID := currentUserID(c)

	messageID, err := strconv.Atoi(c.Query("messageId"))
	if err != nil || messageID <= 0 {
		respondError(c, http.StatusBadRequest, "Message ID is required")
		return
	}

	deleted, err := h.messages.SoftDelete(c.Request.Context(), messageID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMessageNotFound):
			respondError(c, http.StatusNotFound, "Message not found")
		case errors.Is(err, repositories.ErrNotMessageOwner):
			respondError(c, http.StatusForbidden, "You can only delete your own messages")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to delete message")
		}
		return
	}

	h.cleanupImage(deleted)
	h.emitter.Emit(c.Request.Context(), telemetry.EventMessageDeleted, requestIDFromContext(c), &actorID, gin.H{
		"messageId": deleted.ID,
	})

	respondOK(c, http.StatusOK, "Message deleted successfully", gin.H{"messageId": deleted.ID})
}

// DeleteMany soft-deletes a batch of the actor's messages, all-or-nothing.
func (h *MessageHandler) DeleteMany(c *gin.Context) {
	actorID := currentUserID(c)

	var req struct {
		MessageIDs []int `json:"messageIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.MessageIDs) == 0 {
		respondError(c, http.StatusBadRequest, "Message IDs array is required")
		return
	}

	count, err := h.messages.SoftDeleteMany(c.Request.Context(), req.MessageIDs, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartialOwnership) {
			respondError(c, http.StatusForbidden, "Some messages not found or not owned by you")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete messages")
		return
	}

	h.emitter.Emit(c.Request.Context(), telemetry.EventMessageDeleted, requestIDFromContext(c), &actorID, gin.H{
		"messageIds": req.MessageIDs,
	})

	respondOK(c, http.StatusOK, strconv.Itoa(count)+" messages deleted successfully", gin.H{"deletedCount": count})
}

// DeleteConversationSide soft-deletes every message the actor sent to the
// other user.
func (h *MessageHandler) DeleteConversationSide(c *gin.Context) {
	actorID := currentUserID(c)

	otherID, err := strconv.Atoi(c.Param("userId"))
	if err != nil || otherID <= 0 {
		respondError(c, http.StatusBadRequest, "User ID is required")
		return
	}

	otherUser, err := h.users.GetSummary(c.Request.Context(), otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete messages")
		return
	}

	count, err := h.messages.SoftDeleteConversationSide(c.Request.Context(), actorID, otherID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete messages")
		return
	}

	respondOK(c, http.StatusOK, strconv.Itoa(count)+" messages deleted successfully", gin.H{
		"deletedCount": count,
		"otherUser":    otherUser,
	})
}

// cleanupImage requests deletion of an image attachment after its message was
// soft-deleted. The message row is authoritative: a storage failure is logged
// and never rolls back the delete.
func (h *MessageHandler) cleanupImage(msg models.Message) {
	if msg.Type != models.MessageTypeImage || msg.ImagePublicID == nil || *msg.ImagePublicID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), mediaCleanupTimeout)
	defer cancel()

	if err := h.uploader.Destroy(ctx, *msg.ImagePublicID); err != nil {
		observability.IncMediaFailure("destroy")
		log.Printf("media cleanup failed: message=%d public_id=%s err=%v", msg.ID, *msg.ImagePublicID, err)
	}
}
