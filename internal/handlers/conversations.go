package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/feed"
	"hostelx-service/internal/models"
	"hostelx-service/internal/observability"
	"hostelx-service/internal/repositories"
	"hostelx-service/internal/ws"
)

// ConversationHandler manages conversation and message endpoints.
type ConversationHandler struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	hub           *ws.Hub
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversations repositories.ConversationRepository, messages repositories.MessageRepository, hub *ws.Hub) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		hub:           hub,
	}
}

// requireParticipant loads a conversation and rejects non-participants.
func (h *ConversationHandler) requireParticipant(c *gin.Context) (models.Conversation, int, bool) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid conversation id"))
		return models.Conversation{}, 0, false
	}

	conv, err := h.conversations.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		writeError(c, err)
		return models.Conversation{}, 0, false
	}

	userID := c.GetInt("userID")
	if !conv.IsParticipant(userID) {
		writeError(c, apperrors.ErrNotParticipant)
		return models.Conversation{}, 0, false
	}
	return conv, userID, true
}

// ListConversations returns the caller's conversations with their own unread
// count attached, most recently active first.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")
	convs, err := h.conversations.ListForUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, models.ConversationSummary{
			Conversation: conv,
			OtherUserID:  conv.OtherParticipant(userID),
			Unread:       conv.UnreadFor(userID),
		})
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// GetConversation returns one conversation for a participant.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conv, userID, ok := h.requireParticipant(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.ConversationSummary{
		Conversation: conv,
		OtherUserID:  conv.OtherParticipant(userID),
		Unread:       conv.UnreadFor(userID),
	})
}

// GetMessages returns a conversation's messages grouped into the
// separator-delimited items the chat view renders.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	conv, _, ok := h.requireParticipant(c)
	if !ok {
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": feed.Compose(msgs, feed.DefaultGap)})
}

// PostMessage appends a message and broadcasts it to the conversation room
// and the recipient's inbox.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	conv, userID, ok := h.requireParticipant(c)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(c, apperrors.Validation("message text cannot be blank"))
		return
	}

	msg, err := h.messages.AppendMessage(c.Request.Context(), conv, userID, text)
	if err != nil {
		writeError(c, err)
		return
	}

	observability.IncMessageSent()
	h.hub.BroadcastConversationEvent(conv.ID, models.ConversationEvent{Type: "message", Message: &msg})
	h.hub.NotifyInbox(conv.OtherParticipant(userID), models.InboxEvent{Type: "message_received", Conversation: &conv, Message: &msg})
	c.JSON(http.StatusCreated, msg)
}

// MarkRead zeroes the caller's unread counter and tells the room and the
// other participant's inbox the messages were seen.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	conv, userID, ok := h.requireParticipant(c)
	if !ok {
		return
	}

	if err := h.conversations.MarkRead(c.Request.Context(), conv.ID, userID); err != nil {
		writeError(c, err)
		return
	}

	h.hub.BroadcastConversationEvent(conv.ID, models.ConversationEvent{Type: "read", ReaderID: userID})
	h.hub.NotifyInbox(conv.OtherParticipant(userID), models.InboxEvent{Type: "conversation_read", Conversation: &conv})
	c.Status(http.StatusNoContent)
}
