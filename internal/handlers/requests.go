package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/lifecycle"
	"hostelx-service/internal/models"
	"hostelx-service/internal/observability"
	"hostelx-service/internal/repositories"
	"hostelx-service/internal/telemetry"
	"hostelx-service/internal/ws"
)

// RequestHandler manages the request lifecycle endpoints.
type RequestHandler struct {
	requests repositories.RequestRepository
	posts    repositories.PostRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
	now      func() time.Time
}

// NewRequestHandler builds a RequestHandler.
func NewRequestHandler(requests repositories.RequestRepository, posts repositories.PostRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *RequestHandler {
	return &RequestHandler{
		requests: requests,
		posts:    posts,
		hub:      hub,
		audit:    audit,
		now:      time.Now,
	}
}

// SendRequest files a pending request against a post.
func (h *RequestHandler) SendRequest(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid post id"))
		return
	}

	userID := c.GetInt("userID")
	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := lifecycle.ValidateSend(post, userID, h.now()); err != nil {
		writeError(c, err)
		return
	}

	created, err := h.requests.CreateRequest(c.Request.Context(), lifecycle.NewRequest(post, userID))
	if err != nil {
		writeError(c, err)
		return
	}

	observability.IncRequestTransition(models.RequestStatusPending)
	h.hub.NotifyInbox(post.OwnerID, models.InboxEvent{Type: "request_received", Request: &created})
	h.audit.Emit(c.Request.Context(), "info", "request sent", requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusCreated, created)
}

// IncomingRequests lists requests on the caller's posts.
func (h *RequestHandler) IncomingRequests(c *gin.Context) {
	reqs, err := h.requests.ListIncoming(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// OutgoingRequests lists requests the caller has sent.
func (h *RequestHandler) OutgoingRequests(c *gin.Context) {
	reqs, err := h.requests.ListOutgoing(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// AcceptRequest settles a pending request as accepted and opens its
// conversation. Both inbox parties learn about the new conversation.
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid request id"))
		return
	}

	userID := c.GetInt("userID")
	req, err := h.requests.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := lifecycle.AuthorizeTransition(req, userID, models.RequestStatusAccepted); err != nil {
		writeError(c, err)
		return
	}

	accepted, conv, err := h.requests.AcceptAndOpenConversation(c.Request.Context(), requestID)
	if err != nil {
		writeError(c, err)
		return
	}

	observability.IncRequestTransition(models.RequestStatusAccepted)
	event := models.InboxEvent{Type: "request_accepted", Request: &accepted, Conversation: &conv}
	h.hub.NotifyInbox(accepted.RequesterID, event)
	h.hub.NotifyInbox(accepted.PostOwnerID, event)
	h.audit.Emit(c.Request.Context(), "info", "request accepted", requestIDFromContext(c), auditUserID(c))

	c.JSON(http.StatusOK, gin.H{"request": accepted, "conversation": conv})
}

// RejectRequest settles a pending request as rejected.
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid request id"))
		return
	}

	userID := c.GetInt("userID")
	req, err := h.requests.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := lifecycle.AuthorizeTransition(req, userID, models.RequestStatusRejected); err != nil {
		writeError(c, err)
		return
	}

	rejected, err := h.requests.Reject(c.Request.Context(), requestID)
	if err != nil {
		writeError(c, err)
		return
	}

	observability.IncRequestTransition(models.RequestStatusRejected)
	h.hub.NotifyInbox(rejected.RequesterID, models.InboxEvent{Type: "request_rejected", Request: &rejected})
	h.audit.Emit(c.Request.Context(), "info", "request rejected", requestIDFromContext(c), auditUserID(c))

	c.JSON(http.StatusOK, gin.H{"request": rejected})
}
