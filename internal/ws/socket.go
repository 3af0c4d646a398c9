package ws

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"hostelx-service/internal/observability"
	"hostelx-service/internal/repositories"
)

// TokenValidator validates a bearer token and returns the user id.
type TokenValidator interface {
	Validate(token string) (int, error)
}

// SocketHandler upgrades and supervises the three live-query endpoints.
type SocketHandler struct {
	hub      *Hub
	convRepo repositories.ConversationRepository
	tokens   TokenValidator
}

// NewSocketHandler constructs a SocketHandler.
func NewSocketHandler(hub *Hub, convRepo repositories.ConversationRepository, tokens TokenValidator) *SocketHandler {
	return &SocketHandler{hub: hub, convRepo: convRepo, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleFeed subscribes the client to the global marketplace feed.
func (h *SocketHandler) HandleFeed(c *gin.Context) {
	ctx, userID, ok := h.handshake(c)
	if !ok {
		return
	}

	conn, info, ok := h.upgrade(c, userID)
	if !ok {
		return
	}
	h.hub.AddFeedClient(conn, info)
	go h.supervise(ctx, KindFeed, 0, conn, info, func() {
		h.hub.RemoveFeedClient(conn)
	})
}

// HandleInbox subscribes the client to its own request/conversation events.
func (h *SocketHandler) HandleInbox(c *gin.Context) {
	ctx, userID, ok := h.handshake(c)
	if !ok {
		return
	}

	conn, info, ok := h.upgrade(c, userID)
	if !ok {
		return
	}
	h.hub.AddInboxClient(userID, conn, info)
	go h.supervise(ctx, KindInbox, userID, conn, info, func() {
		h.hub.RemoveInboxClient(userID, conn)
	})
}

// HandleConversation subscribes a participant to one conversation's events.
func (h *SocketHandler) HandleConversation(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, userID, ok := h.handshake(c)
	if !ok {
		return
	}

	conv, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil || !conv.IsParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, info, ok := h.upgrade(c, userID)
	if !ok {
		return
	}
	h.hub.AddConversationClient(conversationID, conn, info)
	go h.supervise(ctx, KindConversation, conversationID, conn, info, func() {
		h.hub.RemoveConversationClient(conversationID, conn)
	})
}

// handshake traces the upgrade and authenticates via the Authorization
// header or a token query parameter.
func (h *SocketHandler) handshake(c *gin.Context) (context.Context, int, bool) {
	ctx, span := otel.Tracer("hostelx-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query("token")
	}

	userID, err := h.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return ctx, 0, false
	}
	return ctx, userID, true
}

func (h *SocketHandler) upgrade(c *gin.Context, userID int) (*websocket.Conn, ConnInfo, bool) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return nil, ConnInfo{}, false
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     trace.SpanContextFromContext(c.Request.Context()).TraceID().String(),
		ConnectedAt: time.Now(),
	}
	return conn, info, true
}

// supervise keeps the connection alive, emits connect/disconnect/error
// events, and tears the subscription down on close.
func (h *SocketHandler) supervise(ctx context.Context, kind string, resourceID int, conn *websocket.Conn, info ConnInfo, remove func()) {
	observability.IncWSActive(kind)
	publishSocketEvent(ctx, kind, resourceID, info, "ws_connect", "")

	var closeReason string
	defer func() {
		remove()
		conn.Close()
		observability.DecWSActive(kind)
		publishSocketEvent(ctx, kind, resourceID, info, "ws_disconnect", closeReason)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishSocketEvent(ctx, kind, resourceID, info, "ws_error", closeReason)
			}
			return
		}
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
