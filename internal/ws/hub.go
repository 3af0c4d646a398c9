package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hostelx-service/internal/models"
	"hostelx-service/internal/observability"
)

// Room kinds, matching the three live queries the clients hold open.
const (
	KindFeed         = "feed"
	KindInbox        = "inbox"
	KindConversation = "conversation"
)

// Hub maintains the active websocket subscriptions: one global marketplace
// feed, per-user inboxes for request lifecycle events, and per-conversation
// message rooms.
type Hub struct {
	feedConns  map[*websocket.Conn]ConnInfo
	inboxRooms map[int]map[*websocket.Conn]ConnInfo
	convRooms  map[int]map[*websocket.Conn]ConnInfo
	mu         sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		feedConns:  make(map[*websocket.Conn]ConnInfo),
		inboxRooms: make(map[int]map[*websocket.Conn]ConnInfo),
		convRooms:  make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddFeedClient registers a connection on the marketplace feed.
func (h *Hub) AddFeedClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feedConns[conn] = info
}

// RemoveFeedClient removes a feed connection.
func (h *Hub) RemoveFeedClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.feedConns, conn)
}

// AddInboxClient registers a connection on a user's inbox.
func (h *Hub) AddInboxClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inboxRooms[userID]; !ok {
		h.inboxRooms[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.inboxRooms[userID][conn] = info
}

// RemoveInboxClient removes an inbox connection.
func (h *Hub) RemoveInboxClient(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.inboxRooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.inboxRooms, userID)
		}
	}
}

// AddConversationClient registers a connection on a conversation room.
func (h *Hub) AddConversationClient(conversationID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.convRooms[conversationID]; !ok {
		h.convRooms[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.convRooms[conversationID][conn] = info
}

// RemoveConversationClient removes a conversation connection.
func (h *Hub) RemoveConversationClient(conversationID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.convRooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.convRooms, conversationID)
		}
	}
}

// BroadcastPostEvent pushes a marketplace change to every feed subscriber.
func (h *Hub) BroadcastPostEvent(event models.PostEvent) {
	h.broadcast(KindFeed, 0, h.snapshotFeed(), event, func(conn *websocket.Conn) {
		h.RemoveFeedClient(conn)
	})
}

// NotifyInbox pushes a request/conversation lifecycle event to one user.
func (h *Hub) NotifyInbox(userID int, event models.InboxEvent) {
	h.broadcast(KindInbox, userID, h.snapshotRoom(h.inboxRooms, userID), event, func(conn *websocket.Conn) {
		h.RemoveInboxClient(userID, conn)
	})
}

// BroadcastConversationEvent pushes a message or read event to a
// conversation's subscribers.
func (h *Hub) BroadcastConversationEvent(conversationID int, event models.ConversationEvent) {
	h.broadcast(KindConversation, conversationID, h.snapshotRoom(h.convRooms, conversationID), event, func(conn *websocket.Conn) {
		h.RemoveConversationClient(conversationID, conn)
	})
}

func (h *Hub) snapshotFeed() map[*websocket.Conn]ConnInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[*websocket.Conn]ConnInfo, len(h.feedConns))
	for conn, info := range h.feedConns {
		out[conn] = info
	}
	return out
}

func (h *Hub) snapshotRoom(rooms map[int]map[*websocket.Conn]ConnInfo, id int) map[*websocket.Conn]ConnInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[*websocket.Conn]ConnInfo, len(rooms[id]))
	for conn, info := range rooms[id] {
		out[conn] = info
	}
	return out
}

func (h *Hub) broadcast(kind string, resourceID int, conns map[*websocket.Conn]ConnInfo, event any, remove func(*websocket.Conn)) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	for conn, info := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			remove(conn)
			publishSocketEvent(context.Background(), kind, resourceID, info, "ws_error", err.Error())
		}
	}
}

func publishSocketEvent(ctx context.Context, kind string, resourceID int, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events."+kind, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(kind, event)
}
