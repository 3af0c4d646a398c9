package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostelx-service/internal/feed"
	"hostelx-service/internal/mocks"
	"hostelx-service/internal/models"
	"hostelx-service/internal/ws"
)

func setupConversationRouter(handler *ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/conversations", handler.ListConversations)
	r.GET("/conversations/:conversation_id", handler.GetConversation)
	r.GET("/conversations/:conversation_id/messages", handler.GetMessages)
	r.POST("/conversations/:conversation_id/messages", handler.PostMessage)
	r.POST("/conversations/:conversation_id/read", handler.MarkRead)
	return r
}

func newConversationHandler(convs *mocks.ConversationRepositoryMock, msgs *mocks.MessageRepositoryMock) *ConversationHandler {
	return NewConversationHandler(convs, msgs, ws.NewHub())
}

func TestListConversationsUnreadPerViewer(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convs, new(mocks.MessageRepositoryMock))
	router := setupConversationRouter(handler)

	convs.On("ListForUser", mock.Anything, 1).Return([]models.Conversation{
		{ID: 9, OwnerID: 1, RequesterID: 2, OwnerUnread: 3, RequesterUnread: 7},
		{ID: 10, OwnerID: 2, RequesterID: 1, OwnerUnread: 5, RequesterUnread: 1},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Conversations []struct {
			ID          int `json:"id"`
			OtherUserID int `json:"other_user_id"`
			Unread      int `json:"unread"`
		} `json:"conversations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Conversations, 2)
	assert.Equal(t, 2, resp.Conversations[0].OtherUserID)
	assert.Equal(t, 3, resp.Conversations[0].Unread)
	assert.Equal(t, 1, resp.Conversations[1].Unread)
	convs.AssertExpectations(t)
}

func TestGetConversationNotParticipant(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convs, new(mocks.MessageRepositoryMock))
	router := setupConversationRouter(handler)

	convs.On("GetConversation", mock.Anything, 9).
		Return(models.Conversation{ID: 9, OwnerID: 2, RequesterID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	convs.AssertExpectations(t)
}

func TestGetMessagesInsertsTimeSeparators(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newConversationHandler(convs, msgs)
	router := setupConversationRouter(handler)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	convs.On("GetConversation", mock.Anything, 9).
		Return(models.Conversation{ID: 9, OwnerID: 1, RequesterID: 2}, nil).Once()
	msgs.On("ListMessages", mock.Anything, 9).Return([]models.Message{
		{ID: 1, ConversationID: 9, SenderID: 1, Text: "hi", CreatedAt: base},
		{ID: 2, ConversationID: 9, SenderID: 2, Text: "hey", CreatedAt: base.Add(2 * time.Minute)},
		{ID: 3, ConversationID: 9, SenderID: 1, Text: "still there?", CreatedAt: base.Add(45 * time.Minute)},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/9/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []struct {
			Kind string `json:"kind"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Items, 5)
	assert.Equal(t, feed.KindTime, resp.Items[0].Kind)
	assert.Equal(t, feed.KindMessage, resp.Items[1].Kind)
	assert.Equal(t, feed.KindTime, resp.Items[3].Kind)
	convs.AssertExpectations(t)
	msgs.AssertExpectations(t)
}

func TestPostMessageSuccess(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newConversationHandler(convs, msgs)
	router := setupConversationRouter(handler)

	conv := models.Conversation{ID: 9, OwnerID: 1, RequesterID: 2}
	convs.On("GetConversation", mock.Anything, 9).Return(conv, nil).Once()
	msgs.On("AppendMessage", mock.Anything, conv, 1, "hello").
		Return(models.Message{ID: 4, ConversationID: 9, SenderID: 1, Text: "hello"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/9/messages", bytes.NewBufferString(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	convs.AssertExpectations(t)
	msgs.AssertExpectations(t)
}

func TestPostMessageBlankText(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newConversationHandler(convs, msgs)
	router := setupConversationRouter(handler)

	convs.On("GetConversation", mock.Anything, 9).
		Return(models.Conversation{ID: 9, OwnerID: 1, RequesterID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/9/messages", bytes.NewBufferString(`{"text":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	msgs.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkReadSuccess(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convs, new(mocks.MessageRepositoryMock))
	router := setupConversationRouter(handler)

	convs.On("GetConversation", mock.Anything, 9).
		Return(models.Conversation{ID: 9, OwnerID: 1, RequesterID: 2}, nil).Once()
	convs.On("MarkRead", mock.Anything, 9, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/9/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	convs.AssertExpectations(t)
}

// dialInbox attaches a live websocket client to userID's inbox room and
// returns the client end once the hub registration has happened.
func dialInbox(t *testing.T, hub *ws.Hub, userID int) *websocket.Conn {
	t.Helper()

	registered := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.AddInboxClient(userID, conn, ws.ConnInfo{UserID: userID})
		close(registered)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	<-registered
	return client
}

func readInboxEvent(t *testing.T, client *websocket.Conn) models.InboxEvent {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.InboxEvent
	require.NoError(t, client.ReadJSON(&event))
	return event
}

func TestPostMessageNotifiesRecipientInbox(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	hub := ws.NewHub()
	handler := NewConversationHandler(convs, msgs, hub)
	router := setupConversationRouter(handler)

	// user 2 is only watching their inbox, not the conversation room
	client := dialInbox(t, hub, 2)

	conv := models.Conversation{ID: 9, OwnerID: 1, RequesterID: 2}
	convs.On("GetConversation", mock.Anything, 9).Return(conv, nil).Once()
	msgs.On("AppendMessage", mock.Anything, conv, 1, "hello").
		Return(models.Message{ID: 4, ConversationID: 9, SenderID: 1, Text: "hello"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/9/messages", bytes.NewBufferString(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	event := readInboxEvent(t, client)
	assert.Equal(t, "message_received", event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hello", event.Message.Text)
	require.NotNil(t, event.Conversation)
	assert.Equal(t, 9, event.Conversation.ID)
}

func TestMarkReadNotifiesOtherParticipantInbox(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	hub := ws.NewHub()
	handler := NewConversationHandler(convs, new(mocks.MessageRepositoryMock), hub)
	router := setupConversationRouter(handler)

	client := dialInbox(t, hub, 2)

	convs.On("GetConversation", mock.Anything, 9).
		Return(models.Conversation{ID: 9, OwnerID: 1, RequesterID: 2}, nil).Once()
	convs.On("MarkRead", mock.Anything, 9, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/9/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	event := readInboxEvent(t, client)
	assert.Equal(t, "conversation_read", event.Type)
	require.NotNil(t, event.Conversation)
	assert.Equal(t, 9, event.Conversation.ID)
}

func TestMarkReadNotParticipant(t *testing.T) {
	convs := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convs, new(mocks.MessageRepositoryMock))
	router := setupConversationRouter(handler)

	convs.On("GetConversation", mock.Anything, 9).
		Return(models.Conversation{ID: 9, OwnerID: 2, RequesterID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/9/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	convs.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}
