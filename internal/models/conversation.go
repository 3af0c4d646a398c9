package models

import "time"

// Conversation is a two-party chat thread opened when a request is accepted.
// Exactly one conversation exists per accepted request.
type Conversation struct {
	ID              int        `db:"id" json:"id"`
	RequestID       int        `db:"request_id" json:"request_id"`
	PostID          int        `db:"post_id" json:"post_id"`
	OwnerID         int        `db:"owner_id" json:"owner_id"`
	RequesterID     int        `db:"requester_id" json:"requester_id"`
	Status          string     `db:"status" json:"status"`
	LastMessage     *string    `db:"last_message" json:"last_message,omitempty"`
	LastMessageAt   *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	OwnerUnread     int        `db:"owner_unread" json:"-"`
	RequesterUnread int        `db:"requester_unread" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// IsParticipant reports whether the user is one of the two parties.
func (c Conversation) IsParticipant(userID int) bool {
	return c.OwnerID == userID || c.RequesterID == userID
}

// OtherParticipant returns the counterpart of the given participant.
func (c Conversation) OtherParticipant(userID int) int {
	if c.OwnerID == userID {
		return c.RequesterID
	}
	return c.OwnerID
}

// UnreadFor returns the unread counter belonging to the given participant.
func (c Conversation) UnreadFor(userID int) int {
	if c.OwnerID == userID {
		return c.OwnerUnread
	}
	return c.RequesterUnread
}

// ConversationSummary is the API view of a conversation for one participant.
type ConversationSummary struct {
	Conversation
	OtherUserID int `json:"other_user_id"`
	Unread      int `json:"unread"`
}
