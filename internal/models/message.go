package models

import "time"

// Message is an append-only chat message inside a conversation.
type Message struct {
	ID             int       `db:"id" json:"id"`
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	SenderID       int       `db:"sender_id" json:"sender_id"`
	Text           string    `db:"text" json:"text"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ConversationEvent is broadcast through conversation websockets.
type ConversationEvent struct {
	Type     string   `json:"type"`
	Message  *Message `json:"message,omitempty"`
	ReaderID int      `json:"reader_id,omitempty"`
}
