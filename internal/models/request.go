package models

import "time"

// Request statuses. A request is created pending and moves to exactly one of
// accepted or rejected; both are terminal.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// Request is a viewer's expression of interest in a post, moderated by the
// post owner.
type Request struct {
	ID          int       `db:"id" json:"id"`
	PostID      int       `db:"post_id" json:"post_id"`
	PostOwnerID int       `db:"post_owner_id" json:"post_owner_id"`
	RequesterID int       `db:"requester_id" json:"requester_id"`
	Type        string    `db:"type" json:"type"`
	PostTitle   string    `db:"post_title" json:"post_title"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// InboxEvent is pushed to a user's inbox websocket when a request touching
// them changes, when an acceptance opens a conversation for them, or when a
// conversation they participate in gains a message or a read receipt.
type InboxEvent struct {
	Type         string        `json:"type"`
	Request      *Request      `json:"request,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
	Message      *Message      `json:"message,omitempty"`
}
