package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"hostelx-service/internal/models"
)

// MessageRepository abstracts message persistence together with the unread
// bookkeeping a send entails.
type MessageRepository interface {
	AppendMessage(ctx context.Context, conv models.Conversation, senderID int, text string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID int) ([]models.Message, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage stores a message and updates the conversation preview and
// unread counters in one transaction. The recipient's counter is incremented
// in SQL rather than read-modify-written, so concurrent sends cannot lose
// increments.
func (r *MessageRepo) AppendMessage(ctx context.Context, conv models.Conversation, senderID int, text string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var msg models.Message
	err = tx.QueryRowxContext(ctx, `INSERT INTO messages (conversation_id, sender_id, text) VALUES ($1, $2, $3)
        RETURNING id, conversation_id, sender_id, text, created_at`,
		conv.ID, senderID, text).
		StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE conversations SET
        last_message=$2,
        last_message_at=$3,
        owner_unread = CASE WHEN owner_id=$4 THEN 0 ELSE owner_unread + 1 END,
        requester_unread = CASE WHEN requester_id=$4 THEN 0 ELSE requester_unread + 1 END
        WHERE id=$1`, conv.ID, text, msg.CreatedAt, senderID)
	if err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns a conversation's messages, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, conversation_id, sender_id, text, created_at
        FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC`, conversationID)
	return msgs, err
}
