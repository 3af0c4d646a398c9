package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	GetConversation(ctx context.Context, conversationID int) (models.Conversation, error)
	ListForUser(ctx context.Context, userID int) ([]models.Conversation, error)
	MarkRead(ctx context.Context, conversationID int, userID int) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, request_id, post_id, owner_id, requester_id, status, last_message, last_message_at, owner_unread, requester_unread, created_at`

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, apperrors.ErrConversationNotFound
	}
	return conv, err
}

// ListForUser returns the user's conversations, most recently active first.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT `+conversationColumns+` FROM conversations
        WHERE owner_id=$1 OR requester_id=$1
        ORDER BY COALESCE(last_message_at, created_at) DESC`, userID)
	return convs, err
}

// MarkRead zeroes the calling participant's own unread counter. Idempotent.
func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE conversations SET
        owner_unread = CASE WHEN owner_id=$2 THEN 0 ELSE owner_unread END,
        requester_unread = CASE WHEN requester_id=$2 THEN 0 ELSE requester_unread END
        WHERE id=$1 AND (owner_id=$2 OR requester_id=$2)`, conversationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}
