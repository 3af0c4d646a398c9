package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

// RequestRepository abstracts request persistence and the accept transition's
// conversation side effect.
type RequestRepository interface {
	CreateRequest(ctx context.Context, req models.Request) (models.Request, error)
	GetRequest(ctx context.Context, requestID int) (models.Request, error)
	ListIncoming(ctx context.Context, ownerID int) ([]models.Request, error)
	ListOutgoing(ctx context.Context, requesterID int) ([]models.Request, error)
	AcceptAndOpenConversation(ctx context.Context, requestID int) (models.Request, models.Conversation, error)
	Reject(ctx context.Context, requestID int) (models.Request, error)
}

// RequestRepo is a sqlx implementation of RequestRepository.
type RequestRepo struct {
	db *sqlx.DB
}

// NewRequestRepo constructs a RequestRepo.
func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `id, post_id, post_owner_id, requester_id, type, post_title, status, created_at`

// CreateRequest inserts a pending request. The (post_id, requester_id)
// uniqueness constraint rejects duplicates from the same requester.
func (r *RequestRepo) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	var created models.Request
	err := r.db.QueryRowxContext(ctx, `INSERT INTO requests (post_id, post_owner_id, requester_id, type, post_title, status)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+requestColumns,
		req.PostID, req.PostOwnerID, req.RequesterID, req.Type, req.PostTitle, models.RequestStatusPending).
		StructScan(&created)
	if isUniqueViolation(err, "requests_post_id_requester_id_key") {
		return models.Request{}, apperrors.ErrDuplicateRequest
	}
	return created, err
}

// GetRequest fetches a request by id.
func (r *RequestRepo) GetRequest(ctx context.Context, requestID int) (models.Request, error) {
	var req models.Request
	err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM requests WHERE id=$1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, apperrors.ErrRequestNotFound
	}
	return req, err
}

// ListIncoming returns requests on the user's posts, newest first.
func (r *RequestRepo) ListIncoming(ctx context.Context, ownerID int) ([]models.Request, error) {
	var reqs []models.Request
	err := r.db.SelectContext(ctx, &reqs, `SELECT `+requestColumns+` FROM requests WHERE post_owner_id=$1 ORDER BY created_at DESC`, ownerID)
	return reqs, err
}

// ListOutgoing returns requests the user has sent, newest first.
func (r *RequestRepo) ListOutgoing(ctx context.Context, requesterID int) ([]models.Request, error) {
	var reqs []models.Request
	err := r.db.SelectContext(ctx, &reqs, `SELECT `+requestColumns+` FROM requests WHERE requester_id=$1 ORDER BY created_at DESC`, requesterID)
	return reqs, err
}

// AcceptAndOpenConversation flips a pending request to accepted and creates
// its conversation in one transaction, so a partial accept is never
// observable. The status guard makes concurrent settles lose cleanly.
func (r *RequestRepo) AcceptAndOpenConversation(ctx context.Context, requestID int) (models.Request, models.Conversation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Request{}, models.Conversation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var req models.Request
	err = tx.QueryRowxContext(ctx, `UPDATE requests SET status=$1 WHERE id=$2 AND status=$3 RETURNING `+requestColumns,
		models.RequestStatusAccepted, requestID, models.RequestStatusPending).
		StructScan(&req)
	if errors.Is(err, sql.ErrNoRows) {
		err = apperrors.ErrRequestSettled
		return models.Request{}, models.Conversation{}, err
	}
	if err != nil {
		return models.Request{}, models.Conversation{}, err
	}

	var conv models.Conversation
	err = tx.QueryRowxContext(ctx, `INSERT INTO conversations (request_id, post_id, owner_id, requester_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, request_id, post_id, owner_id, requester_id, status, last_message, last_message_at, owner_unread, requester_unread, created_at`,
		req.ID, req.PostID, req.PostOwnerID, req.RequesterID).
		StructScan(&conv)
	if err != nil {
		return models.Request{}, models.Conversation{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Request{}, models.Conversation{}, err
	}
	return req, conv, nil
}

// Reject flips a pending request to rejected.
func (r *RequestRepo) Reject(ctx context.Context, requestID int) (models.Request, error) {
	var req models.Request
	err := r.db.QueryRowxContext(ctx, `UPDATE requests SET status=$1 WHERE id=$2 AND status=$3 RETURNING `+requestColumns,
		models.RequestStatusRejected, requestID, models.RequestStatusPending).
		StructScan(&req)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, apperrors.ErrRequestSettled
	}
	return req, err
}
