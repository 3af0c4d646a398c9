// Package lifecycle holds the pure rules of the request state machine:
// which transitions exist, who may perform them, and when a request may be
// created at all. Repositories enforce the same constraints again at the
// storage layer; these checks exist so the rules are testable without one.
package lifecycle

import (
	"time"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

// CanTransition reports whether the status transition is part of the state
// machine. pending may move to accepted or rejected; both are terminal.
func CanTransition(from, to string) bool {
	if from != models.RequestStatusPending {
		return false
	}
	return to == models.RequestStatusAccepted || to == models.RequestStatusRejected
}

// AuthorizeTransition validates a status transition attempted by callerID.
// Only the post owner may moderate, and only while the request is pending.
func AuthorizeTransition(req models.Request, callerID int, to string) error {
	if req.PostOwnerID != callerID {
		return apperrors.ErrNotPostOwner
	}
	if !CanTransition(req.Status, to) {
		return apperrors.ErrRequestSettled
	}
	return nil
}

// ValidateSend checks the preconditions for creating a request on a post:
// the caller must not be the owner and the post must not be expired.
// Duplicate detection is left to the storage layer's uniqueness constraint.
func ValidateSend(post models.Post, callerID int, now time.Time) error {
	if post.OwnerID == callerID {
		return apperrors.ErrOwnPostRequest
	}
	if post.Expired(now) {
		return apperrors.ErrPostExpired
	}
	return nil
}

// NewRequest builds the pending request a send produces, denormalizing the
// post fields the inbox view needs.
func NewRequest(post models.Post, requesterID int) models.Request {
	return models.Request{
		PostID:      post.ID,
		PostOwnerID: post.OwnerID,
		RequesterID: requesterID,
		Type:        post.Type,
		PostTitle:   post.Title,
		Status:      models.RequestStatusPending,
	}
}
