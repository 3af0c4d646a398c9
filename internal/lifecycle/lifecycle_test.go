package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.RequestStatusPending, models.RequestStatusAccepted))
	assert.True(t, CanTransition(models.RequestStatusPending, models.RequestStatusRejected))

	// terminal states admit nothing further
	assert.False(t, CanTransition(models.RequestStatusAccepted, models.RequestStatusRejected))
	assert.False(t, CanTransition(models.RequestStatusRejected, models.RequestStatusAccepted))
	assert.False(t, CanTransition(models.RequestStatusAccepted, models.RequestStatusAccepted))
	assert.False(t, CanTransition(models.RequestStatusPending, models.RequestStatusPending))
}

func TestAuthorizeTransitionOwnerOnly(t *testing.T) {
	req := models.Request{PostOwnerID: 1, RequesterID: 2, Status: models.RequestStatusPending}

	err := AuthorizeTransition(req, 2, models.RequestStatusAccepted)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))

	assert.NoError(t, AuthorizeTransition(req, 1, models.RequestStatusAccepted))
}

func TestAuthorizeTransitionSettledRequest(t *testing.T) {
	req := models.Request{PostOwnerID: 1, RequesterID: 2, Status: models.RequestStatusAccepted}

	err := AuthorizeTransition(req, 1, models.RequestStatusRejected)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
}

func TestValidateSend(t *testing.T) {
	now := time.Now()
	exp := now.Add(-time.Minute)
	post := models.Post{ID: 7, OwnerID: 1, Type: models.PostTypeSell, Title: "Blue Pen"}

	err := ValidateSend(post, 1, now)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))

	expired := post
	expired.ExpiresAt = &exp
	err = ValidateSend(expired, 2, now)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))

	assert.NoError(t, ValidateSend(post, 2, now))
}

func TestNewRequestDenormalizesPost(t *testing.T) {
	post := models.Post{ID: 7, OwnerID: 1, Type: models.PostTypeNeed, Title: "Charger"}

	req := NewRequest(post, 2)
	assert.Equal(t, 7, req.PostID)
	assert.Equal(t, 1, req.PostOwnerID)
	assert.Equal(t, 2, req.RequesterID)
	assert.Equal(t, models.PostTypeNeed, req.Type)
	assert.Equal(t, "Charger", req.PostTitle)
	assert.Equal(t, models.RequestStatusPending, req.Status)
}
