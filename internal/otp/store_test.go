package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelx-service/internal/apperrors"
)

func TestGenerateCodeIsSixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
	}
}

func TestMemoryStoreVerifyConsumesCode(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@college.edu", "123456", time.Minute))
	require.NoError(t, s.Verify(ctx, "a@college.edu", "123456"))

	// second use must fail
	err := s.Verify(ctx, "a@college.edu", "123456")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestMemoryStoreWrongCode(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@college.edu", "123456", time.Minute))
	err := s.Verify(ctx, "a@college.edu", "654321")
	require.Error(t, err)

	// a wrong guess does not consume the stored code
	assert.NoError(t, s.Verify(ctx, "a@college.edu", "123456"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@college.edu", "123456", -time.Second))
	err := s.Verify(ctx, "a@college.edu", "123456")
	assert.Error(t, err)
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "stale@college.edu", "111111", -time.Second))
	require.NoError(t, s.Put(ctx, "fresh@college.edu", "222222", time.Minute))

	assert.Equal(t, 1, s.Sweep())
	assert.NoError(t, s.Verify(ctx, "fresh@college.edu", "222222"))
}

func TestMemoryStoreCaseInsensitiveEmailKey(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "A@College.EDU", "123456", time.Minute))
	assert.NoError(t, s.Verify(ctx, "a@college.edu ", "123456"))
}
