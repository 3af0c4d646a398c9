// Package otp stores short-lived email verification codes. Codes are
// generated and checked server-side only; they leave the service exclusively
// inside the verification email.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"hostelx-service/internal/apperrors"
)

// Store keeps one pending code per email address.
type Store interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) error
}

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func key(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

// RedisStore keeps codes in Redis with native TTL expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores the code, replacing any previous one for the address.
func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, key(email), code, ttl).Err()
}

// Verify checks the code and consumes it on success.
func (s *RedisStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, key(email)).Result()
	if err == redis.Nil {
		return apperrors.ErrOTPMismatch
	}
	if err != nil {
		return err
	}
	if stored != code {
		return apperrors.ErrOTPMismatch
	}
	return s.client.Del(ctx, key(email)).Err()
}

// MemoryStore is the fallback when Redis is not configured. Expired entries
// are dropped on read and by the periodic Sweep job.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Put stores the code, replacing any previous one for the address.
func (s *MemoryStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(email)] = memoryEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Verify checks the code and consumes it on success.
func (s *MemoryStore) Verify(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(email)
	entry, ok := s.entries[k]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, k)
		return apperrors.ErrOTPMismatch
	}
	if entry.code != code {
		return apperrors.ErrOTPMismatch
	}
	delete(s.entries, k)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for k, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
