package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/feed-system/social-api/pkg/cache"
)

const revokedKeyPrefix = "revoked_token:"

// RevocationStore remembers logged-out token ids until they would have
// expired anyway. A nil store never reports a revocation.
type RevocationStore struct {
	redis *cache.RedisClient
	now   func() time.Time
}

func NewRevocationStore(redis *cache.RedisClient) *RevocationStore {
	if redis == nil {
		return nil
	}
	return &RevocationStore{redis: redis, now: time.Now}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if s == nil || tokenID == "" {
		return nil
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.SetWithTTL(ctx, revokedKeyPrefix+tokenID, 1, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s == nil || tokenID == "" {
		return false, nil
	}
	revoked, err := s.redis.Has(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}
