package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	redisclient "github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/redis"
)

const revokedTokenPrefix = "auth:revoked:"

// RevocationStore keeps revoked token IDs in Redis until the token would have expired anyway.
type RevocationStore struct {
	client *redisclient.Client
}

var _ providers.RevocationStore = (*RevocationStore)(nil)

func NewRevocationStore(client *redisclient.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Client().Set(ctx, revokedTokenPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revoked token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Client().Get(ctx, revokedTokenPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
}
