package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const superadminClaimKey = "claim:superadmin"

// ClaimGuard implements the one-time superadmin claim lock with SetNX.
// It is a fast-path filter only; the durable record lives in Mongo.
type ClaimGuard struct {
	client *redis.Client
}

// NewClaimGuard creates a ClaimGuard wrapping the given Redis client.
func NewClaimGuard(client *redis.Client) *ClaimGuard {
	return &ClaimGuard{client: client}
}

// Acquire attempts to take the claim lock. It returns true for the first
// caller and false for everyone after. The key never expires.
func (g *ClaimGuard) Acquire(ctx context.Context) (bool, error) {
	ok, err := g.client.SetNX(ctx, superadminClaimKey, "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("claim acquire: %w", err)
	}
	return ok, nil
}

// Release gives the lock back after a failed durable claim, so a later
// attempt can acquire it again.
func (g *ClaimGuard) Release(ctx context.Context) error {
	if err := g.client.Del(ctx, superadminClaimKey).Err(); err != nil {
		return fmt.Errorf("claim release: %w", err)
	}
	return nil
}
