package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

// deliveryTTL keeps seen delivery ids long enough to absorb Shopify's retry
// window without growing unbounded.
const deliveryTTL = 48 * time.Hour

// RedisReplayGuard deduplicates webhook deliveries across instances using
// SETNX with a TTL keyed by delivery id.
type RedisReplayGuard struct {
	client *redis.Client
}

// NewRedisReplayGuard creates a Redis-backed replay guard
func NewRedisReplayGuard(client *redis.Client) ports.ReplayGuard {
	return &RedisReplayGuard{client: client}
}

// FirstDelivery reports whether the delivery id has not been seen before.
// On Redis errors the delivery is treated as first: processing an event
// twice is preferable to dropping it.
func (g *RedisReplayGuard) FirstDelivery(ctx context.Context, deliveryID string) (bool, error) {
	if deliveryID == "" {
		return true, nil
	}
	first, err := g.client.SetNX(ctx, "webhook:delivery:"+deliveryID, 1, deliveryTTL).Result()
	if err != nil {
		return true, fmt.Errorf("replay guard check failed: %w", err)
	}
	return first, nil
}

// NoopReplayGuard treats every delivery as the first. Used when no Redis is
// configured.
type NoopReplayGuard struct{}

// NewNoopReplayGuard creates a guard that never deduplicates
func NewNoopReplayGuard() ports.ReplayGuard {
	return &NoopReplayGuard{}
}

// FirstDelivery always reports true
func (g *NoopReplayGuard) FirstDelivery(ctx context.Context, deliveryID string) (bool, error) {
	return true, nil
}
