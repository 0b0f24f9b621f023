package cache

import (
	"context"
	"time"

	"shopmirror/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const deliveryKeyPrefix = "shopmirror:webhook:delivery:"

// DeliveryCache remembers webhook delivery IDs already applied, so the
// at-least-once sender's redeliveries are acknowledged without reprocessing.
// Best effort only: a Redis failure means the event is processed again,
// which is safe because mirror upserts are idempotent.
type DeliveryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewDeliveryCache creates a delivery cache. Entries expire after ttl.
func NewDeliveryCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *DeliveryCache {
	return &DeliveryCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Seen reports whether the delivery ID was already applied. It never
// records anything: a delivery is only remembered via MarkApplied, so a
// failed delivery's retry is processed rather than deduped away.
func (c *DeliveryCache) Seen(ctx context.Context, deliveryID string) bool {
	n, err := c.client.Exists(ctx, deliveryKeyPrefix+deliveryID).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("deliveryId", deliveryID).Msg("Delivery dedupe unavailable, processing event")
		return false
	}
	return n > 0
}

// MarkApplied records a successfully processed delivery ID.
func (c *DeliveryCache) MarkApplied(ctx context.Context, deliveryID string) {
	if err := c.client.Set(ctx, deliveryKeyPrefix+deliveryID, 1, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("deliveryId", deliveryID).Msg("Failed to record delivery ID")
	}
}

var _ ports.DeliveryDeduper = (*DeliveryCache)(nil)
