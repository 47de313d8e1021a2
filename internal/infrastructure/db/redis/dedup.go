package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Square retries a failed delivery for up to 72 hours.
const defaultDedupTTL = 72 * time.Hour

// WebhookDeduper claims webhook event ids so a redelivered event is applied
// once. Key format: webhook:dedup:<event_id>
type WebhookDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWebhookDeduper wraps client. A non-positive ttl uses defaultDedupTTL.
func NewWebhookDeduper(client *redis.Client, ttl time.Duration) *WebhookDeduper {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &WebhookDeduper{client: client, ttl: ttl}
}

// Acquire atomically claims eventID. It returns false when another delivery
// already holds the claim.
func (d *WebhookDeduper) Acquire(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupKey(eventID), time.Now().UTC().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup acquire: %w", err)
	}
	return ok, nil
}

// Release drops the claim so the provider's retry is processed again.
func (d *WebhookDeduper) Release(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, dedupKey(eventID)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func dedupKey(eventID string) string {
	return "webhook:dedup:" + eventID
}
