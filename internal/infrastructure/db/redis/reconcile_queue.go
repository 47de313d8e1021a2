package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/makerspace/membership-service/internal/core/ports"
)

const reconcileKey = "reconcile:jobs"

// ReconcileQueue is a FIFO of failed external calls stored as JSON in a
// Redis list.
type ReconcileQueue struct {
	client *redis.Client
	key    string
}

func NewReconcileQueue(client *redis.Client) *ReconcileQueue {
	return &ReconcileQueue{client: client, key: reconcileKey}
}

func (q *ReconcileQueue) Push(ctx context.Context, job ports.ReconcileJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode reconcile job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("push reconcile job: %w", err)
	}
	return nil
}

// Pop returns nil, nil when the queue is empty. A job that cannot be decoded
// is discarded and reported as an error.
func (q *ReconcileQueue) Pop(ctx context.Context) (*ports.ReconcileJob, error) {
	raw, err := q.client.LPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop reconcile job: %w", err)
	}

	var job ports.ReconcileJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode reconcile job: %w", err)
	}
	return &job, nil
}

func (q *ReconcileQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("reconcile queue length: %w", err)
	}
	return n, nil
}
