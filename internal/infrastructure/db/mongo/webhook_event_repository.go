package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/makerspace/membership-service/internal/core/ports"
)

const collectionWebhookEvents = "webhook_events"

// WebhookEventRepository persists the webhook audit trail.
type WebhookEventRepository struct {
	col *mongo.Collection
}

func NewWebhookEventRepository(db *mongo.Database) *WebhookEventRepository {
	return &WebhookEventRepository{col: db.Collection(collectionWebhookEvents)}
}

// Insert stores one processed webhook.
func (r *WebhookEventRepository) Insert(ctx context.Context, rec *ports.WebhookRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"event_id":    rec.EventID,
		"type":        rec.Type,
		"object_id":   rec.ObjectID,
		"outcome":     string(rec.Outcome),
		"received_at": rec.ReceivedAt.UTC(),
	}
	if rec.Kind != "" {
		doc["kind"] = rec.Kind
	}
	if rec.UserID != "" {
		doc["user_id"] = rec.UserID
	}
	if rec.Error != "" {
		doc["error"] = rec.Error
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
