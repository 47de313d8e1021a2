package ports

import (
	"context"
	"time"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// PaymentInput is the DTO passed from the webhook handler for payment.updated.
type PaymentInput struct {
	EventID        string
	PaymentID      string
	Status         string
	Note           string
	SubscriptionID string // empty for one-off payments
	CustomerID     string
	AmountCents    int64
}

// SubscriptionInput is the DTO passed for subscription.updated.
type SubscriptionInput struct {
	EventID        string
	SubscriptionID string
	Status         string
	CustomerID     string
}

// SyncOutcome describes what the synchronizer did with an event.
type SyncOutcome string

const (
	OutcomeIgnored   SyncOutcome = "ignored"
	OutcomeUnmatched SyncOutcome = "unmatched"
	OutcomeGranted   SyncOutcome = "granted"
	OutcomeRenewed   SyncOutcome = "renewed"
	OutcomeSuspended SyncOutcome = "suspended"
)

// SyncResult reports the effect of one webhook event.
type SyncResult struct {
	Outcome     SyncOutcome
	Kind        domain.PaymentKind
	UserID      string
	PauseFailed bool
}

// MembershipService reconciles payment provider events into member state.
type MembershipService interface {
	HandlePayment(ctx context.Context, in PaymentInput) (*SyncResult, error)
	HandleSubscription(ctx context.Context, in SubscriptionInput) (*SyncResult, error)
}

// WebhookDeduper guards against at-least-once redelivery of the same event id.
type WebhookDeduper interface {
	// Acquire returns false when eventID was already processed or is in flight.
	Acquire(ctx context.Context, eventID string) (bool, error)
	// Release forgets eventID so a provider retry is processed again.
	Release(ctx context.Context, eventID string) error
}

// WebhookRecord is the audit trail entry for a received webhook.
type WebhookRecord struct {
	EventID    string
	Type       string
	ObjectID   string
	Outcome    SyncOutcome
	Kind       string
	UserID     string
	Error      string
	ReceivedAt time.Time
}

// WebhookEventRepository persists the webhook audit trail.
type WebhookEventRepository interface {
	Insert(ctx context.Context, rec *WebhookRecord) error
}

// MembershipEvent is published after a member's state changed.
type MembershipEvent struct {
	UserID             string    `json:"user_id"`
	Outcome            string    `json:"outcome"`
	Kind               string    `json:"kind,omitempty"`
	Status             string    `json:"status"`
	SubscriptionStatus string    `json:"subscription_status,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// EventPublisher broadcasts membership changes to downstream consumers.
type EventPublisher interface {
	PublishMembershipEvent(ctx context.Context, evt MembershipEvent) error
}
