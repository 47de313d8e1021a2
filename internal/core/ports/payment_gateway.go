package ports

import (
	"context"
	"time"
)

// ProviderSubscription is the subset of the provider's subscription record
// the synchronizer reads before pausing.
type ProviderSubscription struct {
	ID                 string
	Status             string
	CustomerID         string
	ChargedThroughDate string // YYYY-MM-DD, empty when unknown
}

// PauseRequest describes a subscription pause window.
type PauseRequest struct {
	SubscriptionID      string
	PauseEffectiveDate  string // YYYY-MM-DD
	ResumeEffectiveDate string // YYYY-MM-DD
	Reason              string
}

// CustomerInput creates a provider customer for a member.
type CustomerInput struct {
	ReferenceID string // local userID
	GivenName   string
	Email       string
}

// PaymentLinkInput creates a hosted checkout page.
type PaymentLinkInput struct {
	Name               string
	AmountCents        int64
	Currency           string
	Note               string
	CustomerID         string
	SubscriptionPlanID string // set for recurring checkouts
	RedirectURL        string
}

// PaymentLink is a hosted checkout page.
type PaymentLink struct {
	ID        string
	URL       string
	OrderID   string
	CreatedAt time.Time
}

// PaymentGateway is the payment provider API consumed by the service.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (string, error)
	CreatePaymentLink(ctx context.Context, in PaymentLinkInput) (*PaymentLink, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
	PauseSubscription(ctx context.Context, req PauseRequest) error
}
