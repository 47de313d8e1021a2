package handler

import "github.com/makerspace/membership-service/internal/core/ports"

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// ── Square webhook ────────────────────────────────────────────────────────────

type webhookRequest struct {
	MerchantID string      `json:"merchant_id"`
	Type       string      `json:"type"`
	EventID    string      `json:"event_id"`
	CreatedAt  string      `json:"created_at"`
	Data       webhookData `json:"data"`
}

type webhookData struct {
	Type   string        `json:"type"`
	ID     string        `json:"id"`
	Object webhookObject `json:"object"`
}

type webhookObject struct {
	Payment      *squarePayment      `json:"payment,omitempty"`
	Subscription *squareSubscription `json:"subscription,omitempty"`
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squarePayment struct {
	ID             string       `json:"id"`
	Status         string       `json:"status"`
	Note           string       `json:"note"`
	CustomerID     string       `json:"customer_id"`
	OrderID        string       `json:"order_id"`
	SubscriptionID string       `json:"subscription_id"`
	AmountMoney    *squareMoney `json:"amount_money,omitempty"`
}

type squareSubscription struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CustomerID         string `json:"customer_id"`
	PlanVariationID    string `json:"plan_variation_id"`
	ChargedThroughDate string `json:"charged_through_date"`
}

func (p *squarePayment) toInput(eventID string) ports.PaymentInput {
	in := ports.PaymentInput{
		EventID:        eventID,
		PaymentID:      p.ID,
		Status:         p.Status,
		Note:           p.Note,
		SubscriptionID: p.SubscriptionID,
		CustomerID:     p.CustomerID,
	}
	if p.AmountMoney != nil {
		in.AmountCents = p.AmountMoney.Amount
	}
	return in
}

func (s *squareSubscription) toInput(eventID string) ports.SubscriptionInput {
	return ports.SubscriptionInput{
		EventID:        eventID,
		SubscriptionID: s.ID,
		Status:         s.Status,
		CustomerID:     s.CustomerID,
	}
}

// ── Members ───────────────────────────────────────────────────────────────────

type creatorTypesRequest struct {
	CreatorTypes []string `json:"creator_types" validate:"max=3,dive,creator_type"`
}

type sponsorshipCheckoutRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Recurring   bool   `json:"recurring"`
	Anonymous   bool   `json:"anonymous"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
}

type checkoutResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	OrderID string `json:"order_id,omitempty"`
}

func toCheckoutResponse(l *ports.PaymentLink) checkoutResponse {
	return checkoutResponse{ID: l.ID, URL: l.URL, OrderID: l.OrderID}
}

type roleSyncResponse struct {
	Synced bool   `json:"synced"`
	Error  string `json:"error,omitempty"`
}

// ── Chat ──────────────────────────────────────────────────────────────────────

type announcementRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}
