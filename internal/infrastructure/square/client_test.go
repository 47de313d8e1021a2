package square

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, AccessToken: "tok", LocationID: "LOC1"})
}

func TestClient_PauseSubscription(t *testing.T) {
	var got pauseRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/subscriptions/SUB_1/pause" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" || r.Header.Get("Square-Version") == "" {
			t.Errorf("missing auth headers")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"subscription":{"id":"SUB_1"}}`))
	})

	err := c.PauseSubscription(context.Background(), ports.PauseRequest{
		SubscriptionID:      "SUB_1",
		PauseEffectiveDate:  "2024-06-01",
		ResumeEffectiveDate: "2024-07-01",
		Reason:              "Member Sponsorship Gift",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PauseEffectiveDate != "2024-06-01" || got.ResumeEffectiveDate != "2024-07-01" || got.PauseReason != "Member Sponsorship Gift" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestClient_RetrieveSubscription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"subscription":{"id":"SUB_1","status":"ACTIVE","customer_id":"C1","charged_through_date":"2024-06-01"}}`))
	})

	sub, err := c.RetrieveSubscription(context.Background(), "SUB_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ChargedThroughDate != "2024-06-01" || sub.Status != "ACTIVE" || sub.CustomerID != "C1" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
}

func TestClient_RetrieveSubscription_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"category":"INVALID_REQUEST_ERROR","code":"NOT_FOUND","detail":"gone"}]}`))
	})

	if _, err := c.RetrieveSubscription(context.Background(), "SUB_X"); !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestClient_CreatePaymentLink(t *testing.T) {
	var got paymentLinkRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"payment_link":{"id":"PL1","url":"https://square.link/u/abc","order_id":"O1"}}`))
	})

	link, err := c.CreatePaymentLink(context.Background(), ports.PaymentLinkInput{
		Name:               "Sponsorship",
		AmountCents:        5000,
		Currency:           "USD",
		Note:               "SPONSORSHIP_SUB:U1:D1",
		SubscriptionPlanID: "PLAN",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.URL != "https://square.link/u/abc" || link.OrderID != "O1" {
		t.Fatalf("unexpected link: %+v", link)
	}
	if got.PaymentNote != "SPONSORSHIP_SUB:U1:D1" || got.QuickPay.LocationID != "LOC1" || got.IdempotencyKey == "" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.CheckoutOptions == nil || got.CheckoutOptions.SubscriptionPlanID != "PLAN" {
		t.Fatalf("missing plan: %+v", got.CheckoutOptions)
	}
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":"BAD_REQUEST","detail":"nope"}]}`))
	})

	_, err := c.CreateCustomer(context.Background(), ports.CustomerInput{ReferenceID: "U1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestVerifier(t *testing.T) {
	v := NewVerifier("secret", "https://example.org/webhooks/square")
	body := []byte(`{"event_id":"E1"}`)
	sig := v.Sign(body)

	if !v.Verify(sig, body) {
		t.Fatal("expected valid signature")
	}
	if v.Verify(sig, []byte(`{"event_id":"E2"}`)) {
		t.Fatal("tampered body must fail")
	}
	if v.Verify("", body) {
		t.Fatal("empty signature must fail")
	}
	if NewVerifier("other", "https://example.org/webhooks/square").Verify(sig, body) {
		t.Fatal("wrong key must fail")
	}
}
