package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const (
	defaultBaseURL = "https://connect.squareup.com"
	defaultVersion = "2024-04-17"
	defaultTimeout = 15 * time.Second
)

// Config holds the credentials and endpoint for the Square REST API.
type Config struct {
	BaseURL     string
	AccessToken string
	Version     string
	LocationID  string
	Timeout     time.Duration
}

// Client implements ports.PaymentGateway against Square's v2 API.
type Client struct {
	baseURL    string
	token      string
	version    string
	locationID string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		version:    cfg.Version,
		locationID: cfg.LocationID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// APIError is the error envelope returned by Square.
type APIError struct {
	StatusCode int
	Errors     []struct {
		Category string `json:"category"`
		Code     string `json:"code"`
		Detail   string `json:"detail"`
	} `json:"errors"`
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("square api error (%d): %s: %s", e.StatusCode, e.Errors[0].Code, e.Errors[0].Detail)
	}
	return fmt.Sprintf("square api error (%d)", e.StatusCode)
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type customerRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	GivenName      string `json:"given_name,omitempty"`
	EmailAddress   string `json:"email_address,omitempty"`
	ReferenceID    string `json:"reference_id,omitempty"`
}

type customerResponse struct {
	Customer struct {
		ID string `json:"id"`
	} `json:"customer"`
}

func (c *Client) CreateCustomer(ctx context.Context, in ports.CustomerInput) (string, error) {
	req := customerRequest{
		IdempotencyKey: uuid.NewString(),
		GivenName:      in.GivenName,
		EmailAddress:   in.Email,
		ReferenceID:    in.ReferenceID,
	}
	var resp customerResponse
	if err := c.do(ctx, http.MethodPost, "/v2/customers", req, &resp); err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return resp.Customer.ID, nil
}

type paymentLinkRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	QuickPay       struct {
		Name       string `json:"name"`
		PriceMoney money  `json:"price_money"`
		LocationID string `json:"location_id"`
	} `json:"quick_pay"`
	PaymentNote     string           `json:"payment_note,omitempty"`
	CheckoutOptions *checkoutOptions `json:"checkout_options,omitempty"`
	PrePopulated    *prePopulated    `json:"pre_populated_data,omitempty"`
}

type checkoutOptions struct {
	SubscriptionPlanID string `json:"subscription_plan_id,omitempty"`
	RedirectURL        string `json:"redirect_url,omitempty"`
}

type prePopulated struct {
	BuyerCustomerID string `json:"buyer_customer_id,omitempty"`
}

type paymentLinkResponse struct {
	PaymentLink struct {
		ID        string    `json:"id"`
		URL       string    `json:"url"`
		OrderID   string    `json:"order_id"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"payment_link"`
}

// CreatePaymentLink creates a hosted checkout. The note is attached as the
// payment note so the completed payment can be classified.
func (c *Client) CreatePaymentLink(ctx context.Context, in ports.PaymentLinkInput) (*ports.PaymentLink, error) {
	req := paymentLinkRequest{IdempotencyKey: uuid.NewString(), PaymentNote: in.Note}
	req.QuickPay.Name = in.Name
	req.QuickPay.PriceMoney = money{Amount: in.AmountCents, Currency: in.Currency}
	req.QuickPay.LocationID = c.locationID
	if in.SubscriptionPlanID != "" || in.RedirectURL != "" {
		req.CheckoutOptions = &checkoutOptions{
			SubscriptionPlanID: in.SubscriptionPlanID,
			RedirectURL:        in.RedirectURL,
		}
	}
	if in.CustomerID != "" {
		req.PrePopulated = &prePopulated{BuyerCustomerID: in.CustomerID}
	}

	var resp paymentLinkResponse
	if err := c.do(ctx, http.MethodPost, "/v2/online-checkout/payment-links", req, &resp); err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	return &ports.PaymentLink{
		ID:        resp.PaymentLink.ID,
		URL:       resp.PaymentLink.URL,
		OrderID:   resp.PaymentLink.OrderID,
		CreatedAt: resp.PaymentLink.CreatedAt,
	}, nil
}

type subscriptionResponse struct {
	Subscription struct {
		ID                 string `json:"id"`
		Status             string `json:"status"`
		CustomerID         string `json:"customer_id"`
		ChargedThroughDate string `json:"charged_through_date"`
	} `json:"subscription"`
}

func (c *Client) RetrieveSubscription(ctx context.Context, subscriptionID string) (*ports.ProviderSubscription, error) {
	var resp subscriptionResponse
	path := "/v2/subscriptions/" + url.PathEscape(subscriptionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}
	return &ports.ProviderSubscription{
		ID:                 resp.Subscription.ID,
		Status:             resp.Subscription.Status,
		CustomerID:         resp.Subscription.CustomerID,
		ChargedThroughDate: resp.Subscription.ChargedThroughDate,
	}, nil
}

type pauseRequest struct {
	PauseEffectiveDate  string `json:"pause_effective_date"`
	ResumeEffectiveDate string `json:"resume_effective_date"`
	PauseReason         string `json:"pause_reason,omitempty"`
}

func (c *Client) PauseSubscription(ctx context.Context, req ports.PauseRequest) error {
	body := pauseRequest{
		PauseEffectiveDate:  req.PauseEffectiveDate,
		ResumeEffectiveDate: req.ResumeEffectiveDate,
		PauseReason:         req.Reason,
	}
	path := "/v2/subscriptions/" + url.PathEscape(req.SubscriptionID) + "/pause"
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("pause subscription %s: %w", req.SubscriptionID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Square-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
