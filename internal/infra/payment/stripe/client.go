package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prolexis/analytics/internal/domain/billing"
)

const defaultBaseURL = "https://api.stripe.com"

// Client talks to the Stripe Checkout Sessions API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Stripe API client.
func NewClient(apiKey, baseURL string) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a hosted checkout page for a one-off payment.
func (c *Client) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (billing.CheckoutSession, error) {
	form := url.Values{}
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.PlanName)
	form.Set("line_items[0][price_data][product_data][description]", params.Description)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("metadata[plan_type]", params.PlanID)
	form.Set("billing_address_collection", "required")
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	var session sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return billing.CheckoutSession{}, err
	}
	return session.toDomain(), nil
}

// GetCheckoutSession retrieves a session after the customer returns from checkout.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (billing.CheckoutSession, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return billing.CheckoutSession{}, fmt.Errorf("empty session id")
	}

	var session sessionResponse
	path := "/v1/checkout/sessions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return billing.CheckoutSession{}, err
	}
	return session.toDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if method == http.MethodPost {
		// Stripe dedupes replayed POSTs by idempotency key.
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("stripe request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}

type sessionResponse struct {
	ID              string           `json:"id"`
	URL             string           `json:"url"`
	PaymentStatus   string           `json:"payment_status"`
	AmountTotal     int64            `json:"amount_total"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerDetails *customerDetails `json:"customer_details"`
}

type customerDetails struct {
	Email string `json:"email"`
}

func (s sessionResponse) toDomain() billing.CheckoutSession {
	email := s.CustomerEmail
	// Stripe fills customer_details after checkout completes; prefer it.
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		email = s.CustomerDetails.Email
	}
	return billing.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: s.PaymentStatus,
		AmountTotal:   s.AmountTotal,
		CustomerEmail: email,
	}
}

var _ billing.PaymentGateway = (*Client)(nil)
