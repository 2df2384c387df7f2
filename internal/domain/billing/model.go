package billing

import (
	"context"
	"time"
)

// Unlimited marks a quota with no monthly cap.
const Unlimited = -1

// Plan describes one purchasable tier.
type Plan struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	AmountCents        int64  `json:"amountCents"`
	Currency           string `json:"currency"`
	AnalysesPerMonth   int    `json:"analysesPerMonth"`
	SourcesLimit       int    `json:"sourcesLimit"`
	CompetitorTracking bool   `json:"competitorTracking"`
	Automation         bool   `json:"automation"`
	Forecasting        bool   `json:"forecasting"`
}

// catalog is ordered the way plans appear on the pricing page.
var catalog = []Plan{
	{
		ID:               "basic",
		Name:             "Basic Plan",
		Description:      "5 analyses/month",
		AmountCents:      1000,
		Currency:         "usd",
		AnalysesPerMonth: 5,
		SourcesLimit:     3,
	},
	{
		ID:                 "pro",
		Name:               "Pro Plan",
		Description:        "Unlimited analyses + competitor tracking",
		AmountCents:        4900,
		Currency:           "usd",
		AnalysesPerMonth:   Unlimited,
		SourcesLimit:       Unlimited,
		CompetitorTracking: true,
	},
	{
		ID:               "onetime",
		Name:             "One-time Plan",
		Description:      "PDF from up to 3 sources",
		AmountCents:      2500,
		Currency:         "usd",
		AnalysesPerMonth: 3,
		SourcesLimit:     3,
	},
	{
		ID:               "starter",
		Name:             "Starter Plan",
		Description:      "Dashboard + Data cleanup",
		AmountCents:      49900,
		Currency:         "usd",
		AnalysesPerMonth: 10,
		SourcesLimit:     5,
		Automation:       true,
	},
	{
		ID:                 "premium",
		Name:               "Premium Plan",
		Description:        "Automation + Forecasting + $100/mo",
		AmountCents:        99900,
		Currency:           "usd",
		AnalysesPerMonth:   Unlimited,
		SourcesLimit:       Unlimited,
		CompetitorTracking: true,
		Automation:         true,
		Forecasting:        true,
	},
}

// Plans returns the purchasable catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByID looks up a catalog entry.
func PlanByID(id string) (Plan, bool) {
	for _, plan := range catalog {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// Subscription tracks one customer's active plan and usage window.
type Subscription struct {
	Email         string    `json:"email"`
	PlanID        string    `json:"planId"`
	Status        string    `json:"status"`
	AnalysesLimit int       `json:"analysesLimit"`
	AnalysesUsed  int       `json:"analysesUsed"`
	PeriodStart   time.Time `json:"periodStart"`
	ActivatedAt   time.Time `json:"activatedAt"`
}

// Receipt summarizes a completed checkout.
type Receipt struct {
	Email       string `json:"email"`
	PlanID      string `json:"plan"`
	AmountCents int64  `json:"amount"`
	SessionID   string `json:"sessionId"`
	Timestamp   string `json:"timestamp"`
}

// CheckoutParams describes the single line item sent to the gateway.
type CheckoutParams struct {
	PlanID        string
	PlanName      string
	Description   string
	AmountCents   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession mirrors the gateway's view of a checkout.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"paymentStatus"`
	AmountTotal   int64  `json:"amountTotal"`
	CustomerEmail string `json:"customerEmail"`
}

// PaymentGateway is the slice of the payment provider's checkout API this
// service depends on.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
}

// SubscriptionStore persists subscriptions keyed by customer email.
type SubscriptionStore interface {
	Get(ctx context.Context, email string) (Subscription, bool, error)
	Put(ctx context.Context, sub Subscription) error
}
