package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/prolexis/analytics/pkg/errors"
	"github.com/prolexis/analytics/pkg/util"
)

// Config carries the checkout redirect targets.
type Config struct {
	SuccessURL string
	CancelURL  string
}

// Service exposes subscription and checkout workflows.
type Service interface {
	Plans() []Plan
	StartCheckout(ctx context.Context, planID, email string) (CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, sessionID, planID string) (Receipt, error)
	Subscription(ctx context.Context, email string) (Subscription, error)
	Authorize(ctx context.Context, email string) error
	RecordUsage(ctx context.Context, email string) error
}

type service struct {
	cfg     Config
	gateway PaymentGateway
	store   SubscriptionStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService is a wire provider for the billing domain.
func NewService(cfg Config, gateway PaymentGateway, store SubscriptionStore, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		gateway: gateway,
		store:   store,
		logger:  logger.With("component", "billing.service"),
		now:     util.NowUTC,
	}
}

func (s *service) Plans() []Plan {
	return Plans()
}

func (s *service) StartCheckout(ctx context.Context, planID, email string) (CheckoutSession, error) {
	plan, ok := PlanByID(planID)
	if !ok {
		return CheckoutSession{}, apperrors.Wrap("invalid_plan", fmt.Sprintf("unknown plan %q", planID), nil)
	}

	// The gateway substitutes the session id placeholder on redirect.
	successURL := fmt.Sprintf("%s?session_id={CHECKOUT_SESSION_ID}&plan=%s", strings.TrimRight(s.cfg.SuccessURL, "/"), plan.ID)
	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Description:   plan.Description,
		AmountCents:   plan.AmountCents,
		Currency:      plan.Currency,
		CustomerEmail: strings.TrimSpace(email),
		SuccessURL:    successURL,
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		return CheckoutSession{}, apperrors.Wrap("payment_error", "create checkout session failed", err)
	}

	s.logger.Info("checkout session created", "plan", plan.ID, "session", session.ID)
	return session, nil
}

func (s *service) ConfirmCheckout(ctx context.Context, sessionID, planID string) (Receipt, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Receipt{}, apperrors.Wrap("invalid_input", "missing session id", nil)
	}
	plan, ok := PlanByID(planID)
	if !ok {
		return Receipt{}, apperrors.Wrap("invalid_plan", fmt.Sprintf("unknown plan %q", planID), nil)
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return Receipt{}, apperrors.Wrap("payment_error", "verify checkout session failed", err)
	}
	if session.PaymentStatus != "paid" {
		return Receipt{}, apperrors.Wrap("payment_incomplete", "payment not completed", nil)
	}
	email := strings.TrimSpace(session.CustomerEmail)
	if email == "" {
		return Receipt{}, apperrors.Wrap("payment_error", "checkout session has no customer email", nil)
	}

	now := s.now().UTC()
	sub := Subscription{
		Email:         email,
		PlanID:        plan.ID,
		Status:        "active",
		AnalysesLimit: plan.AnalysesPerMonth,
		AnalysesUsed:  0,
		PeriodStart:   monthStart(now),
		ActivatedAt:   now,
	}
	if err := s.store.Put(ctx, sub); err != nil {
		return Receipt{}, apperrors.Wrap("internal", "store subscription failed", err)
	}

	s.logger.Info("subscription activated", "plan", plan.ID, "email", email)
	return Receipt{
		Email:       email,
		PlanID:      plan.ID,
		AmountCents: session.AmountTotal,
		SessionID:   sessionID,
		Timestamp:   now.Format(time.RFC3339),
	}, nil
}

func (s *service) Subscription(ctx context.Context, email string) (Subscription, error) {
	sub, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return Subscription{}, apperrors.Wrap("internal", "load subscription failed", err)
	}
	if !ok {
		return Subscription{}, apperrors.Wrap("no_subscription", "no subscription found", nil)
	}
	return s.rolled(ctx, sub), nil
}

// Authorize reports whether the customer may run one more analysis this
// month. It does not consume quota; RecordUsage does that after success.
func (s *service) Authorize(ctx context.Context, email string) error {
	sub, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return apperrors.Wrap("internal", "load subscription failed", err)
	}
	if !ok || sub.Status != "active" {
		return apperrors.Wrap("no_subscription", "no subscription found", nil)
	}

	sub = s.rolled(ctx, sub)
	if sub.AnalysesLimit == Unlimited {
		return nil
	}
	if sub.AnalysesUsed >= sub.AnalysesLimit {
		return apperrors.Wrap("quota_exceeded", fmt.Sprintf("monthly limit of %d analyses reached", sub.AnalysesLimit), nil)
	}
	return nil
}

// RecordUsage consumes one unit of monthly quota.
func (s *service) RecordUsage(ctx context.Context, email string) error {
	sub, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return apperrors.Wrap("internal", "load subscription failed", err)
	}
	if !ok {
		return nil
	}
	sub = s.rolled(ctx, sub)
	sub.AnalysesUsed++
	if err := s.store.Put(ctx, sub); err != nil {
		return apperrors.Wrap("internal", "store subscription failed", err)
	}
	return nil
}

// rolled resets the usage counter when the calendar month has turned since
// the subscription's current period began. The reset is persisted best
// effort; a failed write just means the next call rolls again.
func (s *service) rolled(ctx context.Context, sub Subscription) Subscription {
	start := monthStart(s.now().UTC())
	if !sub.PeriodStart.Before(start) {
		return sub
	}
	sub.PeriodStart = start
	sub.AnalysesUsed = 0
	if err := s.store.Put(ctx, sub); err != nil {
		s.logger.Warn("persist usage rollover failed", "email", sub.Email, "error", err)
	}
	return sub
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
