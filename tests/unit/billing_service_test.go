package unit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolexis/analytics/internal/domain/billing"
	"github.com/prolexis/analytics/internal/infra/billingstore"
	apperrors "github.com/prolexis/analytics/pkg/errors"
)

func TestCheckoutActivatesSubscription(t *testing.T) {
	gateway := &stubGateway{
		session: billing.CheckoutSession{
			ID:            "cs_unit_1",
			URL:           "https://checkout.stripe.com/c/pay/cs_unit_1",
			PaymentStatus: "unpaid",
		},
	}
	svc := newBillingService(gateway)

	session, err := svc.StartCheckout(context.Background(), "basic", "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, "cs_unit_1", session.ID)
	require.Contains(t, gateway.lastParams.SuccessURL, "{CHECKOUT_SESSION_ID}")
	require.Equal(t, "buyer@example.com", gateway.lastParams.CustomerEmail)

	gateway.session.PaymentStatus = "paid"
	gateway.session.AmountTotal = 1000
	gateway.session.CustomerEmail = "buyer@example.com"

	receipt, err := svc.ConfirmCheckout(context.Background(), "cs_unit_1", "basic")
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", receipt.Email)
	require.EqualValues(t, 1000, receipt.AmountCents)

	sub, err := svc.Subscription(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, "active", sub.Status)
	require.Equal(t, 5, sub.AnalysesLimit)
	require.NoError(t, svc.Authorize(context.Background(), "buyer@example.com"))
}

func TestQuotaExhaustionBlocksAnalyses(t *testing.T) {
	gateway := &stubGateway{
		session: billing.CheckoutSession{
			ID:            "cs_unit_2",
			PaymentStatus: "paid",
			AmountTotal:   2500,
			CustomerEmail: "solo@example.com",
		},
	}
	svc := newBillingService(gateway)

	_, err := svc.ConfirmCheckout(context.Background(), "cs_unit_2", "onetime")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Authorize(context.Background(), "solo@example.com"))
		require.NoError(t, svc.RecordUsage(context.Background(), "solo@example.com"))
	}

	err = svc.Authorize(context.Background(), "solo@example.com")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "quota_exceeded"))
}

func TestUnlimitedPlanNeverExhausts(t *testing.T) {
	gateway := &stubGateway{
		session: billing.CheckoutSession{
			ID:            "cs_unit_3",
			PaymentStatus: "paid",
			AmountTotal:   4900,
			CustomerEmail: "power@example.com",
		},
	}
	svc := newBillingService(gateway)

	_, err := svc.ConfirmCheckout(context.Background(), "cs_unit_3", "pro")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.RecordUsage(context.Background(), "power@example.com"))
	}
	require.NoError(t, svc.Authorize(context.Background(), "power@example.com"))
}

func TestConfirmRejectsUnpaidSession(t *testing.T) {
	gateway := &stubGateway{
		session: billing.CheckoutSession{ID: "cs_unit_4", PaymentStatus: "unpaid"},
	}
	svc := newBillingService(gateway)

	_, err := svc.ConfirmCheckout(context.Background(), "cs_unit_4", "pro")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "payment_incomplete"))

	err = svc.Authorize(context.Background(), "someone@example.com")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "no_subscription"))
}

func newBillingService(gateway billing.PaymentGateway) billing.Service {
	cfg := billing.Config{
		SuccessURL: "https://app.example/payment-success",
		CancelURL:  "https://app.example/payment-cancelled",
	}
	return billing.NewService(cfg, gateway, billingstore.NewMemoryStore(), billingTestLogger())
}

func billingTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubGateway struct {
	session    billing.CheckoutSession
	createErr  error
	getErr     error
	lastParams billing.CheckoutParams
}

func (s *stubGateway) CreateCheckoutSession(_ context.Context, params billing.CheckoutParams) (billing.CheckoutSession, error) {
	s.lastParams = params
	if s.createErr != nil {
		return billing.CheckoutSession{}, s.createErr
	}
	return s.session, nil
}

func (s *stubGateway) GetCheckoutSession(_ context.Context, _ string) (billing.CheckoutSession, error) {
	if s.getErr != nil {
		return billing.CheckoutSession{}, s.getErr
	}
	return s.session, nil
}
