package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolexis/analytics/internal/domain/billing"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string]string
	var gotAuth, gotIdempotencyKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for key := range r.PostForm {
			gotForm[key] = r.PostForm.Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1","payment_status":"unpaid"}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_abc", srv.URL)
	session, err := client.CreateCheckoutSession(context.Background(), billing.CheckoutParams{
		PlanID:        "basic",
		PlanName:      "Basic Plan",
		Description:   "5 analyses/month",
		AmountCents:   1000,
		Currency:      "usd",
		CustomerEmail: "buyer@example.com",
		SuccessURL:    "https://app.example/success?session_id={CHECKOUT_SESSION_ID}&plan=basic",
		CancelURL:     "https://app.example/",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", session.ID)
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	require.Equal(t, "Bearer sk_test_abc", gotAuth)
	require.NotEmpty(t, gotIdempotencyKey)
	require.Equal(t, "card", gotForm["payment_method_types[0]"])
	require.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"])
	require.Equal(t, "Basic Plan", gotForm["line_items[0][price_data][product_data][name]"])
	require.Equal(t, "1000", gotForm["line_items[0][price_data][unit_amount]"])
	require.Equal(t, "1", gotForm["line_items[0][quantity]"])
	require.Equal(t, "payment", gotForm["mode"])
	require.Equal(t, "basic", gotForm["metadata[plan_type]"])
	require.Equal(t, "required", gotForm["billing_address_collection"])
	require.Equal(t, "buyer@example.com", gotForm["customer_email"])
	require.Equal(t, "https://app.example/success?session_id={CHECKOUT_SESSION_ID}&plan=basic", gotForm["success_url"])
}

func TestGetCheckoutSessionPrefersCustomerDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"payment_status": "paid",
			"amount_total": 1000,
			"customer_email": null,
			"customer_details": {"email": "buyer@example.com"}
		}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_abc", srv.URL)
	session, err := client.GetCheckoutSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	require.Equal(t, "paid", session.PaymentStatus)
	require.EqualValues(t, 1000, session.AmountTotal)
	require.Equal(t, "buyer@example.com", session.CustomerEmail)
}

func TestGetCheckoutSessionRejectsEmptyID(t *testing.T) {
	client := NewClient("sk_test_abc", "http://unused.invalid")
	_, err := client.GetCheckoutSession(context.Background(), "  ")
	require.Error(t, err)
}

func TestStripeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"expired key"}}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_abc", srv.URL)
	_, err := client.GetCheckoutSession(context.Background(), "cs_test_1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=402")
}
