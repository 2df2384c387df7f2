package billingstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prolexis/analytics/internal/domain/billing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	sub := billing.Subscription{
		Email:         "buyer@example.com",
		PlanID:        "basic",
		Status:        "active",
		AnalysesLimit: 5,
		AnalysesUsed:  2,
		PeriodStart:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, sub))

	got, ok, err := store.Get(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sub, got)
}

func TestMemoryStoreNormalizesEmail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, billing.Subscription{Email: "  Buyer@Example.COM ", PlanID: "pro"}))

	got, ok, err := store.Get(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "pro", got.PlanID)
}

func TestMemoryStoreIgnoresEmptyEmail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, billing.Subscription{Email: "   "}))

	_, ok, err := store.Get(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)
}
