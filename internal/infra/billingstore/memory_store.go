package billingstore

import (
	"context"
	"strings"
	"sync"

	"github.com/prolexis/analytics/internal/domain/billing"
)

// MemoryStore is an in-memory implementation of the subscription store for tests/dev.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]billing.Subscription
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]billing.Subscription)}
}

// Get implements billing.SubscriptionStore.
func (s *MemoryStore) Get(_ context.Context, email string) (billing.Subscription, bool, error) {
	key := normalizeEmail(email)
	if key == "" {
		return billing.Subscription{}, false, nil
	}
	s.mu.RLock()
	sub, ok := s.subs[key]
	s.mu.RUnlock()
	return sub, ok, nil
}

// Put stores the subscription keyed by its normalized email.
func (s *MemoryStore) Put(_ context.Context, sub billing.Subscription) error {
	key := normalizeEmail(sub.Email)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[key] = sub
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ billing.SubscriptionStore = (*MemoryStore)(nil)
