package billingstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/prolexis/analytics/internal/domain/billing"
)

// ValkeyStore persists subscriptions using a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "billing"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, email string) (billing.Subscription, bool, error) {
	key := normalizeEmail(email)
	if key == "" {
		return billing.Subscription{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.subKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return billing.Subscription{}, false, nil
		}
		return billing.Subscription{}, false, err
	}
	var sub billing.Subscription
	if err := json.Unmarshal([]byte(payload), &sub); err != nil {
		return billing.Subscription{}, false, err
	}
	return sub, true, nil
}

// Put stores the subscription without expiry so quota state outlives restarts.
func (s *ValkeyStore) Put(ctx context.Context, sub billing.Subscription) error {
	key := normalizeEmail(sub.Email)
	if key == "" {
		return nil
	}
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.subKey(key)).Value(string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) subKey(email string) string {
	return fmt.Sprintf("%s:sub:%s", s.prefix, email)
}

var _ billing.SubscriptionStore = (*ValkeyStore)(nil)
