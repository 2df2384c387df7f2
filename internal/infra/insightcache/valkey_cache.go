package insightcache

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/prolexis/analytics/internal/domain/insight"
)

// ValkeyCache shares raw model responses across instances through a
// Valkey-compatible database. Keys are written without expiry to honor the
// cache contract; flushing the keyspace is the only way entries leave.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "insight"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get implements insight.ResponseCache.
func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	cmd := c.client.B().Get().Key(c.entryKey(key)).Build()
	value, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Put implements insight.ResponseCache.
func (c *ValkeyCache) Put(ctx context.Context, key, response string) error {
	if key == "" {
		return nil
	}
	cmd := c.client.B().Set().Key(c.entryKey(key)).Value(response).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return fmt.Sprintf("%s:resp:%s", c.prefix, key)
}

var _ insight.ResponseCache = (*ValkeyCache)(nil)
