package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// ResponseCache stores raw model responses keyed by prompt digest. Entries
// never expire and live for the process lifetime, so a repeated prompt is
// answered without another model call. Implementations must be safe for
// concurrent use; at most one entry exists per distinct key.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, response string) error
}

// PromptKey derives the cache key for a prompt.
func PromptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
