// internal/common/cache/cache.go
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dyemind/internal/common/config"
)

// Cache is the memoization contract for lookup results. Implementations must
// treat a missing key as (value="", found=false, err=nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Close() error
}

// New builds the cache backend selected by configuration. Backend "none"
// returns a nil Cache; callers skip memoization when the cache is nil.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(cfg.Redis)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NormalizeQuery produces the canonical cache-key form of a user query:
// trimmed, lower-cased, inner whitespace collapsed. The original query is
// still used verbatim for upstream searches.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Key builds a namespaced cache key for one source and query.
func Key(source, query string) string {
	return fmt.Sprintf("lookup:%s:%s", source, NormalizeQuery(query))
}
