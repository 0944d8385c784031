package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"puppytalk/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside loads key into dest, calling fetch to fill dest on a miss and then
// caching the result for ttl. Cache faults never fail the read; fetch errors
// are returned unchanged and nothing is cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jerr := json.Unmarshal(raw, dest); jerr == nil {
			observability.CacheResults.WithLabelValues("hit").Inc()
			return nil
		}
		Invalidate(ctx, key)
	case errors.Is(err, redis.Nil):
		observability.CacheResults.WithLabelValues("miss").Inc()
	default:
		observability.CacheResults.WithLabelValues("error").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		slog.Default().WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		slog.Default().WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}
