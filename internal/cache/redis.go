// Package cache holds the shared Redis client behind the post detail cache
// and the cross-instance rate limit counters. Every helper degrades to a
// no-op when Redis is not configured or did not answer at startup.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"puppytalk/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Timeouts are kept short: a slow Redis must not stall requests that can be
// served without it.
const (
	dialTimeout  = 500 * time.Millisecond
	ioTimeout    = 300 * time.Millisecond
	poolTimeout  = 500 * time.Millisecond
	maxRetries   = 1
	pingDeadline = 2 * time.Second
)

var client *redis.Client

// errorCounter counts failed commands per command name. A miss (redis.Nil)
// is not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

func countFailure(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(name).Inc()
	}
}

// ClientOptions turns REDIS_URL into client options. Both redis:// URLs and
// bare host:port addresses are accepted.
func ClientOptions(addr string) (*redis.Options, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	opts.PoolTimeout = poolTimeout
	opts.MaxRetries = maxRetries
	return opts, nil
}

// InitRedis connects to addr and installs the client. An empty address, a
// bad URL or a failed ping leaves the package without a client.
func InitRedis(addr string) {
	client = nil
	addr = strings.TrimSpace(addr)
	if addr == "" {
		middleware.Logger.Info("REDIS_URL not set, running without cache")
		return
	}

	opts, err := ClientOptions(addr)
	if err != nil {
		middleware.Logger.Warn("Invalid REDIS_URL, running without cache", slog.String("error", err.Error()))
		return
	}

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingDeadline)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unreachable, running without cache",
			slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		_ = c.Close()
		return
	}

	SetClient(c)
	middleware.Logger.Info("Redis connected", slog.String("addr", opts.Addr))
}

// GetClient returns the shared client, or nil without Redis.
func GetClient() *redis.Client {
	return client
}

// SetClient installs c as the shared client. Tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorCounter{})
	}
	client = c
}
