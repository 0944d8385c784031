package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"puppytalk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const maxLocalLimiters = 10000

var errNoRedis = errors.New("redis client is nil")

// CheckRateLimit counts a hit in the fixed window for resource/id.
// Returns true if allowed, false if limit exceeded.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and set EXPIRE if new
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimiter enforces limit hits per window for one named resource. Redis
// holds the shared counters; the in-memory limiters only serve while Redis is
// unreachable, so an outage never blocks requests.
type RateLimiter struct {
	rdb      *redis.Client
	resource string
	limit    int
	window   time.Duration

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter returns a limiter for resource.
func NewRateLimiter(rdb *redis.Client, resource string, limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		rdb:      rdb,
		resource: resource,
		limit:    limit,
		window:   window,
		local:    make(map[string]*rate.Limiter),
	}
}

// Allow records a hit for id and reports whether it is within the limit,
// along with the store that decided.
func (rl *RateLimiter) Allow(ctx context.Context, id string) (allowed bool, store string) {
	allowed, err := CheckRateLimit(ctx, rl.rdb, rl.resource, id, rl.limit, rl.window)
	if err == nil {
		return allowed, "redis"
	}
	if !errors.Is(err, errNoRedis) {
		Logger.WarnContext(ctx, "rate limit store unavailable, using in-memory fallback",
			"resource", rl.resource, "error", err)
	}
	return rl.localLimiter(id).Allow(), "memory"
}

func (rl *RateLimiter) localLimiter(id string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.local) >= maxLocalLimiters {
		rl.local = make(map[string]*rate.Limiter)
	}
	limiter, ok := rl.local[id]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.limit)
		rl.local[id] = limiter
	}
	return limiter
}

// Handler returns the Fiber middleware. It keys by authenticated userID
// (if set in c.Locals("userID")) otherwise by remote IP.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = fmt.Sprintf("ip:%s", c.IP())
		}

		allowed, store := rl.Allow(c.UserContext(), id)
		if !allowed {
			RateLimitRejections.WithLabelValues(rl.resource, store).Inc()
			return models.NewError(models.CodeRateLimitExceeded)
		}
		return c.Next()
	}
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return NewRateLimiter(rdb, name, limit, window).Handler()
}
