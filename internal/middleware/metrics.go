package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puppytalk_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// AuthEvents counts authentication outcomes (signup, login_success, login_failure, logout, rejected).
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puppytalk_auth_events_total",
		Help: "Authentication events by outcome",
	}, []string{"event"})

	// SessionsSwept counts expired sessions removed by the sweeper.
	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "puppytalk_sessions_swept_total",
		Help: "Total number of expired sessions deleted",
	})

	// RateLimitRejections counts requests rejected by a rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puppytalk_rate_limit_rejections_total",
		Help: "Requests rejected by rate limiting",
	}, []string{"resource", "store"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
