package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// EngagementEvents counts engagement mutations by kind and outcome.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_engagement_events_total",
		Help: "Total engagement mutations by kind and outcome",
	}, []string{"kind", "outcome"})

	// NotificationsEmitted counts notification records appended, by verb.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notifications_emitted_total",
		Help: "Total notifications appended to the sink, by verb",
	}, []string{"verb"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler that records request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
