package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts counter-store errors by command name. Incremented by the
// go-redis hook in internal/cache so side-effect failures stay observable
// even though they never fail the request.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_redis_errors_total",
	Help: "Total number of Redis errors by command",
}, []string{"command"})

// VisitIncrements counts successful visit-counter increments.
var VisitIncrements = promauto.NewCounter(prometheus.CounterOpts{
	Name: "inkwell_post_visit_increments_total",
	Help: "Total number of post detail visits recorded",
})

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The underlying collectors register against the default registry, so the
// instance is created once and shared.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware returns the Fiber handler recording request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
