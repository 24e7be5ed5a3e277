// Package observability holds Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})

	// AuthAttempts counts registrations and logins by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_auth_attempts_total",
		Help: "Registration and login attempts by action and result",
	}, []string{"action", "result"})

	// ContentWrites counts post and comment mutations.
	ContentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_content_writes_total",
		Help: "Post and comment writes by kind and operation",
	}, []string{"kind", "operation"})

	// ContactMessages counts contact-form relays by result.
	ContactMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_contact_messages_total",
		Help: "Contact form messages by delivery result",
	}, []string{"result"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics middleware. The collectors
// are registered once; later calls return the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}
