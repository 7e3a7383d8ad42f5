// Package metrics owns the Prometheus registry served on /metrics and the
// collectors the storefront increments.
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "duka"

// DefaultRegistry is the registry served on /metrics. It carries the Go
// runtime and process collectors plus everything declared in this package.
var DefaultRegistry = prometheus.NewRegistry()

var (
	// CartMutations counts cart ledger writes by op: add, remove, update, clear.
	CartMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart ledger writes by operation.",
	}, []string{"op"})

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders accepted at checkout.",
	})

	// OrderValue is the distribution of order totals in the store currency.
	OrderValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "value",
		Help:      "Order totals in the store currency.",
		Buckets:   []float64{500, 1_000, 2_500, 5_000, 10_000, 25_000, 50_000, 100_000},
	})

	// OrderRejected counts checkouts turned away before anything was
	// written, by reason.
	OrderRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "rejected_total",
		Help:      "Checkouts rejected before the order log was touched.",
	}, []string{"reason"})

	OrderLogFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "log_failures_total",
		Help:      "Order log appends that failed.",
	}, []string{"driver"})

	OrderLogLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "log_duration_seconds",
		Help:      "Order log read and append latency.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
	}, []string{"driver", "op"})

	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cart store cache hits.",
	}, []string{"driver"})

	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cart store cache misses.",
	}, []string{"driver"})
)

func init() {
	DefaultRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestDuration,
		requestTotal,
		requestsInFlight,
		responseSize,
		CartMutations,
		OrdersPlaced,
		OrderValue,
		OrderRejected,
		OrderLogFailures,
		OrderLogLatency,
		CacheHits,
		CacheMisses,
	)
}

// Handler serves DefaultRegistry in both text and OpenMetrics formats.
func Handler() http.HandlerFunc {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}).ServeHTTP
}

// ObserveOrderLog records how long an order log operation took:
//
//	defer metrics.ObserveOrderLog("sql", "append", time.Now())
func ObserveOrderLog(driver, op string, start time.Time) {
	OrderLogLatency.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}
