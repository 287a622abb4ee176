package mid

import (
	"context"
	"net/http"
	"sync"

	"github.com/liquiduspro/noobchain/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests *prometheus.CounterVec
	apiErrors   prometheus.Counter
	apiPanics   prometheus.Counter
	apiLatency  prometheus.Histogram
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "api",
			Name:      "requests",
			Help:      "Number of requests handled by the public api",
		},
		[]string{"method"},
	)

	apiErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "api",
			Name:      "errors",
			Help:      "Number of requests that returned an error",
		},
	)

	apiPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "api",
			Name:      "panics",
			Help:      "Number of requests that panicked",
		},
	)

	apiLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "noobchain",
			Subsystem: "api",
			Name:      "request_seconds",
			Help:      "Time taken to handle a request",
			Buckets:   prometheus.DefBuckets,
		},
	)
}

// Metrics updates program counters.
func Metrics() web.Middleware {
	initPrometheusMetrics()

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			timer := prometheus.NewTimer(apiLatency)
			defer timer.ObserveDuration()

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request counter.
			apiRequests.WithLabelValues(r.Method).Inc()

			// Increment if there is an error flowing through the request.
			if err != nil {
				apiErrors.Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
