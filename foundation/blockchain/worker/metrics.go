package worker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBlocksMined   prometheus.Counter
	prometheusStaleRetries  prometheus.Counter
	prometheusHashes        prometheus.Counter
	prometheusDropped       prometheus.Counter
	prometheusMiningSeconds prometheus.Histogram

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBlocksMined = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "worker",
			Name:      "blocks_mined",
			Help:      "Number of blocks mined and appended to the chain",
		},
	)
	prometheusStaleRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "worker",
			Name:      "stale_retries",
			Help:      "Number of mined blocks that lost the race for the tip and were rebased",
		},
	)
	prometheusHashes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "worker",
			Name:      "hashes",
			Help:      "Number of block hashes calculated while mining",
		},
	)
	prometheusDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noobchain",
			Subsystem: "worker",
			Name:      "blocks_abandoned",
			Help:      "Number of blocks abandoned because mining was cancelled",
		},
	)
	prometheusMiningSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "noobchain",
			Subsystem: "worker",
			Name:      "mining_seconds",
			Help:      "Time taken to solve a block",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
}
