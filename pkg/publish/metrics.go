package publish

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains prometheus metrics for the publish pipeline.
type Metrics struct {
	// BroadcastDelay measures the time between a slot's start and the
	// moment a block for that slot arrived at the publish endpoint. It is
	// observed for every block, valid or not.
	BroadcastDelay prometheus.Histogram

	// BlocksPublished counts publish attempts by outcome.
	BlocksPublished *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BroadcastDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_broadcast_delay_seconds",
			Help:      "Delay between slot start and block arrival at the publish endpoint",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		BlocksPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_published_total",
			Help:      "Total number of publish attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Register registers the metrics with the provided registerer. If registerer
// is nil, the default prometheus registerer is used.
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	for _, c := range []prometheus.Collector{m.BroadcastDelay, m.BlocksPublished} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// ObserveBroadcastDelay records a block's proposal delay.
func (m *Metrics) ObserveBroadcastDelay(delay time.Duration) {
	m.BroadcastDelay.Observe(delay.Seconds())
}

// IncPublished increments the publish outcome counter.
func (m *Metrics) IncPublished(outcome string) {
	m.BlocksPublished.WithLabelValues(outcome).Inc()
}
