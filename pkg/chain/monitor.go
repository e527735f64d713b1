package chain

import (
	"sync"
	"time"

	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ValidatorMonitor receives notifications about blocks that arrived through
// the publish endpoint. Implementations must tolerate concurrent callers;
// the publisher never holds monitor state across a blocking call.
type ValidatorMonitor interface {
	RegisterAPIBlock(seen time.Time, block *spec.VersionedSignedBeaconBlock, root phase0.Root, clock SlotClock)
}

// APIBlockRecord is the monitor's view of a single published block.
type APIBlockRecord struct {
	Slot  phase0.Slot
	Root  phase0.Root
	Seen  time.Time
	Delay time.Duration
}

// Monitor is an in-process ValidatorMonitor keeping the most recent API block
// per proposer and exposing proposal delay metrics.
type Monitor struct {
	log logrus.FieldLogger

	mu      sync.RWMutex
	records map[phase0.ValidatorIndex]APIBlockRecord

	blocksTotal   prometheus.Counter
	proposalDelay prometheus.Histogram
}

// NewMonitor creates a Monitor. Metrics are namespaced but not registered;
// call Register to expose them.
func NewMonitor(log logrus.FieldLogger, namespace string) *Monitor {
	return &Monitor{
		log:     log.WithField("component", "validator_monitor"),
		records: make(map[phase0.ValidatorIndex]APIBlockRecord),
		blocksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator_monitor",
			Name:      "api_blocks_total",
			Help:      "Total number of blocks registered via the publish endpoint",
		}),
		proposalDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validator_monitor",
			Name:      "api_block_delay_seconds",
			Help:      "Delay between slot start and block arrival at the publish endpoint",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

// Register registers the monitor's metrics with the provided registerer. If
// registerer is nil, the default prometheus registerer is used.
func (m *Monitor) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	for _, c := range []prometheus.Collector{m.blocksTotal, m.proposalDelay} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// RegisterAPIBlock records a block that arrived through the publish endpoint
// and was successfully imported.
func (m *Monitor) RegisterAPIBlock(seen time.Time, block *spec.VersionedSignedBeaconBlock, root phase0.Root, clock SlotClock) {
	slot, err := block.Slot()
	if err != nil {
		m.log.WithError(err).Warn("Failed to read slot from published block")

		return
	}

	proposer, err := block.ProposerIndex()
	if err != nil {
		m.log.WithError(err).Warn("Failed to read proposer index from published block")

		return
	}

	delay := seen.Sub(clock.SlotStart(slot))

	m.mu.Lock()
	m.records[proposer] = APIBlockRecord{
		Slot:  slot,
		Root:  root,
		Seen:  seen,
		Delay: delay,
	}
	m.mu.Unlock()

	m.blocksTotal.Inc()
	m.proposalDelay.Observe(delay.Seconds())
}

// LastAPIBlock returns the most recent record for a proposer.
func (m *Monitor) LastAPIBlock(proposer phase0.ValidatorIndex) (APIBlockRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[proposer]

	return record, ok
}

var _ ValidatorMonitor = (*Monitor)(nil)
