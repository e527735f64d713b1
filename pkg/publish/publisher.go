// Package publish drives newly proposed blocks through broadcast,
// reconstruction, and import. Blocks are always broadcast before the import
// outcome is known: peers benefit from fast propagation even when local
// import later rejects the block.
package publish

import (
	"context"
	"time"

	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/blockpub/pkg/broadcast"
	"github.com/ethpandaops/blockpub/pkg/chain"
	"github.com/ethpandaops/blockpub/pkg/execution"
	"github.com/ethpandaops/blockpub/pkg/serialize"
)

// Publisher accepts signed beacon blocks from the node's external boundary
// and publishes them: broadcast first, then import, then head recomputation
// and monitoring.
type Publisher struct {
	log         logrus.FieldLogger
	chain       chain.Chain
	broadcaster broadcast.Broadcaster
	monitor     chain.ValidatorMonitor
	execution   execution.Provider
	metrics     *Metrics
}

// NewPublisher creates a Publisher. The execution provider may be nil when no
// execution layer is configured; publishing blinded execution-era blocks then
// fails with a ConfigurationError.
func NewPublisher(
	log logrus.FieldLogger,
	ch chain.Chain,
	broadcaster broadcast.Broadcaster,
	monitor chain.ValidatorMonitor,
	provider execution.Provider,
	metrics *Metrics,
) *Publisher {
	return &Publisher{
		log:         log.WithField("module", "blockpub/publish"),
		chain:       ch,
		broadcaster: broadcaster,
		monitor:     monitor,
		execution:   provider,
		metrics:     metrics,
	}
}

// PublishBlock broadcasts a full block, submits it for import, and emits
// timeliness diagnostics. The block is sent to the network regardless of
// whether it later turns out to be valid. A rejected block has therefore
// still been broadcast; that ordering is a contract of this endpoint.
func (p *Publisher) PublishBlock(ctx context.Context, block *spec.VersionedSignedBeaconBlock) error {
	seen := time.Now()

	if err := p.broadcaster.BroadcastBlock(ctx, block); err != nil {
		p.metrics.IncPublished("transport_error")

		return &TransportError{Err: err}
	}

	slot, err := block.Slot()
	if err != nil {
		return errors.Wrap(err, "failed to read block slot")
	}

	clock := p.chain.SlotClock()
	delay := seen.Sub(clock.SlotStart(slot))
	p.metrics.ObserveBroadcastDelay(delay)

	root, err := p.chain.ProcessBlock(ctx, block)
	if err != nil {
		p.metrics.IncPublished("rejected")
		p.log.WithError(err).WithField("slot", slot).Error("Invalid block provided to publish endpoint")

		return &ValidationRejection{Cause: err.Error()}
	}

	p.metrics.IncPublished("imported")

	proposer, err := block.ProposerIndex()
	if err != nil {
		return errors.Wrap(err, "failed to read block proposer index")
	}

	p.log.WithFields(logrus.Fields{
		"slot":           slot,
		"root":           serialize.RootAsString(root),
		"proposer_index": proposer,
		"delay":          delay,
	}).Info("Valid block received via publish endpoint")

	p.monitor.RegisterAPIBlock(seen, block, root, clock)

	// This block is likely to become the new head.
	p.chain.RecomputeHead(ctx)

	p.classifyDelay(clock, delay, slot, root)

	return nil
}

// classifyDelay warns when a block was broadcast late enough to risk being
// orphaned. Thresholds of zero disable the classification, so degenerate
// slot schedules never fire it.
func (p *Publisher) classifyDelay(clock chain.SlotClock, delay time.Duration, slot phase0.Slot, root phase0.Root) {
	critThreshold := clock.LateThreshold()
	errorThreshold := critThreshold / 2

	fields := logrus.Fields{
		"delay": delay,
		"slot":  slot,
		"root":  serialize.RootAsString(root),
	}

	switch {
	case critThreshold > 0 && delay >= critThreshold:
		p.log.WithFields(fields).Error("Block was broadcast too late, block likely to be orphaned")
	case errorThreshold > 0 && delay >= errorThreshold:
		p.log.WithFields(fields).Warn("Block broadcast was delayed, block may be orphaned")
	}
}
