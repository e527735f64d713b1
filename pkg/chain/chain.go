// Package chain defines the contracts the publish pipeline needs from the
// beacon chain: block import, head recomputation, slot timing, and the
// validator monitor.
package chain

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// Chain is the facade over the node's block import machinery. Implementations
// live outside this module; the pipeline only drives them.
type Chain interface {
	// ProcessBlock submits a full block for import and returns its canonical
	// root. It may block while the block works through internal processing.
	// An error means the block was rejected by validation.
	ProcessBlock(ctx context.Context, block *spec.VersionedSignedBeaconBlock) (phase0.Root, error)

	// RecomputeHead re-evaluates the canonical tip after an import. It may
	// block; callers do not consume a result.
	RecomputeHead(ctx context.Context)

	// SlotClock exposes the chain's slot timing.
	SlotClock() SlotClock
}
