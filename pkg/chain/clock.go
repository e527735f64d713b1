package chain

import (
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/ethpandaops/ethwallclock"
)

// SlotClock provides slot timing for publish diagnostics.
type SlotClock interface {
	// SlotStart returns the wall-clock time at which the given slot begins.
	SlotStart(slot phase0.Slot) time.Time

	// LateThreshold is the per-slot deadline for unaggregated attestation
	// production. A block broadcast after this point is likely to be
	// orphaned. Zero disables lateness classification.
	LateThreshold() time.Duration
}

// WallclockSlotClock implements SlotClock on top of an ethwallclock beacon
// chain schedule.
type WallclockSlotClock struct {
	wallclock     *ethwallclock.EthereumBeaconChain
	lateThreshold time.Duration
}

// NewWallclockSlotClock creates a SlotClock for a chain with the given
// genesis time and slot schedule. lateThreshold is the unaggregated
// attestation production deadline within a slot.
func NewWallclockSlotClock(genesis time.Time, secondsPerSlot time.Duration, slotsPerEpoch uint64, lateThreshold time.Duration) *WallclockSlotClock {
	return &WallclockSlotClock{
		wallclock:     ethwallclock.NewEthereumBeaconChain(genesis, secondsPerSlot, slotsPerEpoch),
		lateThreshold: lateThreshold,
	}
}

func (c *WallclockSlotClock) SlotStart(slot phase0.Slot) time.Time {
	s := c.wallclock.Slots().FromNumber(uint64(slot))

	return s.TimeWindow().Start()
}

func (c *WallclockSlotClock) LateThreshold() time.Duration {
	return c.lateThreshold
}

var _ SlotClock = (*WallclockSlotClock)(nil)
