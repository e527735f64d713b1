package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallclockSlotClock_SlotStart(t *testing.T) {
	genesis := time.Date(2020, 12, 1, 12, 0, 23, 0, time.UTC)
	clock := NewWallclockSlotClock(genesis, 12*time.Second, 32, 2*time.Second)

	assert.Equal(t, genesis, clock.SlotStart(0))
	assert.Equal(t, genesis.Add(12*time.Second), clock.SlotStart(1))
	assert.Equal(t, genesis.Add(10*12*time.Second), clock.SlotStart(10))
}

func TestWallclockSlotClock_LateThreshold(t *testing.T) {
	genesis := time.Now()

	clock := NewWallclockSlotClock(genesis, 12*time.Second, 32, 4*time.Second)
	assert.Equal(t, 4*time.Second, clock.LateThreshold())

	// A zero threshold disables lateness classification downstream.
	disabled := NewWallclockSlotClock(genesis, 12*time.Second, 32, 0)
	assert.Equal(t, time.Duration(0), disabled.LateThreshold())
}
