package mvcc

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/mclock"
)

// Clock is the monotonic timestamp source the coordinator assigns
// transaction IDs from.
type Clock interface {
	// Now issues a new timestamp guaranteed strictly greater than
	// every previously issued one.
	Now() Timestamp
	// NowLatest returns the upper bound of the clock's uncertainty
	// window around the current time (now + max error), or
	// InvalidTimestamp if the clock cannot currently bound that
	// window (e.g. not yet synchronized).
	NowLatest() Timestamp
	// IsPast reports whether ts is no longer within the clock's
	// uncertainty window, i.e. is safely in the past.
	IsPast(ts Timestamp) bool
}

// HybridClock issues monotonically increasing logical timestamps
// anchored to a physical time source, following the same pattern
// go-ethereum's mclock.Clock uses to abstract wall-clock reads behind
// a seam tests can substitute with mclock.Simulated. Timestamps here
// are a plain logical counter derived from mclock readings rather
// than an encoding of physical time, since the coordinator only needs
// total order, not wall-clock recoverability. HybridClock models no
// uncertainty window: NowLatest equals Now, and IsPast is simply "has
// a later timestamp already been issued".
type HybridClock struct {
	mc   mclock.Clock
	last atomic.Uint64
}

// NewHybridClock constructs a clock backed by mc. Pass mclock.System{}
// in production and an *mclock.Simulated in tests.
func NewHybridClock(mc mclock.Clock) *HybridClock {
	return &HybridClock{mc: mc}
}

// Now issues a new timestamp derived from the underlying mclock
// reading, bumped forward if necessary to remain strictly greater
// than every previously issued timestamp (guards against two calls
// landing in the same physical-clock tick).
func (c *HybridClock) Now() Timestamp {
	phys := uint64(c.mc.Now())
	for {
		prev := c.last.Load()
		next := phys
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return Timestamp(next)
		}
	}
}

// NowLatest models zero clock uncertainty: it is simply Now.
func (c *HybridClock) NowLatest() Timestamp {
	return c.Now()
}

// IsPast reports whether ts was issued strictly before the most
// recently issued timestamp, i.e. some later event is already known
// to have happened.
func (c *HybridClock) IsPast(ts Timestamp) bool {
	return uint64(ts) < c.last.Load()
}
