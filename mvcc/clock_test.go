package mvcc

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
)

func TestHybridClockMonotonic(t *testing.T) {
	sim := new(mclock.Simulated)
	c := NewHybridClock(sim)

	prev := c.Now()
	for i := 0; i < 100; i++ {
		next := c.Now()
		if next <= prev {
			t.Fatalf("clock not strictly increasing: %d then %d", prev, next)
		}
		prev = next
	}
}

func TestHybridClockAdvancesWithUnderlyingTime(t *testing.T) {
	sim := new(mclock.Simulated)
	c := NewHybridClock(sim)

	first := c.Now()
	sim.Run(time.Second)
	second := c.Now()
	if second <= first {
		t.Fatalf("expected clock to advance past simulated time jump, got %d then %d", first, second)
	}
}

func TestHybridClockNowLatestIsStrictlyIncreasing(t *testing.T) {
	sim := new(mclock.Simulated)
	c := NewHybridClock(sim)
	a := c.Now()
	b := c.NowLatest()
	if b <= a {
		t.Fatalf("NowLatest() = %d, want > Now() = %d", b, a)
	}
}

func TestHybridClockIsPast(t *testing.T) {
	sim := new(mclock.Simulated)
	c := NewHybridClock(sim)

	ts := c.Now()
	if c.IsPast(ts) {
		t.Fatal("a just-issued timestamp should not yet be past")
	}
	c.Now()
	if !c.IsPast(ts) {
		t.Fatal("a later issuance should make the earlier timestamp past")
	}
}
