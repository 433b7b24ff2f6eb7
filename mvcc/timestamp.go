// Package mvcc implements the in-memory multi-version concurrency
// coordinator guarding a tablet's committed-timestamp watermark: the
// cutoff below which every write is guaranteed durable and visible,
// plus the small set of timestamps above it that have committed early
// out of order.
package mvcc

import (
	"fmt"
	"math"
)

// Timestamp is a logical commit time assigned by a Clock. Timestamps
// order totally: earlier writes receive smaller values.
type Timestamp uint64

// InvalidTimestamp is returned by a Clock that cannot currently issue
// timestamps (e.g. not yet elected leader) and is never itself a valid
// argument to Manager operations other than comparisons against it.
const InvalidTimestamp Timestamp = math.MaxUint64

// IsValid reports whether t is a real, assignable timestamp.
func (t Timestamp) IsValid() bool {
	return t != InvalidTimestamp
}

func (t Timestamp) String() string {
	if !t.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%d", uint64(t))
}
