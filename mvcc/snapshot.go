package mvcc

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable point-in-time view of which timestamps
// have committed. It is represented densely below a cutoff
// (allCommittedBefore: everything strictly below it is committed,
// nothing at or above it is) plus a sparse exception set recording
// timestamps at or above the cutoff that committed early, out of
// order. This mirrors the original coordinator's snapshot exactly: it
// carries only these two fields, nothing else.
type Snapshot struct {
	allCommittedBefore Timestamp
	committed          map[Timestamp]struct{}
}

// NewSnapshotIncludingNoTransactions returns the empty snapshot: no
// timestamp, however small, is considered committed. This is the
// snapshot a brand new coordinator would hand out before anything has
// ever committed.
func NewSnapshotIncludingNoTransactions() Snapshot {
	return Snapshot{allCommittedBefore: 0}
}

// NewSnapshotIncludingAllTransactions returns a snapshot under which
// every possible timestamp is considered committed, useful for
// unguarded reads that want to see everything regardless of the
// coordinator's actual state.
func NewSnapshotIncludingAllTransactions() Snapshot {
	return Snapshot{allCommittedBefore: InvalidTimestamp}
}

// NewSnapshotAtTimestamp returns a clean snapshot (IsClean reports
// true) whose cutoff sits exactly at t: every timestamp strictly below
// t is committed, nothing at or above it is.
func NewSnapshotAtTimestamp(t Timestamp) Snapshot {
	return Snapshot{allCommittedBefore: t}
}

// IsCommitted reports whether ts is visible under this snapshot.
func (s Snapshot) IsCommitted(ts Timestamp) bool {
	if ts < s.allCommittedBefore {
		return true
	}
	_, ok := s.committed[ts]
	return ok
}

// MayHaveCommittedAtOrAfter is a conservative (false-positive-only)
// check: it reports whether some timestamp at or after ts could
// possibly be committed under this snapshot. It never returns a false
// negative.
func (s Snapshot) MayHaveCommittedAtOrAfter(ts Timestamp) bool {
	if s.allCommittedBefore > ts {
		return true
	}
	for committedTs := range s.committed {
		if committedTs >= ts {
			return true
		}
	}
	return false
}

// MayHaveUncommittedAtOrBefore is a conservative (false-positive-only)
// check: it reports whether some timestamp at or before ts could
// possibly still be uncommitted under this snapshot. Because the
// coordinator's commit-time collapse (see Manager) maintains the
// invariant that the exception set only ever holds timestamps at or
// above the cutoff, this reduces to a single comparison: nothing below
// the cutoff can be uncommitted, and the cutoff position itself is
// never committed — once that position committed, the collapse would
// have advanced past it.
func (s Snapshot) MayHaveUncommittedAtOrBefore(ts Timestamp) bool {
	return ts >= s.allCommittedBefore
}

// IsClean reports whether this snapshot has no out-of-order exceptions
// above its cutoff, i.e. it is exactly equivalent to
// NewSnapshotAtTimestamp(cutoff).
func (s Snapshot) IsClean() bool {
	return len(s.committed) == 0
}

// String renders a deterministic debug form: the cutoff followed by
// the sorted exception set, if any.
func (s Snapshot) String() string {
	if len(s.committed) == 0 {
		return fmt.Sprintf("MvccSnapshot[committed={T|T < %s}]", s.allCommittedBefore)
	}
	extra := make([]Timestamp, 0, len(s.committed))
	for ts := range s.committed {
		extra = append(extra, ts)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	parts := make([]string, len(extra))
	for i, ts := range extra {
		parts[i] = ts.String()
	}
	return fmt.Sprintf("MvccSnapshot[committed={T|T < %s or T in {%s}}]", s.allCommittedBefore, strings.Join(parts, ","))
}

// Clone returns an independent copy whose exception set can be
// mutated without affecting s.
func (s Snapshot) Clone() Snapshot {
	clone := Snapshot{allCommittedBefore: s.allCommittedBefore}
	if len(s.committed) > 0 {
		clone.committed = make(map[Timestamp]struct{}, len(s.committed))
		for ts := range s.committed {
			clone.committed[ts] = struct{}{}
		}
	}
	return clone
}
