package mvcc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// waiter is one goroutine blocked in WaitForCleanSnapshotAtTimestamp,
// released via its channel once the coordinator's state makes its
// target timestamp safe to read at. This substitutes the one-shot
// CountDownLatch the original coordinator parks callers on: closing
// ch wakes every waiter registered on it exactly once.
type waiter struct {
	target Timestamp
	ch     chan struct{}
}

// Manager is the tablet-wide MVCC coordinator. It tracks which
// timestamps have committed and hands out point-in-time Snapshots
// that later reads use to decide what's visible. All exported methods
// are safe for concurrent use. There is deliberately no abort path:
// every timestamp StartTransaction or StartTransactionAtLatest hands
// out is expected to eventually reach CommitTransaction.
type Manager struct {
	clock Clock

	mu       sync.Mutex
	curSnap  Snapshot
	inFlight map[Timestamp]struct{}
	waiters  []*waiter

	log log.Logger
}

// NewManager constructs a coordinator with an empty commit history,
// anchored to clock for timestamp assignment.
func NewManager(clock Clock) *Manager {
	return &Manager{
		clock:    clock,
		curSnap:  NewSnapshotIncludingNoTransactions(),
		inFlight: make(map[Timestamp]struct{}),
		log:      log.New("component", "mvcc.Manager"),
	}
}

// StartTransaction issues a new timestamp and registers it as
// in-flight. The caller must eventually call CommitTransaction with
// the returned timestamp exactly once.
func (m *Manager) StartTransaction() Timestamp {
	return m.registerInFlight(m.clock.Now)
}

// StartTransactionAtLatest issues a timestamp at the upper bound of
// the clock's uncertainty window rather than its best estimate of
// now, for callers that need to guarantee their write is ordered
// after every transaction already visible to them even under clock
// skew. It returns InvalidTimestamp if the clock cannot currently
// bound that window.
func (m *Manager) StartTransactionAtLatest() Timestamp {
	return m.registerInFlight(m.clock.NowLatest)
}

// registerInFlight reads a timestamp from issue under the lock, so no
// lower timestamp can be registered after it. With nothing else in
// flight, every timestamp below the new one is committed or will never
// be issued, so the cutoff moves up to it.
func (m *Manager) registerInFlight(issue func() Timestamp) Timestamp {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := issue()
	if !ts.IsValid() {
		return ts
	}
	if len(m.inFlight) == 0 && ts > m.curSnap.allCommittedBefore {
		m.curSnap.allCommittedBefore = ts
		m.curSnap.committed = nil
	}
	m.inFlight[ts] = struct{}{}
	txnStartedCounter.Inc(1)
	inFlightGauge.Update(int64(len(m.inFlight)))
	return ts
}

// CommitTransaction marks ts committed, adjusting the coordinator's
// watermark and waking any waiters it satisfies. It panics if ts was
// never started or was already committed, mirroring the original
// coordinator's assertion that callers never double-commit.
func (m *Manager) CommitTransaction(ts Timestamp) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inFlight[ts]; !ok {
		panic(fmt.Sprintf("mvcc: commit of unknown or already-finished timestamp %s", ts))
	}
	delete(m.inFlight, ts)
	m.adjustCurSnapForCommitLocked(ts)
	m.wakeSatisfiedWaitersLocked()
	txnCommittedCounter.Inc(1)
	inFlightGauge.Update(int64(len(m.inFlight)))
	m.log.Trace("committed transaction", "ts", ts, "allCommittedBefore", m.curSnap.allCommittedBefore)
}

// adjustCurSnapForCommitLocked folds ts into the committed set and,
// if doing so closed a run of consecutive committed holes starting at
// the cutoff, collapses that run into allCommittedBefore. Mirrors the
// two independent steps of the original coordinator's commit path:
// record the commit unconditionally, then separately check whether it
// happened to close the gap at the front of the window.
func (m *Manager) adjustCurSnapForCommitLocked(ts Timestamp) {
	if ts < m.curSnap.allCommittedBefore {
		panic(fmt.Sprintf("mvcc: commit of timestamp %s already below all-committed watermark %s", ts, m.curSnap.allCommittedBefore))
	}

	if m.curSnap.committed == nil {
		m.curSnap.committed = make(map[Timestamp]struct{})
	}
	m.curSnap.committed[ts] = struct{}{}

	if ts != m.curSnap.allCommittedBefore {
		return
	}
	for {
		if _, ok := m.curSnap.committed[m.curSnap.allCommittedBefore]; !ok {
			break
		}
		delete(m.curSnap.committed, m.curSnap.allCommittedBefore)
		m.curSnap.allCommittedBefore++
	}
}

// TakeSnapshot returns a point-in-time copy of the coordinator's
// current commit state.
func (m *Manager) TakeSnapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.curSnap.Clone()
}

// WaitForCleanSnapshotAtTimestamp blocks until every transaction with
// a timestamp <= ts has committed, then returns a clean snapshot
// (IsClean reports true) with its cutoff at ts+1. It has no deadline
// support; callers needing a timeout should race this against their
// own timer goroutine.
func (m *Manager) WaitForCleanSnapshotAtTimestamp(ts Timestamp) Snapshot {
	if !ts.IsValid() {
		panic("mvcc: WaitForCleanSnapshotAtTimestamp called with an invalid timestamp")
	}
	if !m.clock.IsPast(ts) {
		panic(fmt.Sprintf("mvcc: WaitForCleanSnapshotAtTimestamp called with timestamp %s that is not yet in the past", ts))
	}

	m.mu.Lock()
	if !m.hasUnsafeAtOrBeforeLocked(ts) {
		m.mu.Unlock()
		return NewSnapshotAtTimestamp(ts + 1)
	}
	w := &waiter{target: ts, ch: make(chan struct{})}
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	<-w.ch
	return NewSnapshotAtTimestamp(ts + 1)
}

// WaitForCleanSnapshot takes the current timestamp as a barrier and
// waits for every transaction that started before this call to
// commit, then returns a clean snapshot covering exactly them: no
// transaction that starts after this call returns is included.
func (m *Manager) WaitForCleanSnapshot() Snapshot {
	barrier := m.clock.Now()
	if barrier == 0 {
		return NewSnapshotAtTimestamp(0)
	}
	return m.WaitForCleanSnapshotAtTimestamp(barrier - 1)
}

// AreAllTransactionsCommitted reports whether every transaction with
// a timestamp <= ts has committed, i.e. none remain in flight at or
// below ts.
func (m *Manager) AreAllTransactionsCommitted(ts Timestamp) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.hasUnsafeAtOrBeforeLocked(ts)
}

// hasUnsafeAtOrBeforeLocked reports whether some timestamp <= ts is
// still in flight, which is what makes a snapshot bounded at ts unsafe
// to hand out yet.
func (m *Manager) hasUnsafeAtOrBeforeLocked(ts Timestamp) bool {
	for inFlight := range m.inFlight {
		if inFlight <= ts {
			return true
		}
	}
	return false
}

func (m *Manager) wakeSatisfiedWaitersLocked() {
	remaining := m.waiters[:0]
	for _, w := range m.waiters {
		if m.hasUnsafeAtOrBeforeLocked(w.target) {
			remaining = append(remaining, w)
			continue
		}
		close(w.ch)
	}
	m.waiters = remaining
}

// CountTransactionsInFlight returns the number of transactions
// currently started but not yet committed.
func (m *Manager) CountTransactionsInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inFlight)
}

// InFlightTimestamps returns the currently in-flight timestamps in
// ascending order, for diagnostics and tests.
func (m *Manager) InFlightTimestamps() []Timestamp {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Timestamp, 0, len(m.inFlight))
	for ts := range m.inFlight {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
