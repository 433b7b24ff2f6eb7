package mvcc

// ScopedTransaction ties a single assigned timestamp to the lifetime
// of one write operation. Go has no destructors, so callers must call
// Close explicitly — typically via defer — in place of the original
// coordinator's scope-exit commit. There is no abort/rollback: a
// ScopedTransaction that starts is always expected to commit when
// closed, matching the coordinator it wraps.
type ScopedTransaction struct {
	mgr  *Manager
	ts   Timestamp
	done bool
}

// NewScopedTransaction starts a transaction against mgr and wraps its
// timestamp for scope-bound completion. If mgr's clock cannot issue a
// timestamp, the returned ScopedTransaction is inert: Timestamp
// returns InvalidTimestamp and Close is a no-op.
func NewScopedTransaction(mgr *Manager) *ScopedTransaction {
	ts := mgr.StartTransaction()
	return &ScopedTransaction{mgr: mgr, ts: ts}
}

// NewScopedTransactionAtLatest is like NewScopedTransaction but
// assigns the timestamp via Manager.StartTransactionAtLatest.
func NewScopedTransactionAtLatest(mgr *Manager) *ScopedTransaction {
	ts := mgr.StartTransactionAtLatest()
	return &ScopedTransaction{mgr: mgr, ts: ts}
}

// Timestamp returns the timestamp assigned to this transaction.
func (s *ScopedTransaction) Timestamp() Timestamp {
	return s.ts
}

// Commit commits the transaction now. It is idempotent, and a later
// Close is then a no-op.
func (s *ScopedTransaction) Commit() {
	s.Close()
}

// Close commits the transaction. Close is idempotent and safe to
// defer unconditionally.
func (s *ScopedTransaction) Close() {
	if s.done || !s.ts.IsValid() {
		return
	}
	s.done = true
	s.mgr.CommitTransaction(s.ts)
}
