package mvcc

import "github.com/ethereum/go-ethereum/metrics"

var (
	txnStartedCounter   = metrics.NewRegisteredCounter("mvcc/txn/started", nil)
	txnCommittedCounter = metrics.NewRegisteredCounter("mvcc/txn/committed", nil)
	inFlightGauge       = metrics.NewRegisteredGauge("mvcc/txn/inflight", nil)
)
