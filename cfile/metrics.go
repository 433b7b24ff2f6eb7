package cfile

import "github.com/ethereum/go-ethereum/metrics"

var (
	blockWriteTimer  = metrics.NewRegisteredTimer("cfile/block/write", nil)
	blockReadTimer   = metrics.NewRegisteredTimer("cfile/block/read", nil)
	blockCacheHits   = metrics.NewRegisteredCounter("cfile/blockcache/hits", nil)
	blockCacheMisses = metrics.NewRegisteredCounter("cfile/blockcache/misses", nil)
	treeDepthGauge   = metrics.NewRegisteredGauge("cfile/tree/depth", nil)
)
