package cfile

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// wireEntry and blockWire are the on-disk shape of one index block.
// Both builder and reader sides are generic over (key, value) byte
// pairs; the caller (IndexTreeBuilder/IndexTreeIterator) is the only
// place that knows values are encoded BlockPointers.
type wireEntry struct {
	Key   []byte
	Value []byte
}

type blockWire struct {
	IsLeaf  bool
	Entries []wireEntry
}

// entryOverhead is a conservative per-entry accounting fudge so
// isFull() trips a little before the RLP-encoded size would actually
// exceed the target, mirroring the target-size-is-a-hint contract
// external writers configure.
const entryOverhead = 8

// blockBuilder accumulates one in-progress index block (leaf or
// internal) in sorted order. Callers are responsible for appending in
// non-decreasing key order; the builder does not re-sort.
type blockBuilder struct {
	isLeaf     bool
	entries    []wireEntry
	size       int
	targetSize int
}

func newBlockBuilder(isLeaf bool, targetSize int) *blockBuilder {
	return &blockBuilder{isLeaf: isLeaf, targetSize: targetSize}
}

func (b *blockBuilder) add(key, value []byte) {
	b.entries = append(b.entries, wireEntry{
		Key:   common.CopyBytes(key),
		Value: common.CopyBytes(value),
	})
	b.size += len(key) + len(value) + entryOverhead
}

func (b *blockBuilder) isFull() bool {
	return b.targetSize > 0 && b.size >= b.targetSize
}

func (b *blockBuilder) empty() bool {
	return len(b.entries) == 0
}

func (b *blockBuilder) numEntries() int {
	return len(b.entries)
}

// firstKey is the promoted key: the minimum key in the block, per the
// builder's sorted-append contract. Returns nil for an empty block
// (only possible for a leaf that never received an Append, which has
// no key to promote to a parent anyway).
func (b *blockBuilder) firstKey() []byte {
	if len(b.entries) == 0 {
		return nil
	}
	return b.entries[0].Key
}

func (b *blockBuilder) finish() ([]byte, error) {
	wire := blockWire{IsLeaf: b.isLeaf, Entries: b.entries}
	data, err := rlp.EncodeToBytes(&wire)
	if err != nil {
		return nil, fmt.Errorf("cfile: encode index block: %w", err)
	}
	return data, nil
}

// blockReader is a parsed, read-only view of one on-disk index block.
type blockReader struct {
	isLeaf  bool
	entries []wireEntry
}

func parseBlock(data []byte) (*blockReader, error) {
	var wire blockWire
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	return &blockReader{isLeaf: wire.IsLeaf, entries: wire.Entries}, nil
}

func (r *blockReader) iter(cmp Comparator) *blockIterator {
	return &blockIterator{r: r, cmp: cmp, pos: -1}
}

// blockIterator is an intra-block cursor positioned at one entry.
type blockIterator struct {
	r   *blockReader
	cmp Comparator
	pos int
}

func (it *blockIterator) seekFirst() error {
	if len(it.r.entries) == 0 {
		return ErrNotFound
	}
	it.pos = 0
	return nil
}

// seekAtOrBefore positions at the entry with the greatest key <= key,
// assuming entries are sorted ascending. Returns ErrNotFound if key
// precedes every entry's key.
func (it *blockIterator) seekAtOrBefore(key []byte) error {
	entries := it.r.entries
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if it.cmp(entries[mid].Key, key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return ErrNotFound
	}
	it.pos = lo - 1
	return nil
}

func (it *blockIterator) hasNext() bool {
	return it.pos >= 0 && it.pos+1 < len(it.r.entries)
}

func (it *blockIterator) next() error {
	if !it.hasNext() {
		return ErrNotFound
	}
	it.pos++
	return nil
}

func (it *blockIterator) currentKey() []byte {
	return it.r.entries[it.pos].Key
}

func (it *blockIterator) currentValue() []byte {
	return it.r.entries[it.pos].Value
}
