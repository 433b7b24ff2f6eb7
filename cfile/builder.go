package cfile

import "fmt"

// BlockWriter is the append-only sink IndexTreeBuilder writes finished
// blocks to. Writer implements this for real CFiles; tests can supply
// an in-memory fake.
type BlockWriter interface {
	WriteBlock(data []byte) (BlockPointer, error)
}

// BuilderOptions configures IndexTreeBuilder.
type BuilderOptions struct {
	// TargetBlockSize is the approximate encoded size, in bytes, a
	// block is allowed to grow to before it is flushed and a new one
	// started. Zero means unbounded (single block per level).
	TargetBlockSize int
}

// IndexTreeBuilder builds a B-tree index bottom-up, leaf entries first,
// as the caller supplies them in ascending key order. Each level is
// represented by at most one in-progress blockBuilder at a time; when
// a level's current block fills, it is flushed to the underlying
// BlockWriter and its first key is promoted as one entry of the level
// above.
type IndexTreeBuilder struct {
	w      BlockWriter
	opts   BuilderOptions
	levels []*blockBuilder // levels[0] is the leaf level
}

// NewIndexTreeBuilder constructs a builder that writes finished blocks
// through w.
func NewIndexTreeBuilder(w BlockWriter, opts BuilderOptions) *IndexTreeBuilder {
	b := &IndexTreeBuilder{w: w, opts: opts}
	b.levels = append(b.levels, newBlockBuilder(true, opts.TargetBlockSize))
	return b
}

// Append adds one leaf entry (key, value). Keys must be supplied in
// ascending order; the builder does not validate this.
func (b *IndexTreeBuilder) Append(key, value []byte) error {
	return b.appendAt(0, key, value)
}

// appendAt adds (key, value) to the block building level, flushing
// and promoting upward first if that level's current block is full.
func (b *IndexTreeBuilder) appendAt(level int, key, value []byte) error {
	if level >= len(b.levels) {
		b.levels = append(b.levels, newBlockBuilder(false, b.opts.TargetBlockSize))
	}
	bb := b.levels[level]
	if bb.isFull() {
		if err := b.finishBlockAndPropagate(level); err != nil {
			return err
		}
		bb = b.levels[level]
	}
	bb.add(key, value)
	return nil
}

// finishBlockAndPropagate flushes the current block at level to the
// writer and appends a (firstKey, pointer) entry for it into the
// parent level, starting a fresh block at level.
func (b *IndexTreeBuilder) finishBlockAndPropagate(level int) error {
	ptr, firstKey, err := b.finishAndWriteBlock(level)
	if err != nil {
		return err
	}
	b.levels[level] = newBlockBuilder(level == 0, b.opts.TargetBlockSize)
	return b.appendAt(level+1, firstKey, encodeBlockPointer(ptr))
}

// finishAndWriteBlock encodes and writes the current block at level,
// returning its pointer and promoted first key. The caller is
// responsible for resetting levels[level] afterward.
func (b *IndexTreeBuilder) finishAndWriteBlock(level int) (BlockPointer, []byte, error) {
	bb := b.levels[level]
	firstKey := bb.firstKey()
	data, err := bb.finish()
	if err != nil {
		return BlockPointer{}, nil, err
	}
	ptr, err := b.w.WriteBlock(data)
	if err != nil {
		return BlockPointer{}, nil, fmt.Errorf("cfile: write index block: %w", err)
	}
	return ptr, firstKey, nil
}

// Finish flushes every in-progress level and returns the root pointer
// and depth of the completed tree. After Finish, the builder must not
// be used again.
//
// Two edge cases collapse to depth 1: an empty tree (nothing was ever
// appended) and a tree whose single leaf block never filled. In both
// cases the sole leaf block itself is the root; an empty tree's root
// is therefore a single empty leaf block, not an error, and seeking
// into it reports ErrNotFound rather than failing the build.
func (b *IndexTreeBuilder) Finish() (BTreeInfo, error) {
	level := 0
	for {
		// Flush the current level's block. If this was the last
		// outstanding block overall (no parent level has started
		// accumulating, and this block is the only entry that would
		// exist at the level above), this block is the root.
		ptr, firstKey, err := b.finishAndWriteBlock(level)
		if err != nil {
			return BTreeInfo{}, err
		}

		parentExists := level+1 < len(b.levels) && !b.levels[level+1].empty()
		if !parentExists {
			treeDepthGauge.Update(int64(level + 1))
			return BTreeInfo{Root: ptr, Depth: level + 1}, nil
		}

		if err := b.appendAt(level+1, firstKey, encodeBlockPointer(ptr)); err != nil {
			return BTreeInfo{}, err
		}
		level++
	}
}
