package cfile

import "fmt"

// BlockReader reads a previously-written index block back from the
// underlying CFile via the block cache, given its pointer. The
// returned handle is owned by the caller (the iterator's cursor
// stack), which must Release it once done.
type BlockReader interface {
	ReadBlock(ptr BlockPointer) (*BlockHandle, error)
}

// seekedIndex is one level of the descent stack: the cache handle
// keeping that level's block bytes alive, a reader view over it, and
// the cursor currently positioned within it. The handle is released
// when this entry is evicted from the stack (truncateStack) or the
// iterator is closed.
type seekedIndex struct {
	handle *BlockHandle
	it     *blockIterator
}

// IndexTreeIterator walks a persisted B-tree index in key order,
// loading each level's block through r — and therefore through the
// block cache r wraps — as it descends and advances. An iterator owns
// one cache handle per depth in its cursor stack; Close releases them
// all, and truncateStack releases exactly the handles it evicts.
type IndexTreeIterator struct {
	r     BlockReader
	cmp   Comparator
	root  BlockPointer
	stack []seekedIndex // stack[0] is the root level, last is the leaf
}

// NewIterator constructs an iterator over the tree rooted at root,
// comparing keys with the comparator bound to keyType.
func NewIterator(r BlockReader, keyType KeyType, root BlockPointer) *IndexTreeIterator {
	return &IndexTreeIterator{r: r, cmp: ComparatorFor(keyType), root: root}
}

func (it *IndexTreeIterator) loadBlock(ptr BlockPointer) (*blockReader, *BlockHandle, error) {
	handle, err := it.r.ReadBlock(ptr)
	if err != nil {
		return nil, nil, fmt.Errorf("cfile: read index block: %w", err)
	}
	br, err := parseBlock(handle.Bytes())
	if err != nil {
		handle.Release()
		return nil, nil, err
	}
	return br, handle, nil
}

// Close releases every cache handle still held by the cursor stack.
// Callers that finish using an iterator before it is garbage collected
// should call Close to free those handles promptly.
func (it *IndexTreeIterator) Close() {
	it.truncateStack(0)
}

// SeekToFirst positions the iterator at the smallest key in the tree.
func (it *IndexTreeIterator) SeekToFirst() error {
	it.truncateStack(0)
	ptr := it.root
	for {
		br, handle, err := it.loadBlock(ptr)
		if err != nil {
			return err
		}
		bi := br.iter(it.cmp)
		if err := bi.seekFirst(); err != nil {
			handle.Release()
			return err
		}
		it.stack = append(it.stack, seekedIndex{handle: handle, it: bi})
		if br.isLeaf {
			return nil
		}
		ptr, err = decodeBlockPointer(bi.currentValue())
		if err != nil {
			return err
		}
	}
}

// SeekAtOrBefore positions the iterator at the greatest key <= key.
// Returns ErrNotFound if key precedes every key in the tree.
func (it *IndexTreeIterator) SeekAtOrBefore(key []byte) error {
	it.truncateStack(0)
	return it.seekDownward(it.root, key)
}

func (it *IndexTreeIterator) seekDownward(ptr BlockPointer, key []byte) error {
	br, handle, err := it.loadBlock(ptr)
	if err != nil {
		return err
	}
	bi := br.iter(it.cmp)
	if err := bi.seekAtOrBefore(key); err != nil {
		handle.Release()
		return err
	}
	it.stack = append(it.stack, seekedIndex{handle: handle, it: bi})
	if br.isLeaf {
		return nil
	}
	childPtr, err := decodeBlockPointer(bi.currentValue())
	if err != nil {
		return err
	}
	return it.seekDownward(childPtr, key)
}

// HasNext reports whether Next would succeed.
func (it *IndexTreeIterator) HasNext() bool {
	if len(it.stack) == 0 {
		return false
	}
	if it.bottomIter().hasNext() {
		return true
	}
	for i := len(it.stack) - 2; i >= 0; i-- {
		if it.stack[i].it.hasNext() {
			return true
		}
	}
	return false
}

// Next advances the iterator to the next key in ascending order.
func (it *IndexTreeIterator) Next() error {
	if len(it.stack) == 0 {
		return ErrNotFound
	}
	if it.bottomIter().hasNext() {
		return it.bottomIter().next()
	}

	// Pop ancestor levels until one can itself advance, then
	// re-descend leftmost from there to reach the next leaf.
	i := len(it.stack) - 2
	for i >= 0 && !it.stack[i].it.hasNext() {
		i--
	}
	if i < 0 {
		return ErrNotFound
	}
	if err := it.stack[i].it.next(); err != nil {
		return err
	}
	it.truncateStack(i + 1)

	ptr, err := decodeBlockPointer(it.stack[i].it.currentValue())
	if err != nil {
		return err
	}
	for {
		br, handle, err := it.loadBlock(ptr)
		if err != nil {
			return err
		}
		bi := br.iter(it.cmp)
		if err := bi.seekFirst(); err != nil {
			handle.Release()
			return err
		}
		it.stack = append(it.stack, seekedIndex{handle: handle, it: bi})
		if br.isLeaf {
			return nil
		}
		ptr, err = decodeBlockPointer(bi.currentValue())
		if err != nil {
			return err
		}
	}
}

// truncateStack releases the cache handles of every depth at or past
// n before discarding those stack entries, per the requirement that a
// handle is released exactly when its depth entry is evicted from the
// cursor stack.
func (it *IndexTreeIterator) truncateStack(n int) {
	for i := n; i < len(it.stack); i++ {
		it.stack[i].handle.Release()
	}
	it.stack = it.stack[:n]
}

func (it *IndexTreeIterator) bottomIter() *blockIterator {
	return it.stack[len(it.stack)-1].it
}

// GetCurrentKey returns the key at the iterator's current position.
func (it *IndexTreeIterator) GetCurrentKey() []byte {
	return it.bottomIter().currentKey()
}

// GetCurrentBlockPointer decodes the value at the iterator's current
// leaf position as a BlockPointer into the data (non-index) blocks.
func (it *IndexTreeIterator) GetCurrentBlockPointer() (BlockPointer, error) {
	return decodeBlockPointer(it.bottomIter().currentValue())
}
