package cfile

import (
	"bytes"
	"encoding/binary"
)

// Comparator imposes the total order keys within a block (and across
// the tree) are sorted by. The iterator is bound to one at creation
// time, per the key type tag recorded in the CFile footer.
type Comparator func(a, b []byte) int

// KeyType selects a Comparator for IndexTreeIterator.
type KeyType int

const (
	// ByteArrayKeyType compares keys as opaque byte-lexicographic strings.
	ByteArrayKeyType KeyType = iota
	// Uint32KeyType compares keys as fixed-width little-endian uint32s.
	Uint32KeyType
	// Uint64KeyType compares keys as fixed-width little-endian uint64s.
	Uint64KeyType
)

// ComparatorFor returns the Comparator bound to a key type tag.
func ComparatorFor(t KeyType) Comparator {
	switch t {
	case Uint32KeyType:
		return compareFixedUint32
	case Uint64KeyType:
		return compareFixedUint64
	default:
		return bytes.Compare
	}
}

func compareFixedUint32(a, b []byte) int {
	av, bv := binary.LittleEndian.Uint32(a), binary.LittleEndian.Uint32(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func compareFixedUint64(a, b []byte) int {
	av, bv := binary.LittleEndian.Uint64(a), binary.LittleEndian.Uint64(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}
