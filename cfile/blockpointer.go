package cfile

import (
	"encoding/binary"
	"fmt"
)

// BlockPointer locates a block within a CFile: a byte offset and a
// length. It is opaque outside this package other than for encoding.
type BlockPointer struct {
	Offset uint64
	Size   uint32
}

const blockPointerEncodedLen = 8 + 4

func encodeBlockPointer(p BlockPointer) []byte {
	buf := make([]byte, blockPointerEncodedLen)
	binary.BigEndian.PutUint64(buf[:8], p.Offset)
	binary.BigEndian.PutUint32(buf[8:], p.Size)
	return buf
}

func decodeBlockPointer(b []byte) (BlockPointer, error) {
	if len(b) != blockPointerEncodedLen {
		return BlockPointer{}, fmt.Errorf("%w: block pointer has length %d, want %d", ErrCorruption, len(b), blockPointerEncodedLen)
	}
	return BlockPointer{
		Offset: binary.BigEndian.Uint64(b[:8]),
		Size:   binary.BigEndian.Uint32(b[8:]),
	}, nil
}

// BTreeInfo is emitted by IndexTreeBuilder.Finish: the root of the
// persisted tree plus its depth, destined for the CFile footer.
type BTreeInfo struct {
	Root  BlockPointer
	Depth int
}
