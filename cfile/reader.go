package cfile

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/snappy"
)

// Reader reads blocks previously written by Writer back out of a flat
// file by absolute (offset, size). It implements RawBlockReader;
// IndexTreeIterator reads it through a CachingBlockReader.
type Reader struct {
	f *os.File
}

// OpenReader opens f for reading blocks. The caller owns f and must
// Close it separately.
func OpenReader(f *os.File) *Reader {
	return &Reader{f: f}
}

// ReadBlock reads and decompresses (if necessary) the block at ptr.
func (r *Reader) ReadBlock(ptr BlockPointer) ([]byte, error) {
	defer func(start time.Time) { blockReadTimer.UpdateSince(start) }(time.Now())

	if ptr.Size == 0 {
		return nil, fmt.Errorf("%w: zero-size block pointer", ErrCorruption)
	}
	buf := make([]byte, ptr.Size)
	if _, err := r.f.ReadAt(buf, int64(ptr.Offset)); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: short read at offset %d", ErrCorruption, ptr.Offset)
		}
		return nil, fmt.Errorf("cfile: read block at offset %d: %w", ptr.Offset, err)
	}

	flag, payload := buf[0], buf[1:]
	switch flag {
	case blockFlagPlain:
		return payload, nil
	case blockFlagCompressed:
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: snappy decode: %v", ErrCorruption, err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: unknown block flag %d", ErrCorruption, flag)
	}
}
