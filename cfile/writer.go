package cfile

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/golang/snappy"
)

// WriterOptions configures Writer.
type WriterOptions struct {
	// Compress enables Snappy compression of each block before it is
	// written. The reader detects compression per-block via a leading
	// flag byte, so a single CFile may mix compressed and
	// uncompressed blocks across writer generations.
	Compress bool
}

// Writer appends fixed blocks to a single flat file, handing back the
// (offset, size) BlockPointer of each one written. It implements
// BlockWriter for IndexTreeBuilder and is also used directly to write
// leaf data blocks.
type Writer struct {
	f      *os.File
	opts   WriterOptions
	offset uint64
	log    log.Logger
}

const (
	blockFlagPlain      byte = 0
	blockFlagCompressed byte = 1
)

// NewWriter creates a Writer appending to f, which the caller owns
// and must Close separately.
func NewWriter(f *os.File, opts WriterOptions) *Writer {
	return &Writer{f: f, opts: opts, log: log.New("component", "cfile.Writer")}
}

// WriteBlock appends data as one block and returns its pointer. If
// compression is enabled and shrinks the payload, the stored block is
// Snappy-encoded and tagged accordingly.
func (w *Writer) WriteBlock(data []byte) (BlockPointer, error) {
	defer func(start time.Time) { blockWriteTimer.UpdateSince(start) }(time.Now())

	flag := blockFlagPlain
	payload := data
	if w.opts.Compress {
		compressed := snappy.Encode(nil, data)
		if len(compressed) < len(data) {
			flag = blockFlagCompressed
			payload = compressed
		}
	}

	ptr := BlockPointer{Offset: w.offset, Size: uint32(len(payload) + 1)}
	if _, err := w.f.Write([]byte{flag}); err != nil {
		return BlockPointer{}, fmt.Errorf("cfile: write block flag: %w", err)
	}
	if _, err := w.f.Write(payload); err != nil {
		return BlockPointer{}, fmt.Errorf("cfile: write block payload: %w", err)
	}
	w.offset += uint64(len(payload)) + 1
	w.log.Trace("wrote block", "offset", ptr.Offset, "size", ptr.Size, "compressed", flag == blockFlagCompressed)
	return ptr, nil
}

// Offset reports the current end-of-file write position, i.e. where
// the next WriteBlock call will land.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// Sync flushes the underlying file to stable storage.
func (w *Writer) Sync() error {
	return w.f.Sync()
}
