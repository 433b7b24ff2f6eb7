package cfile

import (
	"bytes"
	"fmt"
	"os"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cfile-*.dat")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := NewWriter(f, WriterOptions{})
	var ptrs []BlockPointer
	for i := 0; i < 20; i++ {
		data := []byte(fmt.Sprintf("block payload number %d", i))
		ptr, err := w.WriteBlock(data)
		if err != nil {
			t.Fatalf("WriteBlock(%d): %v", i, err)
		}
		ptrs = append(ptrs, ptr)
	}
	if err := w.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	r := OpenReader(f)
	for i, ptr := range ptrs {
		data, err := r.ReadBlock(ptr)
		if err != nil {
			t.Fatalf("ReadBlock(%d): %v", i, err)
		}
		want := fmt.Sprintf("block payload number %d", i)
		if string(data) != want {
			t.Fatalf("block %d = %q, want %q", i, data, want)
		}
	}
}

func TestWriterCompression(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cfile-*.dat")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := NewWriter(f, WriterOptions{Compress: true})
	highlyCompressible := bytes.Repeat([]byte("abcdefgh"), 256)
	ptr, err := w.WriteBlock(highlyCompressible)
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if ptr.Size >= uint32(len(highlyCompressible)) {
		t.Fatalf("compressed size %d not smaller than input %d", ptr.Size, len(highlyCompressible))
	}

	r := OpenReader(f)
	data, err := r.ReadBlock(ptr)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(data, highlyCompressible) {
		t.Fatal("decompressed data does not match original")
	}
}

func TestBlockCacheGetOrLoad(t *testing.T) {
	cache := NewBlockCache(1 << 20)
	ptr := BlockPointer{Offset: 0, Size: 4}
	loads := 0
	load := func() ([]byte, error) {
		loads++
		return []byte("data"), nil
	}

	h1, err := cache.GetOrLoad(1, ptr, load)
	if err != nil {
		t.Fatal(err)
	}
	defer h1.Release()
	if loads != 1 {
		t.Fatalf("loads = %d after first GetOrLoad, want 1", loads)
	}

	h2, err := cache.GetOrLoad(1, ptr, load)
	if err != nil {
		t.Fatal(err)
	}
	defer h2.Release()
	if loads != 1 {
		t.Fatalf("loads = %d after cached GetOrLoad, want 1 (no reload)", loads)
	}
	if !bytes.Equal(h1.Bytes(), h2.Bytes()) {
		t.Fatal("cached handles disagree on bytes")
	}
}

func TestEndToEndCFileWithCacheAndCompression(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cfile-*.dat")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := NewWriter(f, WriterOptions{Compress: true})
	b := NewIndexTreeBuilder(w, BuilderOptions{TargetBlockSize: 64})
	const n = 100
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("row-%05d", i))
		ptr, err := w.WriteBlock([]byte(fmt.Sprintf("payload-%05d", i)))
		if err != nil {
			t.Fatalf("write leaf data block %d: %v", i, err)
		}
		if err := b.Append(key, encodeBlockPointer(ptr)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
	info, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := w.Sync(); err != nil {
		t.Fatal(err)
	}

	r := OpenReader(f)
	cache := NewBlockCache(1 << 20)
	cachedReader := NewCachingBlockReader(r, cache, 1)

	it := NewIterator(cachedReader, ByteArrayKeyType, info.Root)
	defer it.Close()
	if err := it.SeekAtOrBefore([]byte(fmt.Sprintf("row-%05d", 42))); err != nil {
		t.Fatalf("SeekAtOrBefore: %v", err)
	}
	if got := string(it.GetCurrentKey()); got != "row-00042" {
		t.Fatalf("key = %q, want row-00042", got)
	}
	ptr, err := it.GetCurrentBlockPointer()
	if err != nil {
		t.Fatalf("GetCurrentBlockPointer: %v", err)
	}
	data, err := r.ReadBlock(ptr)
	if err != nil {
		t.Fatalf("ReadBlock data: %v", err)
	}
	if string(data) != "payload-00042" {
		t.Fatalf("data = %q, want payload-00042", data)
	}
}
