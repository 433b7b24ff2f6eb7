package cfile

import (
	"fmt"
	"testing"
)

func buildMultiLevelTree(t *testing.T, n int) (BlockReader, BTreeInfo) {
	t.Helper()
	store := &memBlockStore{}
	b := NewIndexTreeBuilder(store, BuilderOptions{TargetBlockSize: 40})
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%04d", i*2)) // even keys only, gaps for SeekAtOrBefore
		if err := b.Append(key, encodeBlockPointer(BlockPointer{Offset: uint64(i), Size: 10})); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
	info, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return NewCachingBlockReader(store, NewBlockCache(1<<20), 1), info
}

func TestIndexTreeIteratorSeekAtOrBefore(t *testing.T) {
	store, info := buildMultiLevelTree(t, 60)

	it := NewIterator(store, ByteArrayKeyType, info.Root)
	defer it.Close()
	if err := it.SeekAtOrBefore([]byte("key-0000")); err != nil {
		t.Fatalf("seek exact first key: %v", err)
	}
	if got := string(it.GetCurrentKey()); got != "key-0000" {
		t.Fatalf("key = %q, want key-0000", got)
	}

	// Seeking to an odd key (never inserted) lands on the even key below it.
	if err := it.SeekAtOrBefore([]byte("key-0051")); err != nil {
		t.Fatalf("seek between keys: %v", err)
	}
	if got := string(it.GetCurrentKey()); got != "key-0050" {
		t.Fatalf("key = %q, want key-0050", got)
	}

	// Seeking before the first key is an error.
	if err := it.SeekAtOrBefore([]byte("aaaa")); err == nil {
		t.Fatal("seek before first key: want error, got nil")
	}
}

func TestIndexTreeIteratorNextPastLevelBoundary(t *testing.T) {
	store, info := buildMultiLevelTree(t, 60)

	it := NewIterator(store, ByteArrayKeyType, info.Root)
	defer it.Close()
	if err := it.SeekToFirst(); err != nil {
		t.Fatalf("SeekToFirst: %v", err)
	}

	var keys []string
	for {
		keys = append(keys, string(it.GetCurrentKey()))
		if !it.HasNext() {
			break
		}
		if err := it.Next(); err != nil {
			t.Fatalf("Next after %d keys: %v", len(keys), err)
		}
	}
	if len(keys) != 60 {
		t.Fatalf("got %d keys, want 60", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			t.Fatalf("keys[%d]=%q not greater than keys[%d]=%q", i, keys[i], i-1, keys[i-1])
		}
	}
}

func TestIndexTreeIteratorCurrentBlockPointer(t *testing.T) {
	store, info := buildMultiLevelTree(t, 10)
	it := NewIterator(store, ByteArrayKeyType, info.Root)
	defer it.Close()
	if err := it.SeekToFirst(); err != nil {
		t.Fatal(err)
	}
	ptr, err := it.GetCurrentBlockPointer()
	if err != nil {
		t.Fatalf("GetCurrentBlockPointer: %v", err)
	}
	if ptr.Offset != 0 || ptr.Size != 10 {
		t.Fatalf("ptr = %+v, want {Offset:0 Size:10}", ptr)
	}
}
