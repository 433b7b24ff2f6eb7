package cfile

import (
	"bytes"
	"testing"
)

func TestBlockBuilderRoundTrip(t *testing.T) {
	bb := newBlockBuilder(true, 0)
	bb.add([]byte("alice"), []byte("1"))
	bb.add([]byte("bob"), []byte("2"))
	bb.add([]byte("carol"), []byte("3"))

	if got, want := bb.firstKey(), []byte("alice"); !bytes.Equal(got, want) {
		t.Fatalf("firstKey() = %q, want %q", got, want)
	}
	if bb.numEntries() != 3 {
		t.Fatalf("numEntries() = %d, want 3", bb.numEntries())
	}

	data, err := bb.finish()
	if err != nil {
		t.Fatalf("finish(): %v", err)
	}

	br, err := parseBlock(data)
	if err != nil {
		t.Fatalf("parseBlock(): %v", err)
	}
	if !br.isLeaf {
		t.Fatalf("isLeaf = false, want true")
	}
	if len(br.entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(br.entries))
	}
}

func TestBlockBuilderMutationIsolated(t *testing.T) {
	bb := newBlockBuilder(true, 0)
	key := []byte("alice")
	bb.add(key, []byte("1"))
	key[0] = 'z'

	if got := bb.firstKey(); got[0] == 'z' {
		t.Fatalf("blockBuilder.add did not copy key: mutation leaked in")
	}
}

func TestBlockIteratorSeekAtOrBefore(t *testing.T) {
	bb := newBlockBuilder(true, 0)
	bb.add([]byte("b"), []byte("1"))
	bb.add([]byte("d"), []byte("2"))
	bb.add([]byte("f"), []byte("3"))
	data, err := bb.finish()
	if err != nil {
		t.Fatal(err)
	}
	br, err := parseBlock(data)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		seek    string
		wantErr bool
		wantKey string
	}{
		{"a", true, ""},
		{"b", false, "b"},
		{"c", false, "b"},
		{"d", false, "d"},
		{"e", false, "d"},
		{"f", false, "f"},
		{"z", false, "f"},
	}
	for _, tc := range cases {
		it := br.iter(bytes.Compare)
		err := it.seekAtOrBefore([]byte(tc.seek))
		if tc.wantErr {
			if err == nil {
				t.Errorf("seekAtOrBefore(%q): want error, got none", tc.seek)
			}
			continue
		}
		if err != nil {
			t.Errorf("seekAtOrBefore(%q): %v", tc.seek, err)
			continue
		}
		if got := string(it.currentKey()); got != tc.wantKey {
			t.Errorf("seekAtOrBefore(%q) -> key %q, want %q", tc.seek, got, tc.wantKey)
		}
	}
}

func TestBlockIteratorNext(t *testing.T) {
	bb := newBlockBuilder(true, 0)
	bb.add([]byte("a"), []byte("1"))
	bb.add([]byte("b"), []byte("2"))
	data, err := bb.finish()
	if err != nil {
		t.Fatal(err)
	}
	br, err := parseBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	it := br.iter(bytes.Compare)
	if err := it.seekFirst(); err != nil {
		t.Fatal(err)
	}
	if !it.hasNext() {
		t.Fatal("hasNext() = false after first entry, want true")
	}
	if err := it.next(); err != nil {
		t.Fatal(err)
	}
	if it.hasNext() {
		t.Fatal("hasNext() = true at last entry, want false")
	}
	if err := it.next(); err == nil {
		t.Fatal("next() past end: want error, got nil")
	}
}
