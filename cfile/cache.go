package cfile

import (
	"encoding/binary"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
)

// BlockHandle is a refcounted view of a cached block's bytes. Callers
// must call Release when done; the backing buffer is only safe to
// retain until Release, after which the cache may evict and reuse it.
type BlockHandle struct {
	data  []byte
	cache *BlockCache
	key   string
}

// Bytes returns the cached block's encoded bytes.
func (h *BlockHandle) Bytes() []byte { return h.data }

// Release drops this handle's reference. It is safe to call Release
// more than once.
func (h *BlockHandle) Release() {
	if h.cache == nil {
		return
	}
	h.cache.release(h.key)
	h.cache = nil
}

// BlockCache is a process-wide cache of decoded index and data blocks,
// keyed by (file id, block pointer). It wraps fastcache.Cache, adding
// a thin refcount layer since fastcache itself has no notion of
// pinning an entry against concurrent eviction of its backing bytes.
type BlockCache struct {
	mu    sync.Mutex
	cache *fastcache.Cache
	refs  map[string]int32
	pins  map[string][]byte
}

// NewBlockCache creates a cache sized to approximately maxBytes.
func NewBlockCache(maxBytes int) *BlockCache {
	return &BlockCache{
		cache: fastcache.New(maxBytes),
		refs:  make(map[string]int32),
		pins:  make(map[string][]byte),
	}
}

func cacheKey(fileID uint64, ptr BlockPointer) []byte {
	buf := make([]byte, 8+blockPointerEncodedLen)
	binary.BigEndian.PutUint64(buf[:8], fileID)
	copy(buf[8:], encodeBlockPointer(ptr))
	return buf
}

// GetOrLoad returns a handle to the cached bytes for (fileID, ptr),
// calling load to populate the cache on a miss. The returned handle
// must be released by the caller.
func (c *BlockCache) GetOrLoad(fileID uint64, ptr BlockPointer, load func() ([]byte, error)) (*BlockHandle, error) {
	key := cacheKey(fileID, ptr)
	keyStr := string(key)

	c.mu.Lock()
	if data, ok := c.pins[keyStr]; ok {
		c.refs[keyStr]++
		c.mu.Unlock()
		blockCacheHits.Inc(1)
		return &BlockHandle{data: data, cache: c, key: keyStr}, nil
	}
	c.mu.Unlock()

	if data := c.cache.Get(nil, key); data != nil {
		blockCacheHits.Inc(1)
		return c.pin(keyStr, data), nil
	}

	blockCacheMisses.Inc(1)
	data, err := load()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, data)
	return c.pin(keyStr, data), nil
}

func (c *BlockCache) pin(keyStr string, data []byte) *BlockHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pins[keyStr] = data
	c.refs[keyStr]++
	return &BlockHandle{data: data, cache: c, key: keyStr}
}

func (c *BlockCache) release(keyStr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs[keyStr]--
	if c.refs[keyStr] <= 0 {
		delete(c.refs, keyStr)
		delete(c.pins, keyStr)
	}
}

// Reset drops all cached and pinned entries.
func (c *BlockCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Reset()
	c.refs = make(map[string]int32)
	c.pins = make(map[string][]byte)
}

// RawBlockReader is the low-level source of encoded block bytes that
// sits behind a BlockCache — typically a Reader reading straight off
// disk. Reader and the in-memory test fakes both satisfy this.
type RawBlockReader interface {
	ReadBlock(ptr BlockPointer) ([]byte, error)
}

// CachingBlockReader adapts a RawBlockReader plus a BlockCache to the
// BlockReader interface IndexTreeIterator consumes, so every block
// the iterator loads is fetched "via the block cache": a hit returns
// the already-decoded bytes, a miss faults in through raw and
// populates the cache for the next iterator to reuse.
type CachingBlockReader struct {
	raw    RawBlockReader
	cache  *BlockCache
	fileID uint64
}

// NewCachingBlockReader constructs a cache-backed reader for the file
// identified by fileID (distinguishing blocks from different CFiles
// sharing one process-wide BlockCache).
func NewCachingBlockReader(raw RawBlockReader, cache *BlockCache, fileID uint64) *CachingBlockReader {
	return &CachingBlockReader{raw: raw, cache: cache, fileID: fileID}
}

// ReadBlock returns a refcounted handle to ptr's decoded bytes. The
// caller (the iterator's cursor stack) owns the handle and must
// Release it once the corresponding depth is evicted or the iterator
// is closed.
func (c *CachingBlockReader) ReadBlock(ptr BlockPointer) (*BlockHandle, error) {
	return c.cache.GetOrLoad(c.fileID, ptr, func() ([]byte, error) {
		return c.raw.ReadBlock(ptr)
	})
}
