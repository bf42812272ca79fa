package archive

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgo/resource"
)

// countingArchive wraps Memory and counts backend reads.
type countingArchive struct {
	*Memory
	mu    sync.Mutex
	reads int
}

func (c *countingArchive) Open(ctx context.Context, name string) (Blob, error) {
	b, err := c.Memory.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, owner: c}, nil
}

type countingBlob struct {
	Blob
	owner *countingArchive
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.owner.mu.Lock()
	b.owner.reads++
	b.owner.mu.Unlock()
	return b.Blob.ReadAt(ctx, p, off)
}

func (c *countingArchive) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func TestCachingServesRepeatReadsFromCache(t *testing.T) {
	ctx := context.Background()

	backend := &countingArchive{Memory: NewMemory()}
	payload := make([]byte, 10_000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, backend.Put(ctx, "blob", payload))

	cache := NewLRUBlockCache(1<<20, nil)
	caching := NewCaching(backend, cache, 1024)

	b, err := caching.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()

	buf := make([]byte, 3000)
	n, err := b.ReadAt(ctx, buf, 500)
	require.NoError(t, err)
	assert.Equal(t, 3000, n)
	assert.Equal(t, payload[500:3500], buf)

	readsAfterFirst := backend.readCount()
	assert.Greater(t, readsAfterFirst, 0)

	// Same range again: fully cached, no backend reads.
	n, err = b.ReadAt(ctx, buf, 500)
	require.NoError(t, err)
	assert.Equal(t, 3000, n)
	assert.Equal(t, readsAfterFirst, backend.readCount())

	hits, _ := cache.Stats()
	assert.Greater(t, hits, int64(0))
}

func TestCachingCoalescesMissingRuns(t *testing.T) {
	ctx := context.Background()

	backend := &countingArchive{Memory: NewMemory()}
	payload := make([]byte, 8192)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, backend.Put(ctx, "blob", payload))

	caching := NewCaching(backend, NewLRUBlockCache(1<<20, nil), 512)

	b, err := caching.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()

	// Spans 8 blocks, all missing: one coalesced backend read.
	buf := make([]byte, 4096)
	_, err = b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.readCount())
	assert.Equal(t, payload[:4096], buf)
}

func TestCachingReadPastEnd(t *testing.T) {
	ctx := context.Background()

	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, "blob", []byte("short blob")))

	caching := NewCaching(backend, NewLRUBlockCache(1<<20, nil), 4)

	b, err := caching.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()

	buf := make([]byte, 16)
	n, err := b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("blob"), buf[:n])
}

func TestCachingReadRange(t *testing.T) {
	ctx := context.Background()

	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, "blob", []byte("abcdefghijklmnop")))

	caching := NewCaching(backend, NewLRUBlockCache(1<<20, nil), 4)

	b, err := caching.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()

	rc, err := b.ReadRange(ctx, 3, 7)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("defghij"), got)
}

func TestCachingInvalidatesOnDelete(t *testing.T) {
	ctx := context.Background()

	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, "blob", []byte("cached bytes")))

	cache := NewLRUBlockCache(1<<20, nil)
	caching := NewCaching(backend, cache, 4)

	b, err := caching.Open(ctx, "blob")
	require.NoError(t, err)
	buf := make([]byte, 12)
	_, err = b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Greater(t, cache.Size(), int64(0))

	require.NoError(t, caching.Delete(ctx, "blob"))
	assert.Equal(t, int64(0), cache.Size())
}

func TestLRUBlockCacheEvicts(t *testing.T) {
	cache := NewLRUBlockCache(10, nil)

	cache.Set(BlockKey{Name: "a", Block: 0}, []byte("12345"))
	cache.Set(BlockKey{Name: "a", Block: 1}, []byte("67890"))
	assert.Equal(t, int64(10), cache.Size())

	// Touch block 0 so block 1 is the LRU victim.
	_, ok := cache.Get(BlockKey{Name: "a", Block: 0})
	require.True(t, ok)

	cache.Set(BlockKey{Name: "a", Block: 2}, []byte("xyz"))

	_, ok = cache.Get(BlockKey{Name: "a", Block: 1})
	assert.False(t, ok)
	_, ok = cache.Get(BlockKey{Name: "a", Block: 0})
	assert.True(t, ok)
}

func TestLRUBlockCacheRespectsController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8})
	cache := NewLRUBlockCache(1<<20, rc)

	cache.Set(BlockKey{Name: "a", Block: 0}, []byte("12345678"))
	assert.Equal(t, int64(8), rc.MemoryUsage())

	// The controller budget is exhausted; the entry is not admitted.
	cache.Set(BlockKey{Name: "a", Block: 1}, []byte("40"))
	_, ok := cache.Get(BlockKey{Name: "a", Block: 1})
	assert.False(t, ok)

	// Invalidation returns memory to the controller.
	cache.Invalidate(func(BlockKey) bool { return true })
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestLRUBlockCacheRejectsOversized(t *testing.T) {
	cache := NewLRUBlockCache(4, nil)

	cache.Set(BlockKey{Name: "a", Block: 0}, []byte("too large"))
	_, ok := cache.Get(BlockKey{Name: "a", Block: 0})
	assert.False(t, ok)
	assert.Equal(t, int64(0), cache.Size())
}
