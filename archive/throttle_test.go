package archive

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgo/resource"
)

func TestThrottledRoundTrip(t *testing.T) {
	ctx := context.Background()

	backend := NewMemory()
	throttled := NewThrottled(backend, resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20}))

	payload := []byte("metered payload")
	require.NoError(t, WriteAll(ctx, throttled, "blob", payload))

	got, err := ReadAll(ctx, throttled, "blob")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	names, err := throttled.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"blob"}, names)

	require.NoError(t, throttled.Delete(ctx, "blob"))
	_, err = throttled.Open(ctx, "blob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThrottledNilControllerPassesThrough(t *testing.T) {
	ctx := context.Background()

	backend := NewMemory()
	throttled := NewThrottled(backend, nil)

	require.NoError(t, WriteAll(ctx, throttled, "blob", []byte("unmetered")))
	got, err := ReadAll(ctx, throttled, "blob")
	require.NoError(t, err)
	assert.Equal(t, []byte("unmetered"), got)
}

func TestThrottledWriteStopsOnDeadContext(t *testing.T) {
	backend := NewMemory()
	throttled := NewThrottled(backend, resource.NewController(resource.Config{IOLimitBytesPerSec: 10}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := throttled.Create(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Write([]byte("never lands"))
	assert.Error(t, err)
}

func TestThrottledReadRange(t *testing.T) {
	ctx := context.Background()

	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, "blob", []byte("abcdefghij")))

	throttled := NewThrottled(backend, resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20}))

	b, err := throttled.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()

	rc, err := b.ReadRange(ctx, 2, 5)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("cdefg"), got)

	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), buf[:n])
	assert.Equal(t, int64(10), b.Size())
}
