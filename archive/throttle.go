package archive

import (
	"context"
	"io"

	"github.com/hupe1980/symgo/resource"
)

// Throttled wraps an Archive and meters blob transfers through a
// resource controller's IO budget.
//
// Reads charge the bytes actually returned, writes charge before the
// payload reaches the backend. A nil controller passes everything
// through unmetered.
type Throttled struct {
	inner Archive
	rc    *resource.Controller
}

// NewThrottled creates a throttled archive over inner.
func NewThrottled(inner Archive, rc *resource.Controller) *Throttled {
	return &Throttled{inner: inner, rc: rc}
}

// Open opens a blob whose reads are metered.
func (s *Throttled) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{inner: b, rc: s.rc}, nil
}

// Create creates a blob whose writes are metered.
func (s *Throttled) Create(ctx context.Context, name string) (WritableBlob, error) {
	b, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledWritableBlob{
		inner: b,
		w:     resource.NewLimitedWriter(ctx, s.rc, b),
	}, nil
}

// Delete passes through to the backend.
func (s *Throttled) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List passes through to the backend.
func (s *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type throttledBlob struct {
	inner Blob
	rc    *resource.Controller
}

func (b *throttledBlob) Close() error {
	return b.inner.Close()
}

func (b *throttledBlob) Size() int64 {
	return b.inner.Size()
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	n, err := b.inner.ReadAt(ctx, p, off)
	if n > 0 {
		if werr := b.rc.AcquireIO(ctx, n); werr != nil && err == nil {
			err = werr
		}
	}
	return n, err
}

func (b *throttledBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	rc, err := b.inner.ReadRange(ctx, off, length)
	if err != nil {
		return nil, err
	}
	return &throttledReadCloser{
		r: resource.NewLimitedReader(ctx, b.rc, rc),
		c: rc,
	}, nil
}

type throttledReadCloser struct {
	r io.Reader
	c io.Closer
}

func (r *throttledReadCloser) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

func (r *throttledReadCloser) Close() error {
	return r.c.Close()
}

type throttledWritableBlob struct {
	inner WritableBlob
	w     io.Writer
}

func (b *throttledWritableBlob) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

func (b *throttledWritableBlob) Sync() error {
	return b.inner.Sync()
}

func (b *throttledWritableBlob) Close() error {
	return b.inner.Close()
}
