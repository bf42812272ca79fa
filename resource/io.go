package resource

import (
	"context"
	"io"
)

// LimitedWriter meters writes through a controller's IO budget. Bytes
// are charged before they reach the underlying writer, so a canceled
// context stops the transfer without a partial uncharged write.
type LimitedWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

// NewLimitedWriter wraps w with IO metering.
func NewLimitedWriter(ctx context.Context, c *Controller, w io.Writer) *LimitedWriter {
	return &LimitedWriter{ctx: ctx, c: c, w: w}
}

// Write implements io.Writer.
func (w *LimitedWriter) Write(p []byte) (int, error) {
	if err := w.c.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// LimitedReader meters reads through a controller's IO budget. Bytes
// are charged after each read with the actual count, so short reads are
// not over-billed.
type LimitedReader struct {
	ctx context.Context
	c   *Controller
	r   io.Reader
}

// NewLimitedReader wraps r with IO metering.
func NewLimitedReader(ctx context.Context, c *Controller, r io.Reader) *LimitedReader {
	return &LimitedReader{ctx: ctx, c: c, r: r}
}

// Read implements io.Reader.
func (r *LimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.c.AcquireIO(r.ctx, n); werr != nil && err == nil {
			err = werr
		}
	}
	return n, err
}
