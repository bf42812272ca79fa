// Package archive provides storage abstraction for snapshot blobs.
//
// An Archive stores immutable named blobs (snapshots, commit markers) and is
// the persistence collaborator behind SaveToArchive/LoadFromArchive.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - Memory: in-memory store for tests
//   - Local: local filesystem with mmap-backed reads
//   - Caching: block-level LRU read cache over any Archive
//   - Throttled: transfer metering over any Archive via resource budgets
//   - s3.Store: Amazon S3 with range reads and streaming uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the Archive interface to support custom backends. Cloud backends
// should serve ReadRange with a ranged request so partial reads stay cheap.
package archive

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// CurrentPointer is the well-known blob name holding the name of the
// latest snapshot. Commit stores intercept reads and writes of this blob
// to provide atomic pointer updates.
const CurrentPointer = "CURRENT"

// Archive is an abstraction for accessing immutable data blobs.
type Archive interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a new writable blob. The blob becomes visible to
	// readers when Close returns.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs matching the prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer

	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader over [off, off+length).
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a write-only handle to a blob under construction.
type WritableBlob interface {
	io.Writer
	io.Closer

	// Sync flushes written data to stable storage where the backend
	// supports it. Object stores finalize on Close instead.
	Sync() error
}

// ReadAll reads the entire blob named name from the archive.
func ReadAll(ctx context.Context, arc Archive, name string) ([]byte, error) {
	b, err := arc.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	data := make([]byte, b.Size())
	if len(data) == 0 {
		return data, nil
	}
	if _, err := b.ReadAt(ctx, data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return data, nil
}

// WriteAll writes data to a new blob named name, replacing any existing blob.
func WriteAll(ctx context.Context, arc Archive, name string, data []byte) error {
	w, err := arc.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
