package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound is returned by Open for missing blobs
	ErrObjectNotFound = errors.New("object not found")
	// ErrURLUnavailable is returned when a backend cannot produce a public URL
	ErrURLUnavailable = errors.New("object url unavailable")
)

// Gateway is a key-addressed blob store. Paths are slash separated and
// relative to the backend root (bucket or directory).
type Gateway interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	URL(path string) (string, error)
	Delete(ctx context.Context, path string) error
}

// Expiring is implemented by gateways whose URLs stop working after a while,
// such as signed URLs. Callers keep the path and resolve a URL per read.
type Expiring interface {
	URLsExpire() bool
}

// URLsExpire reports whether URLs from g must not be persisted.
func URLsExpire(g Gateway) bool {
	e, ok := g.(Expiring)
	return ok && e.URLsExpire()
}
