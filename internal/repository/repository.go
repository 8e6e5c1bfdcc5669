package repository

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store closed")

// Store is the key-value persistence collaborator. Values are opaque
// serialized blobs; callers own the encoding.
type Store interface {
	// Get returns the value for key, or nil with no error when the key is
	// absent
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}
