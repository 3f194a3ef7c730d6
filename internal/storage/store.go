// Package storage provides the key-value persistence the rest of the
// application reads transaction lists from.
//
// Values are opaque byte slices; callers own the encoding.
package storage

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("store closed")

// Store is a key-value store keyed by string.
type Store interface {
	// Get returns the value stored at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value stored at key.
	Put(ctx context.Context, key string, value []byte) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
