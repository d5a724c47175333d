// AngelaMos | 2026
// kv.go

package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Store is a flat key-value persistence port. Values are opaque bytes;
// callers own the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMulti writes every entry or none of them.
	SetMulti(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key owned by this store.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
