// Package cache provides the key-value store used to hold the parsed
// dataset between requests.
package cache

import (
	"context"
	"errors"
)

// ErrMiss reports that a key is not present in the store.
var ErrMiss = errors.New("cache miss")

// Store is the injected cache dependency. Implementations must return
// ErrMiss (possibly wrapped) for absent keys so callers can tell a miss
// from a backend failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
