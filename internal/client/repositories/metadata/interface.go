// Package metadata is the device-local key-value store. It holds the app lock
// state (PIN verifier, salt, biometric flag, idle timeout, failed attempts)
// as opaque byte values keyed by name.
package metadata

import (
	"context"
)

// Repository is a small key-value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// InTx runs fn against a Repository bound to a single transaction.
	// Nested calls reuse the outer transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
