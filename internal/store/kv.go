package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Txn.Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// Txn is a read or read-write view of the key space. Writes made through a
// Txn are visible to later reads on the same Txn and are committed together.
type Txn interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// KV is a transactional key-value backend holding JSON blobs.
type KV interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(txn Txn) error) error
	// Update runs fn in a read-write transaction. If fn returns an error
	// nothing is written.
	Update(ctx context.Context, fn func(txn Txn) error) error
	Close() error
}
