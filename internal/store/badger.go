package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerKV is the default KV backend.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database at path. An empty path
// opens an in-memory database.
func OpenBadger(path string) (*BadgerKV, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

// View implements KV.
func (b *BadgerKV) View(ctx context.Context, fn func(txn Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(txn *badger.Txn) error {
		return fn(badgerTxn{txn: txn})
	})
}

// maxConflictRetries bounds how often an Update is rerun after a write
// conflict with a concurrent transaction.
const maxConflictRetries = 3

// Update implements KV. fn is rerun from a fresh transaction when the
// commit conflicts with a concurrent writer.
func (b *BadgerKV) Update(ctx context.Context, fn func(txn Txn) error) error {
	var err error
	for range maxConflictRetries {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = b.db.Update(func(txn *badger.Txn) error {
			return fn(badgerTxn{txn: txn})
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// Close closes the database.
func (b *BadgerKV) Close() error {
	return b.db.Close()
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t badgerTxn) Get(key string) ([]byte, error) {
	item, err := t.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t badgerTxn) Set(key string, value []byte) error {
	return t.txn.Set([]byte(key), value)
}

func (t badgerTxn) Delete(key string) error {
	return t.txn.Delete([]byte(key))
}
