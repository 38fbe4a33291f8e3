// Package store persists the catalog, inventories and accounts as whole JSON
// blobs under fixed keys. Every mutation loads the structures it touches,
// applies the change and writes them back inside one transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
)

// Keys under which the blobs are stored.
const (
	KeyBooks         = "books"
	KeyUserInventory = "userInventory"
	KeyUsers         = "users"
	KeyActiveUsers   = "activeUsers"
	KeyPreferences   = "preferences"
	KeyNotifications = "notifications"
)

// AllKeys lists every key the store writes, in display order.
var AllKeys = []string{
	KeyBooks,
	KeyUserInventory,
	KeyUsers,
	KeyActiveUsers,
	KeyPreferences,
	KeyNotifications,
}

// Store wraps a KV backend with typed access to the stored blobs.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// New creates a Store over kv. A nil logger discards log output.
func New(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, logger: logger}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	return s.kv.Close()
}

// Raw returns the stored bytes for key, or nil if absent.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.kv.View(ctx, func(txn Txn) error {
		data, err := txn.Get(key)
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		out = data
		return err
	})
	return out, err
}

// Ping verifies the backend can serve a read.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.View(ctx, func(txn Txn) error {
		_, err := txn.Get(KeyBooks)
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// load decodes key into a value. An absent key yields fallback(); a blob that
// fails to decode is logged and also yields fallback(), so a corrupted key
// never blocks the operation.
func load[T any](s *Store, txn Txn, key string, fallback func() T) (T, error) {
	data, err := txn.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return fallback(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("stored value is malformed, using default",
			slog.String("key", key),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()),
		)
		return fallback(), nil
	}
	return v, nil
}

// save encodes v and writes it under key.
func save[T any](txn Txn, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
