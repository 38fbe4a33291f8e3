// Package sqlite provides a SQLite-backed store.KV.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/catalog-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// KV stores each key as one row of the kv table.
type KV struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates a new SQLite KV at the given path.
// It configures WAL mode, sets pragmas, and runs the schema.
func Open(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &KV{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (k *KV) Close() error {
	return k.db.Close()
}

// View implements store.KV.
func (k *KV) View(ctx context.Context, fn func(txn store.Txn) error) error {
	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // nothing to commit

	return fn(&txn{ctx: ctx, tx: tx, readOnly: true})
}

// Update implements store.KV.
func (k *KV) Update(ctx context.Context, fn func(txn store.Txn) error) error {
	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&txn{ctx: ctx, tx: tx, now: k.now}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var errReadOnly = errors.New("write in read-only transaction")

type txn struct {
	ctx      context.Context
	tx       *sql.Tx
	now      func() time.Time
	readOnly bool
}

func (t *txn) Get(key string) ([]byte, error) {
	var value []byte
	err := t.tx.QueryRowContext(t.ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (t *txn) Set(key string, value []byte) error {
	if t.readOnly {
		return errReadOnly
	}
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, t.now().UTC().Format(time.RFC3339Nano))
	return err
}

func (t *txn) Delete(key string) error {
	if t.readOnly {
		return errReadOnly
	}
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}
