package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestOpen(t *testing.T) {
	kv := newTestKV(t)

	var journalMode string
	require.NoError(t, kv.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var name string
	require.NoError(t, kv.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&name))
}

func TestKV_SetGetDelete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	err := kv.View(ctx, func(txn store.Txn) error {
		_, err := txn.Get("books")
		return err
	})
	require.ErrorIs(t, err, store.ErrKeyNotFound)

	require.NoError(t, kv.Update(ctx, func(txn store.Txn) error {
		if err := txn.Set("books", []byte(`[]`)); err != nil {
			return err
		}
		got, err := txn.Get("books")
		assert.Equal(t, []byte(`[]`), got)
		return err
	}))

	require.NoError(t, kv.Update(ctx, func(txn store.Txn) error {
		return txn.Set("books", []byte(`[{"title":"Emma"}]`))
	}))
	require.NoError(t, kv.View(ctx, func(txn store.Txn) error {
		got, err := txn.Get("books")
		assert.JSONEq(t, `[{"title":"Emma"}]`, string(got))
		return err
	}))

	require.NoError(t, kv.Update(ctx, func(txn store.Txn) error {
		return txn.Delete("books")
	}))
	err = kv.View(ctx, func(txn store.Txn) error {
		_, err := txn.Get("books")
		return err
	})
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestKV_ViewRejectsWrites(t *testing.T) {
	kv := newTestKV(t)

	err := kv.View(context.Background(), func(txn store.Txn) error {
		return txn.Set("books", []byte(`[]`))
	})

	assert.ErrorIs(t, err, errReadOnly)
}

func TestKV_BacksStore(t *testing.T) {
	s := store.New(newTestKV(t), nil)
	ctx := context.Background()

	err := s.UpdateLibrary(ctx, func(lib *store.Library) error {
		lib.Catalog = append(lib.Catalog, domain.CatalogEntry{Title: "Emma", Author: "Jane Austen", Available: true})
		return nil
	})
	require.NoError(t, err)

	lib, err := s.Library(ctx)
	require.NoError(t, err)
	assert.Len(t, lib.Catalog, len(domain.DefaultCatalog())+1)
	assert.Equal(t, "Emma", lib.Catalog[len(lib.Catalog)-1].Title)
}
