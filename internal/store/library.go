package store

import (
	"context"
	"errors"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Library is the catalog together with every user's inventory, the unit
// loaded and persisted by catalog operations.
type Library struct {
	Catalog   domain.Catalog
	Inventory domain.UserInventory
}

func emptyInventory() domain.UserInventory { return domain.UserInventory{} }

func (s *Store) loadLibrary(txn Txn) (*Library, error) {
	catalog, err := load(s, txn, KeyBooks, domain.DefaultCatalog)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	inventory, err := load(s, txn, KeyUserInventory, emptyInventory)
	if err != nil {
		return nil, err
	}
	if inventory == nil {
		inventory = emptyInventory()
	}
	return &Library{Catalog: catalog, Inventory: inventory}, nil
}

// Library returns a consistent snapshot of the catalog and inventories.
func (s *Store) Library(ctx context.Context) (*Library, error) {
	var lib *Library
	err := s.kv.View(ctx, func(txn Txn) error {
		var err error
		lib, err = s.loadLibrary(txn)
		return err
	})
	return lib, err
}

// UpdateLibrary loads the library, passes it to fn and, if fn succeeds,
// writes the catalog and inventories back in the same transaction. When fn
// returns an error nothing is persisted.
func (s *Store) UpdateLibrary(ctx context.Context, fn func(lib *Library) error) error {
	return s.kv.Update(ctx, func(txn Txn) error {
		lib, err := s.loadLibrary(txn)
		if err != nil {
			return err
		}
		if err := fn(lib); err != nil {
			return err
		}
		if err := save(txn, KeyBooks, lib.Catalog); err != nil {
			return err
		}
		return save(txn, KeyUserInventory, lib.Inventory)
	})
}

// EnsureCatalog writes the default catalog if no catalog has been stored yet.
// It reports whether anything was written.
func (s *Store) EnsureCatalog(ctx context.Context) (bool, error) {
	seeded := false
	err := s.kv.Update(ctx, func(txn Txn) error {
		if _, err := txn.Get(KeyBooks); err == nil {
			return nil
		} else if !errors.Is(err, ErrKeyNotFound) {
			return err
		}
		seeded = true
		return save(txn, KeyBooks, domain.DefaultCatalog())
	})
	if seeded && err == nil {
		s.logger.Info("default catalog written", "books", len(domain.DefaultCatalog()))
	}
	return seeded, err
}
