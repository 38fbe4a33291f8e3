package store

import (
	"context"

	"github.com/listenupapp/catalog-server/internal/domain"
)

func emptyNotifications() domain.Notifications { return domain.Notifications{} }

// Notifications returns the notifications of username, oldest first.
func (s *Store) Notifications(ctx context.Context, username string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.kv.View(ctx, func(txn Txn) error {
		all, err := loadMap(s, txn, KeyNotifications, emptyNotifications)
		if err != nil {
			return err
		}
		out = all[username]
		return nil
	})
	if out == nil {
		out = []domain.Notification{}
	}
	return out, err
}

// UpdateNotifications passes the current inventories (read-only) and the
// notification map to fn, then persists the notification map. Both are read
// in the same transaction.
func (s *Store) UpdateNotifications(ctx context.Context, fn func(inventory domain.UserInventory, notes domain.Notifications) error) error {
	return s.kv.Update(ctx, func(txn Txn) error {
		inventory, err := loadMap(s, txn, KeyUserInventory, emptyInventory)
		if err != nil {
			return err
		}
		notes, err := loadMap(s, txn, KeyNotifications, emptyNotifications)
		if err != nil {
			return err
		}
		if err := fn(inventory, notes); err != nil {
			return err
		}
		return save(txn, KeyNotifications, notes)
	})
}
