package store

import (
	"context"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Users maps a username to its account.
type Users map[string]domain.User

func emptyUsers() Users { return Users{} }

func emptyActiveUsers() domain.ActiveUsers { return domain.ActiveUsers{} }

func emptyPreferences() map[string]domain.Preferences {
	return map[string]domain.Preferences{}
}

// Users returns every account.
func (s *Store) Users(ctx context.Context) (Users, error) {
	var users Users
	err := s.kv.View(ctx, func(txn Txn) error {
		var err error
		users, err = loadMap(s, txn, KeyUsers, emptyUsers)
		return err
	})
	return users, err
}

// UpdateUsers applies fn to the account map and persists it.
func (s *Store) UpdateUsers(ctx context.Context, fn func(users Users) error) error {
	return s.kv.Update(ctx, func(txn Txn) error {
		users, err := loadMap(s, txn, KeyUsers, emptyUsers)
		if err != nil {
			return err
		}
		if err := fn(users); err != nil {
			return err
		}
		return save(txn, KeyUsers, users)
	})
}

// ActiveUsers returns the logged-in users and their login times.
func (s *Store) ActiveUsers(ctx context.Context) (domain.ActiveUsers, error) {
	var active domain.ActiveUsers
	err := s.kv.View(ctx, func(txn Txn) error {
		var err error
		active, err = loadMap(s, txn, KeyActiveUsers, emptyActiveUsers)
		return err
	})
	return active, err
}

// UpdateActiveUsers applies fn to the active-user map and persists it.
func (s *Store) UpdateActiveUsers(ctx context.Context, fn func(active domain.ActiveUsers) error) error {
	return s.kv.Update(ctx, func(txn Txn) error {
		active, err := loadMap(s, txn, KeyActiveUsers, emptyActiveUsers)
		if err != nil {
			return err
		}
		if err := fn(active); err != nil {
			return err
		}
		return save(txn, KeyActiveUsers, active)
	})
}

// Preferences returns the stored preferences for username. The second result
// is false if none were stored.
func (s *Store) Preferences(ctx context.Context, username string) (domain.Preferences, bool, error) {
	var (
		prefs domain.Preferences
		found bool
	)
	err := s.kv.View(ctx, func(txn Txn) error {
		all, err := loadMap(s, txn, KeyPreferences, emptyPreferences)
		if err != nil {
			return err
		}
		prefs, found = all[username]
		return nil
	})
	return prefs, found, err
}

// SetPreferences stores prefs for username.
func (s *Store) SetPreferences(ctx context.Context, username string, prefs domain.Preferences) error {
	return s.kv.Update(ctx, func(txn Txn) error {
		all, err := loadMap(s, txn, KeyPreferences, emptyPreferences)
		if err != nil {
			return err
		}
		all[username] = prefs
		return save(txn, KeyPreferences, all)
	})
}

// loadMap is load for map-shaped blobs; a stored JSON null becomes an empty map.
func loadMap[M ~map[K]V, K comparable, V any](s *Store, txn Txn, key string, fallback func() M) (M, error) {
	m, err := load(s, txn, key, fallback)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = fallback()
	}
	return m, nil
}
