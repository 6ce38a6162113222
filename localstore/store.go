// Package localstore keeps the CLI's session record in a LevelDB directory.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/otscheduler/portal/model"
	"github.com/syndtr/goleveldb/leveldb"
)

// UserKey is the key the session record is stored under.
const UserKey = "user"

// ErrNotLoggedIn is returned when no session record is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Store is an open LevelDB session store.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveUser replaces the stored session record with u.
func (s *Store) SaveUser(u model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(UserKey), data, nil)
}

// LoadUser returns the stored session record or ErrNotLoggedIn.
func (s *Store) LoadUser() (model.User, error) {
	data, err := s.db.Get([]byte(UserKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return model.User{}, ErrNotLoggedIn
	}
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return model.User{}, fmt.Errorf("decode stored user: %w", err)
	}
	return u, nil
}

// ClearUser deletes the stored session record. Clearing an empty store is not an error.
func (s *Store) ClearUser() error {
	return s.db.Delete([]byte(UserKey), nil)
}
