package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// Persisted key layout. Drafts live under "violation-<id>"; the rest are
// singleton keys.
const (
	KeyCounter       = "violationId"
	KeyLoggedIn      = "loggedIn"
	KeyIsDonor       = "isDonor"
	KeyOpenToCapture = "openToCapture"
	KeySessionKey    = "sessionKey"

	draftKeyPrefix = "violation-"
)

var bucketState = []byte("state")

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// Store is the durable key/value store backing drafts and preferences.
// Each Set is committed before it returns.
type Store struct {
	db *bolt.DB

	// Serializes the read-increment-write of the id counter so overlapping
	// capture attempts never observe the same value.
	counterMu sync.Mutex
}

// Open opens (creating if needed) the store database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored at key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value at key. The write is durable once Set returns.
func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), value)
	})
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
}

// ForEach visits every stored key/value pair.
func (s *Store) ForEach(visit func(key string, value []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).ForEach(func(k, v []byte) error {
			return visit(string(k), v)
		})
	})
}

// AllocateID returns the next draft id. Ids are monotonically increasing
// and never reused, even across overlapping allocations.
func (s *Store) AllocateID() (int64, error) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()

	id := int64(1)
	raw, err := s.Get(KeyCounter)
	if err == nil {
		id, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt id counter %q: %w", raw, err)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	next := strconv.FormatInt(id+1, 10)
	if err := s.Set(KeyCounter, []byte(next)); err != nil {
		return 0, fmt.Errorf("failed to persist id counter: %w", err)
	}
	return id, nil
}

// Key returns the storage key for a draft id.
func Key(id int64) string {
	return draftKeyPrefix + strconv.FormatInt(id, 10)
}

// Save persists d under its draft key.
func (s *Store) Save(d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft %d: %w", d.ID, err)
	}
	return s.Set(Key(d.ID), data)
}

// Load returns the draft stored under id, or ErrNotFound.
func (s *Store) Load(id int64) (*Draft, error) {
	data, err := s.Get(Key(id))
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft %d: %w", id, err)
	}
	return &d, nil
}

// GetString returns the preference stored at key, or "" when absent.
func (s *Store) GetString(key string) (string, error) {
	v, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SetString stores a string preference at key.
func (s *Store) SetString(key, value string) error {
	return s.Set(key, []byte(value))
}

// GetBool returns the boolean preference stored at key, false when absent.
func (s *Store) GetBool(key string) (bool, error) {
	v, err := s.GetString(key)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetBool stores a boolean preference at key.
func (s *Store) SetBool(key string, value bool) error {
	return s.SetString(key, strconv.FormatBool(value))
}
