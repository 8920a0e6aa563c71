package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("boltdb: key not found")

// Store wraps a BoltDB file holding JSON documents grouped by bucket.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string, buckets ...string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Update runs fn inside a read-write transaction.
func (s *Store) Update(fn func(tx *bolt.Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(fn)
}

// View runs fn inside a read-only transaction.
func (s *Store) View(fn func(tx *bolt.Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(fn)
}

// Ping checks that the file is still open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.View(func(tx *bolt.Tx) error { return nil })
}

// Size returns the number of keys in bucket.
func (s *Store) Size(bucket string) (int, error) {
	var count int
	err := s.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get decodes the document stored under key into out.
func Get(tx *bolt.Tx, bucket, key string, out interface{}) error {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return bolt.ErrBucketNotFound
	}
	raw := b.Get([]byte(key))
	if raw == nil {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

// Put encodes doc as JSON under key.
func Put(tx *bolt.Tx, bucket, key string, doc interface{}) error {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return bolt.ErrBucketNotFound
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), payload)
}

// Delete removes key and reports whether it existed.
func Delete(tx *bolt.Tx, bucket, key string) (bool, error) {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return false, bolt.ErrBucketNotFound
	}
	if b.Get([]byte(key)) == nil {
		return false, nil
	}
	return true, b.Delete([]byte(key))
}

// ForEach decodes every document of bucket and hands it to fn in key order.
// Undecodable entries are skipped.
func ForEach[T any](tx *bolt.Tx, bucket string, fn func(doc *T) error) error {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return bolt.ErrBucketNotFound
	}
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var doc T
		if err := json.Unmarshal(v, &doc); err != nil {
			continue
		}
		if err := fn(&doc); err != nil {
			return err
		}
	}
	return nil
}
