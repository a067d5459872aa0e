// Package docstore keeps storefront records as JSON documents in BoltDB
// buckets. All data lives in a single file, so no external database is needed.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketUsers       = []byte("users")
	bucketVideos      = []byte("videos")
	bucketPayments    = []byte("payments")
	bucketPaymentRefs = []byte("payment_refs") // reference -> payment id
	bucketAccess      = []byte("access")
)

// DB wraps a bolt database with the storefront buckets created.
type DB struct {
	bolt *bolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketVideos, bucketPayments, bucketPaymentRefs, bucketAccess} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &DB{bolt: db}, nil
}

// Close releases the database file lock.
func (d *DB) Close() error {
	return d.bolt.Close()
}

// Ping runs an empty read transaction; it fails once the file is closed.
func (d *DB) Ping() error {
	return d.bolt.View(func(*bolt.Tx) error { return nil })
}

func get(b *bolt.Bucket, key string, into any) (bool, error) {
	v := b.Get([]byte(key))
	if v == nil {
		return false, nil
	}
	if err := json.Unmarshal(v, into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func put(b *bolt.Bucket, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}
