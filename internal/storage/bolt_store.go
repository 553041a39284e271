package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	seenBucket = "seen"
	metaBucket = "meta"
	savedAtKey = "saved_at"
)

// boltStore keeps one record per key in insertion order; the meta bucket marks that state exists.
type boltStore struct {
	db *bolt.DB
}

// openBolt opens the database, holding its file lock until Close.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	return &boltStore{db: db}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) Load(_ context.Context) (*domain.SeenSet, bool, error) {
	seen := domain.NewSeenSet()
	found := false

	err := b.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil || meta.Get([]byte(savedAtKey)) == nil {
			return nil
		}
		found = true

		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			a, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("decode record %x: %w", k, err)
			}
			seen.Add(a)
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("load seen set: %w", err)
	}
	return seen, found, nil
}

// Save drops and refills the bucket in one transaction.
func (b *boltStore) Save(_ context.Context, seen *domain.SeenSet) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(seenBucket)) != nil {
			if err := tx.DeleteBucket([]byte(seenBucket)); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket([]byte(seenBucket))
		if err != nil {
			return err
		}

		for _, a := range seen.Records() {
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			val, err := json.Marshal(a)
			if err != nil {
				return err
			}
			if err := bucket.Put(sequenceKey(seq), val); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return err
		}
		return meta.Put([]byte(savedAtKey), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return fmt.Errorf("save seen set: %w", err)
	}
	return nil
}

// sequenceKey encodes seq big-endian so cursor order matches insertion order.
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
