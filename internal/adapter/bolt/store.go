// Package bolt provides the default durable ports.Store backed by bbolt.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	bbolt "go.etcd.io/bbolt"

	"timekeeper/internal/ports"
)

// bucketName holds all records; key structure provides the namespacing.
var bucketName = []byte("records")

// Store implements ports.Store over a single bbolt bucket. bbolt keeps keys
// sorted, so prefix scans are cursor seeks.
type Store struct {
	db  *bbolt.DB
	log *slog.Logger
}

var _ ports.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("bolt: path is required")
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("bolt store opened", slog.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v != nil {
			out = make([]byte, len(v))
			copy(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Put(_ context.Context, key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

func (s *Store) Delete(_ context.Context, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

func (s *Store) Scan(_ context.Context, prefix []byte) ([]ports.KV, error) {
	var out []ports.KV
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			kc := make([]byte, len(k))
			copy(kc, k)
			vc := make([]byte, len(v))
			copy(vc, v)
			out = append(out, ports.KV{Key: kc, Value: vc})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Close() error { return s.db.Close() }
