// Package mysql provides a ports.Store backed by a MySQL key/value table.
// VARBINARY primary-key ordering gives the same bytewise sorted keyspace as
// the other adapters, so prefix scans are ordinary index range scans.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"timekeeper/internal/ports"
)

// Store implements ports.Store over the kv_records table.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

var _ ports.Store = (*Store)(nil)

// NewStore opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	// Conservative pool defaults; can be adjusted via env later.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, "SELECT v FROM kv_records WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, key, value []byte) error {
	const q = `
INSERT INTO kv_records (k, v, updated_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  v=VALUES(v),
  updated_at=VALUES(updated_at);
`
	_, err := s.db.ExecContext(ctx, q, key, value, time.Now().UTC())
	return err
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_records WHERE k = ?", key)
	return err
}

func (s *Store) Scan(ctx context.Context, prefix []byte) ([]ports.KV, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if upper, ok := prefixUpperBound(prefix); ok {
		rows, err = s.db.QueryContext(ctx,
			"SELECT k, v FROM kv_records WHERE k >= ? AND k < ? ORDER BY k ASC", prefix, upper)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT k, v FROM kv_records WHERE k >= ? ORDER BY k ASC", prefix)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.KV
	for rows.Next() {
		var kv ports.KV
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, err
		}
		out = append(out, kv)
	}
	return out, rows.Err()
}

// Close closes the underlying DB.
func (s *Store) Close() error { return s.db.Close() }

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, for use as an exclusive range bound. ok is false when no such
// bound exists (prefix is empty or all 0xff).
func prefixUpperBound(prefix []byte) ([]byte, bool) {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1], true
		}
	}
	return nil, false
}
