// Package memory provides an in-memory ports.Store used by tests and by
// ephemeral deployments that do not need durability.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"timekeeper/internal/ports"
)

// Store keeps all pairs in a mutex-guarded map. Scans sort keys on demand;
// the datasets involved are small.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ ports.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Put(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[string(key)] = v
	return nil
}

func (s *Store) Delete(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

func (s *Store) Scan(_ context.Context, prefix []byte) ([]ports.KV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]ports.KV, 0, len(keys))
	for _, k := range keys {
		v := make([]byte, len(s.data[k]))
		copy(v, s.data[k])
		out = append(out, ports.KV{Key: []byte(k), Value: v})
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
