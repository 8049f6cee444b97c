// Package memory implements keyring.Store with an in-process map, for
// tests and single-process deployments that do not need durability
// across restarts.
package memory

import (
	"context"
	"sync"

	"github.com/sage-x-project/m2m/keyring"
	"github.com/sage-x-project/m2m/keys"
)

// Store implements keyring.Store in memory.
type Store struct {
	mu      sync.RWMutex
	records map[keys.KeyId]keyring.Record
}

// NewStore creates an empty in-memory Store.
func NewStore() *Store {
	return &Store{records: make(map[keys.KeyId]keyring.Record)}
}

func (s *Store) Put(_ context.Context, rec keyring.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return keyring.ErrDuplicate
	}
	cp := rec
	cp.Bytes = append([]byte(nil), rec.Bytes...)
	s.records[rec.ID] = cp
	return nil
}

func (s *Store) Get(_ context.Context, id keys.KeyId) (keyring.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return keyring.Record{}, keyring.ErrNotFound
	}
	cp := rec
	cp.Bytes = append([]byte(nil), rec.Bytes...)
	return cp, nil
}

func (s *Store) Delete(_ context.Context, id keys.KeyId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return keyring.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *Store) List(_ context.Context) ([]keys.KeyId, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]keys.KeyId, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	return out, nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error {
	return nil
}
