// Package memstore provides an in-memory history store, suitable for
// development and tests. Entries beyond the capacity are dropped oldest
// first.
package memstore

import (
	"context"
	"sync"

	"github.com/rhuss/cortex/pkg/history"
)

// DefaultCapacity bounds the number of retained entries.
const DefaultCapacity = 1024

// Store is an in-memory history.Store. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	entries  []history.Entry
	byID     map[string]int
	capacity int
}

var _ history.Store = (*Store)(nil)

// New creates a store with the given capacity. Non-positive selects
// DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		byID:     make(map[string]int),
		capacity: capacity,
	}
}

// Record appends one entry, evicting the oldest when full.
func (s *Store) Record(_ context.Context, e *history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.capacity {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, *e)
	s.reindex()
	return nil
}

// Get returns the entry with the given query ID.
func (s *Store) Get(_ context.Context, id string) (*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	e := s.entries[i]
	return &e, nil
}

// List returns up to limit entries for the session, newest first.
func (s *Store) List(_ context.Context, sessionID string, limit int) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []history.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].SessionID != sessionID {
			continue
		}
		out = append(out, s.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// reindex rebuilds the ID index after an append or eviction. Caller
// holds the write lock.
func (s *Store) reindex() {
	clear(s.byID)
	for i := range s.entries {
		s.byID[s.entries[i].ID] = i
	}
}
