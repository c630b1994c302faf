package session

import (
	"errors"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rhuss/cortex/pkg/dataset"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is the idle lifetime of a session before eviction.
const DefaultTTL = 30 * time.Minute

// Store keeps live sessions keyed by ID, evicting them after a period of
// inactivity. Safe for concurrent use.
type Store struct {
	cache  *gocache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a store with the given idle TTL. A non-positive TTL
// selects DefaultTTL.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := gocache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, _ any) {
		logger.Info("session evicted", "session_id", id)
	})
	return &Store{cache: c, ttl: ttl, logger: logger}
}

// Create builds a new session over the dataset and registers it.
func (s *Store) Create(ds *dataset.Dataset) (*Session, error) {
	sess, err := New(ds)
	if err != nil {
		return nil, err
	}
	s.cache.Set(sess.ID(), sess, gocache.DefaultExpiration)
	s.logger.Info("session created",
		"session_id", sess.ID(),
		"rows", ds.RowCount(),
		"columns", ds.ColumnCount())
	return sess, nil
}

// Get returns the session and refreshes its idle TTL.
func (s *Store) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess := v.(*Session)
	// Touch: activity keeps the session alive.
	s.cache.Set(id, sess, gocache.DefaultExpiration)
	return sess, nil
}

// Delete removes the session. Deleting an unknown ID is not an error.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
