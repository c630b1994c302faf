// Package session ties a dataset, its profiled schema, and a persistent
// sandbox namespace together under one identifier, and keeps sessions in
// a TTL-evicting store.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/dataset"
	"github.com/rhuss/cortex/pkg/sandbox"
)

// Exchange is one completed query turn, kept for conversational context
// in follow-up prompts.
type Exchange struct {
	Query  string
	Answer string
	Script string
	At     time.Time
}

// Session is one conversation over one dataset. The namespace inside it
// persists across turns, so scripts can build on earlier results. All
// methods are safe for concurrent use; executions are serialized.
type Session struct {
	id string

	mu      sync.Mutex
	ds      *dataset.Dataset
	schema  *dataset.Schema
	ns      *sandbox.Namespace
	history []Exchange
	turns   int
	created time.Time
}

// New creates a session over the dataset, profiling its schema and
// initializing a fresh namespace.
func New(ds *dataset.Dataset) (*Session, error) {
	ns, err := sandbox.NewNamespace(ds)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      api.NewSessionID(),
		ds:      ds,
		schema:  dataset.Profile(ds),
		ns:      ns,
		created: time.Now(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Created returns the session creation time.
func (s *Session) Created() time.Time { return s.created }

// Schema returns the profiled schema of the current dataset.
func (s *Session) Schema() *dataset.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// Dataset returns the current dataset.
func (s *Session) Dataset() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds
}

// Turns returns the number of completed query turns.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// ReplaceDataset swaps in a new dataset. The namespace is rebuilt from
// scratch: variables derived from the old data would be silently wrong
// against the new rows, so nothing survives the swap.
func (s *Session) ReplaceDataset(ds *dataset.Dataset) error {
	ns, err := sandbox.NewNamespace(ds)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.schema = dataset.Profile(ds)
	s.ns = ns
	return nil
}

// Execute runs one script in this session's namespace. The session lock
// serializes concurrent executions so the single-threaded namespace is
// never entered twice.
func (s *Session) Execute(ctx context.Context, sb *sandbox.Sandbox, script string) sandbox.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sb.Execute(ctx, script, s.ns)
}

// RecordExchange appends one completed turn to the conversational history.
func (s *Session) RecordExchange(query, answer, script string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Exchange{
		Query:  query,
		Answer: answer,
		Script: script,
		At:     time.Now(),
	})
	s.turns++
}

// History returns up to the last n exchanges, oldest first. n <= 0
// returns all of them.
func (s *Session) History(n int) []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.history
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	out := make([]Exchange, len(h))
	copy(out, h)
	return out
}
