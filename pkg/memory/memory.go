// Package memory keeps a small in-process store of scripts that worked,
// keyed by the intent they answered. A recalled script is offered to the
// reasoner as a hint, never executed blindly: data and phrasing may have
// drifted since it was saved.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Snippet is one remembered script and the intent it solved.
type Snippet struct {
	ID      string
	Intent  string
	Script  string
	SavedAt time.Time
}

// DefaultCapacity bounds the store; the oldest snippet is dropped when
// the bound is reached.
const DefaultCapacity = 256

// Store is an in-process snippet store. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	snippets []Snippet
	capacity int
}

// NewStore creates a store with the given capacity. Non-positive selects
// DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Save records a script that successfully answered the given intent.
// A later save for an equal normalized intent replaces the earlier one.
func (s *Store) Save(intent, script string) Snippet {
	snip := Snippet{
		ID:      uuid.NewString(),
		Intent:  intent,
		Script:  script,
		SavedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	norm := normalize(intent)
	for i := range s.snippets {
		if normalize(s.snippets[i].Intent) == norm {
			s.snippets[i] = snip
			return snip
		}
	}
	if len(s.snippets) >= s.capacity {
		s.snippets = s.snippets[1:]
	}
	s.snippets = append(s.snippets, snip)
	return snip
}

// Recall returns the snippet whose intent is closest to the query, or
// false when nothing matches well enough to be a useful hint.
func (s *Store) Recall(query string) (Snippet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm := normalize(query)
	if norm == "" {
		return Snippet{}, false
	}

	best := -1
	bestDist := 0
	for i, snip := range s.snippets {
		in := normalize(snip.Intent)
		if in == norm {
			return snip, true
		}
		// Fuzzy match in either direction: a short query should recall a
		// longer stored intent and vice versa.
		d := fuzzy.RankMatchNormalizedFold(norm, in)
		if d < 0 {
			d = fuzzy.RankMatchNormalizedFold(in, norm)
		}
		if d < 0 {
			continue
		}
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return Snippet{}, false
	}
	return s.snippets[best], true
}

// Len returns the number of stored snippets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snippets)
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
