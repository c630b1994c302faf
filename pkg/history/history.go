// Package history persists completed query turns for auditing. Unlike
// session history, which feeds prompts and dies with the session, these
// records outlive the session and include failed turns.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/rhuss/cortex/pkg/api"
)

// ErrNotFound is returned when a query ID is unknown.
var ErrNotFound = errors.New("history entry not found")

// Entry is one completed query turn, successful or not.
type Entry struct {
	ID        string               `json:"id"`
	SessionID string               `json:"session_id"`
	Query     string               `json:"query"`
	Response  api.AnalysisResponse `json:"response"`
	CreatedAt time.Time            `json:"created_at"`
}

// Store persists query history. Implementations must be safe for
// concurrent use.
type Store interface {
	// Record appends one entry. The entry's ID and CreatedAt must be set
	// by the caller.
	Record(ctx context.Context, e *Entry) error

	// Get returns the entry with the given query ID.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns up to limit entries for the session, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, sessionID string, limit int) ([]Entry, error)

	// Close releases store resources.
	Close() error
}
