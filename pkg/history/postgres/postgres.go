// Package postgres provides a PostgreSQL implementation of history.Store.
// It uses pgx/v5 for connection pooling and JSONB for the response
// envelope.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/cortex/pkg/history"
)

// Store is a PostgreSQL-backed history.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements history.Store at compile time.
var _ history.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Record appends one history entry.
func (s *Store) Record(ctx context.Context, e *history.Entry) error {
	respJSON, err := json.Marshal(e.Response)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO query_history (id, session_id, query, response, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.SessionID, e.Query, respJSON, e.Response.Success, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	return nil
}

// Get returns the entry with the given query ID.
func (s *Store) Get(ctx context.Context, id string) (*history.Entry, error) {
	var (
		e        history.Entry
		respJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, session_id, query, response, created_at
		FROM query_history
		WHERE id = $1
	`, id).Scan(&e.ID, &e.SessionID, &e.Query, &respJSON, &e.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying history entry: %w", err)
	}

	if err := json.Unmarshal(respJSON, &e.Response); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	return &e, nil
}

// List returns up to limit entries for the session, newest first.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]history.Entry, error) {
	query := `
		SELECT id, session_id, query, response, created_at
		FROM query_history
		WHERE session_id = $1
		ORDER BY created_at DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []history.Entry
	for rows.Next() {
		var (
			e        history.Entry
			respJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Query, &respJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal(respJSON, &e.Response); err != nil {
			return nil, fmt.Errorf("unmarshaling response: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return out, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
