// Package engine orchestrates the generate-execute-evaluate cycle that
// turns a natural-language query over a dataset into a structured answer.
// The reasoning backend proposes a script, the sandbox runs it, and
// failures are fed back as corrective context until the attempt budget
// is spent.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/history"
	"github.com/rhuss/cortex/pkg/memory"
	"github.com/rhuss/cortex/pkg/provider"
	"github.com/rhuss/cortex/pkg/sandbox"
	"github.com/rhuss/cortex/pkg/session"
)

// Engine coordinates the reasoner, the sandbox, and the session store.
type Engine struct {
	reasoner provider.Reasoner
	sandbox  *sandbox.Sandbox
	sessions *session.Store
	memory   *memory.Store
	history  history.Store
	logger   *slog.Logger
	cfg      Config
}

// Query is one analysis request against an existing session.
type Query struct {
	SessionID string

	// Text is the natural-language question.
	Text string

	// ChartHint is optional chart steering supplied by the caller, e.g.
	// "as a bar chart". It is appended verbatim to the question in the
	// prompt; the engine never interprets it.
	ChartHint string
}

// New creates an Engine. The reasoner and session store must not be nil.
// The history store can be nil for stateless operation.
func New(r provider.Reasoner, sessions *session.Store, hist history.Store, logger *slog.Logger, cfg Config) (*Engine, error) {
	if r == nil {
		return nil, fmt.Errorf("engine: reasoner must not be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("engine: session store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		reasoner: r,
		sandbox:  sandbox.New(cfg.ExecTimeout),
		sessions: sessions,
		memory:   memory.NewStore(cfg.MemoryCapacity),
		history:  hist,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Sessions returns the engine's session store.
func (e *Engine) Sessions() *session.Store {
	return e.sessions
}

// Ask answers one query. It always returns an envelope for semantic
// failures (bad scripts, exhausted retries); an error is returned only
// for infrastructure problems such as an unknown session or an
// unreachable reasoning backend.
func (e *Engine) Ask(ctx context.Context, q Query) (*api.AnalysisResponse, error) {
	start := time.Now()

	sess, err := e.sessions.Get(q.SessionID)
	if err != nil {
		return nil, err
	}

	resp, err := e.runLoop(ctx, sess, q)
	if err != nil {
		return nil, err
	}
	resp.TimeTaken = time.Since(start).Seconds()

	if resp.Success {
		sess.RecordExchange(q.Text, resp.Result, resp.Metadata.Script)
		e.memory.Save(q.Text, resp.Metadata.Script)
	}

	e.record(ctx, sess.ID(), q.Text, resp)

	return resp, nil
}

// record persists the turn to the history store, if one is configured.
// History failures are logged, never surfaced: the answer is already
// computed and losing an audit row must not fail the query.
func (e *Engine) record(ctx context.Context, sessionID, query string, resp *api.AnalysisResponse) {
	if e.history == nil {
		return
	}
	entry := &history.Entry{
		ID:        api.NewQueryID(),
		SessionID: sessionID,
		Query:     query,
		Response:  *resp,
		CreatedAt: time.Now(),
	}
	if err := e.history.Record(ctx, entry); err != nil {
		e.logger.Error("recording query history failed",
			"session_id", sessionID,
			"query_id", entry.ID,
			"error", err)
	}
}
