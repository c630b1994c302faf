// Command server runs the cortex analysis service.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (CORTEX_CONFIG or -config), and CORTEX_* environment overrides. The
// most common variables:
//
//	CORTEX_BACKEND_URL - reasoning backend URL (required)
//	CORTEX_MODEL       - model name (required)
//	CORTEX_BACKEND     - "ollama" or "openai-chat" (default: "ollama")
//	CORTEX_PORT        - listen port (default: 8085)
//	CORTEX_HISTORY     - history store: "memory" or "postgres" (default: "memory")
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/rhuss/cortex/pkg/auth"
	"github.com/rhuss/cortex/pkg/auth/apikey"
	"github.com/rhuss/cortex/pkg/config"
	"github.com/rhuss/cortex/pkg/engine"
	"github.com/rhuss/cortex/pkg/history"
	"github.com/rhuss/cortex/pkg/history/memstore"
	"github.com/rhuss/cortex/pkg/history/postgres"
	"github.com/rhuss/cortex/pkg/provider"
	"github.com/rhuss/cortex/pkg/provider/ollama"
	"github.com/rhuss/cortex/pkg/provider/openaichat"
	"github.com/rhuss/cortex/pkg/session"
	transporthttp "github.com/rhuss/cortex/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	reasoner, err := newReasoner(cfg.Reasoner)
	if err != nil {
		return fmt.Errorf("creating reasoner: %w", err)
	}
	defer reasoner.Close()

	hist, err := newHistoryStore(cfg.History)
	if err != nil {
		return fmt.Errorf("creating history store: %w", err)
	}
	defer hist.Close()

	sessions := session.NewStore(cfg.Engine.SessionTTL, logger)

	eng, err := engine.New(reasoner, sessions, hist, logger, engine.Config{
		MaxAttempts:         cfg.Engine.MaxAttempts,
		MaxPolicyRejections: cfg.Engine.MaxPolicyRejections,
		HistoryWindow:       cfg.Engine.HistoryWindow,
		ResultLimit:         cfg.Engine.ResultLimit,
		ExecTimeout:         cfg.Engine.ExecTimeout,
		MemoryCapacity:      cfg.Engine.MemoryCapacity,
		Model:               cfg.Reasoner.Model,
		Temperature:         cfg.Reasoner.Temperature,
		MaxTokens:           cfg.Reasoner.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled, cfg.Observability.Metrics.Path),
		transporthttp.WithLogger(logger),
	}
	if cfg.Auth.Type == "apikey" {
		opts = append(opts, transporthttp.WithAuth(newAuthChain(cfg.Auth)))
	}

	srv := transporthttp.NewServer(transporthttp.NewHandler(eng, hist, logger), opts...)

	logger.Info("cortex starting",
		"port", cfg.Server.Port,
		"backend", cfg.Reasoner.Backend,
		"backend_url", cfg.Reasoner.BackendURL,
		"model", cfg.Reasoner.Model,
		"history", cfg.History.Type)

	return srv.ListenAndServe()
}

func newReasoner(cfg config.ReasonerConfig) (provider.Reasoner, error) {
	switch cfg.Backend {
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL: cfg.BackendURL,
			Model:   cfg.Model,
		})
	case "openai-chat":
		return openaichat.New(openaichat.Config{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newHistoryStore(cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(context.Background(), postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
	default:
		return memstore.New(cfg.MaxSize), nil
	}
}

func newAuthChain(cfg config.AuthConfig) *auth.Chain {
	entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		entries = append(entries, apikey.RawKeyEntry{
			Key:      k.Key,
			Identity: auth.Identity{Subject: k.Subject},
		})
	}
	return &auth.Chain{
		Authenticators:  []auth.Authenticator{apikey.New(entries)},
		DefaultDecision: auth.No,
	}
}
