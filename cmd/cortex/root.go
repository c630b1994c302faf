package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhuss/cortex/pkg/config"
	"github.com/rhuss/cortex/pkg/engine"
	"github.com/rhuss/cortex/pkg/provider"
	"github.com/rhuss/cortex/pkg/provider/ollama"
	"github.com/rhuss/cortex/pkg/provider/openaichat"
	"github.com/rhuss/cortex/pkg/session"
)

var (
	flagConfig     string
	flagBackend    string
	flagBackendURL string
	flagModel      string
	flagDataFile   string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cortex",
	Short: "Ask questions about tabular data in plain language",
	Long:  `Cortex loads a CSV or JSON dataset and answers natural-language
questions about it. A reasoning backend writes a small script, a
restricted sandbox runs it, and failed attempts are retried with
corrective feedback.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", `reasoning backend ("ollama" or "openai-chat")`)
	rootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend-url", "", "reasoning backend URL")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name")
	rootCmd.PersistentFlags().StringVarP(&flagDataFile, "file", "f", "", "dataset file (.csv or .json)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log engine activity")
}

// loadConfig layers the CLI flags over the file and environment config.
// Flags are injected through the CORTEX_* override layer so they take
// part in validation like any other source.
func loadConfig() (*config.Config, error) {
	if flagBackend != "" {
		os.Setenv("CORTEX_BACKEND", flagBackend)
	}
	if flagBackendURL != "" {
		os.Setenv("CORTEX_BACKEND_URL", flagBackendURL)
	}
	if flagModel != "" {
		os.Setenv("CORTEX_MODEL", flagModel)
	}
	return config.Load(flagConfig)
}

// newLocalEngine wires an in-process engine: no HTTP server, no history
// store, sessions kept only for the lifetime of the command.
func newLocalEngine(cfg *config.Config) (*engine.Engine, provider.Reasoner, error) {
	var reasoner provider.Reasoner
	var err error
	switch cfg.Reasoner.Backend {
	case "ollama":
		reasoner, err = ollama.New(ollama.Config{
			BaseURL: cfg.Reasoner.BackendURL,
			Model:   cfg.Reasoner.Model,
		})
	case "openai-chat":
		reasoner, err = openaichat.New(openaichat.Config{
			BaseURL: cfg.Reasoner.BackendURL,
			APIKey:  cfg.Reasoner.APIKey,
			Model:   cfg.Reasoner.Model,
		})
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Reasoner.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	sessions := session.NewStore(cfg.Engine.SessionTTL, logger)

	eng, err := engine.New(reasoner, sessions, nil, logger, engine.Config{
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
		reasoner.Close()
		return nil, nil, err
	}
	return eng, reasoner, nil
}

func logLevel() slog.Level {
	if flagVerbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
