package engine

import "time"

// Config holds engine behavior settings. The zero value is usable; each
// accessor applies its default.
type Config struct {
	// MaxAttempts bounds the number of execution attempts per query,
	// including the first (default: 3).
	MaxAttempts int

	// MaxPolicyRejections bounds how often a query may be regenerated
	// after a deny-list hit. Policy rejections never execute anything, so
	// they do not consume attempts; this bound keeps a reasoner that
	// insists on forbidden facilities from looping (default: 2).
	MaxPolicyRejections int

	// HistoryWindow is the number of past exchanges included in prompts
	// (default: 6).
	HistoryWindow int

	// ResultLimit truncates the textual answer to this many characters
	// (default: 2000).
	ResultLimit int

	// ExecTimeout bounds a single sandbox execution (default: 10s).
	ExecTimeout time.Duration

	// Model, Temperature, and MaxTokens are passed through to the
	// reasoning backend.
	Model       string
	Temperature float64
	MaxTokens   int

	// MemoryCapacity bounds the script memory (default: 256).
	MemoryCapacity int
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}

func (c Config) maxPolicyRejections() int {
	if c.MaxPolicyRejections <= 0 {
		return 2
	}
	return c.MaxPolicyRejections
}

func (c Config) historyWindow() int {
	if c.HistoryWindow <= 0 {
		return 6
	}
	return c.HistoryWindow
}

func (c Config) resultLimit() int {
	if c.ResultLimit <= 0 {
		return 2000
	}
	return c.ResultLimit
}
