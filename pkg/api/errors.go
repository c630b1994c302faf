package api

import "fmt"

// FailureKind classifies why a script attempt failed.
type FailureKind string

const (
	// FailureSyntax means the script did not compile.
	FailureSyntax FailureKind = "syntax_error"

	// FailureRuntime means the script raised during execution.
	FailureRuntime FailureKind = "runtime_error"

	// FailurePolicy means the script was rejected by the static deny-list
	// before any execution took place.
	FailurePolicy FailureKind = "policy_violation"

	// FailureTimeout means the script exceeded the wall-clock limit.
	FailureTimeout FailureKind = "timeout"

	// FailureNoScript means the reasoning service produced no delimited
	// script at all. Fatal for the turn; never retried.
	FailureNoScript FailureKind = "no_script_found"
)

// Retryable reports whether a failure of this kind should consume a retry
// attempt. Policy violations are regenerated without consuming an attempt
// (nothing was executed); NoScriptFound aborts the turn outright.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureSyntax, FailureRuntime, FailureTimeout:
		return true
	default:
		return false
	}
}

// EngineError is a structured failure carrying enough context for the
// orchestrator to build a corrective follow-up request.
type EngineError struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`

	// Script is the offending script, retained internally for prompt
	// correction. It is never exposed to callers in error strings.
	Script string `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewSyntaxError creates an EngineError for a script that failed to compile.
func NewSyntaxError(message, script string) *EngineError {
	return &EngineError{Kind: FailureSyntax, Message: message, Script: script}
}

// NewRuntimeError creates an EngineError for an exception raised during
// execution.
func NewRuntimeError(message, script string) *EngineError {
	return &EngineError{Kind: FailureRuntime, Message: message, Script: script}
}

// NewPolicyError creates an EngineError for a deny-list hit.
func NewPolicyError(message, script string) *EngineError {
	return &EngineError{Kind: FailurePolicy, Message: message, Script: script}
}

// NewTimeoutError creates an EngineError for an execution that exceeded
// the wall-clock limit.
func NewTimeoutError(message, script string) *EngineError {
	return &EngineError{Kind: FailureTimeout, Message: message, Script: script}
}

// NewNoScriptError creates an EngineError for a reasoner response that
// contained no delimited script.
func NewNoScriptError(message string) *EngineError {
	return &EngineError{Kind: FailureNoScript, Message: message}
}
