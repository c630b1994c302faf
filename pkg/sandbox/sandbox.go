package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/rhuss/cortex/pkg/api"
)

// DefaultTimeout bounds a single execution attempt when no explicit
// timeout is configured.
const DefaultTimeout = 10 * time.Second

// errDeadline is the interrupt value installed by the watchdog timer.
var errDeadline = errors.New("execution deadline exceeded")

// Outcome is the tagged result of one execution attempt. Exactly one of
// the success fields or the failure fields is meaningful, selected by
// Success.
type Outcome struct {
	Success bool

	// Value is the explicit `result` binding, or the value of the last
	// expression when no result was assigned. Nil when the script
	// produced neither.
	Value any

	// Stdout is the text printed by the script.
	Stdout string

	// Chart is the declarative chart recorded via chart(), if any.
	Chart *api.ChartSpec

	// Kind and Message describe the failure; Script is the offending
	// script, retained for the corrective follow-up request.
	Kind    api.FailureKind
	Message string
	Script  string
}

// Err converts a failure outcome into an EngineError. Returns nil for
// success outcomes.
func (o Outcome) Err() *api.EngineError {
	if o.Success {
		return nil
	}
	return &api.EngineError{Kind: o.Kind, Message: o.Message, Script: o.Script}
}

// Sandbox executes scripts against caller-owned namespaces. It holds no
// mutable state of its own and is safe for concurrent use across distinct
// namespaces; executions against the same namespace must be serialized by
// the caller.
type Sandbox struct {
	timeout time.Duration
}

// New creates a sandbox with the given wall-clock timeout per attempt.
// A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Sandbox {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sandbox{timeout: timeout}
}

// Execute runs one script against the namespace and returns its Outcome.
// No exception escapes this boundary: compile errors, runtime exceptions,
// deny-list hits, timeouts, and panics all come back as Failure outcomes.
//
// The deny-list check and compilation happen before the namespace is
// touched, so a rejected script leaves it unmodified. A timeout interrupts
// the interpreter at the next safe point; mutations already committed by
// the partially-run script remain in the namespace. That partial state is
// a documented limitation of interrupt-based cancellation, not hidden.
func (s *Sandbox) Execute(ctx context.Context, script string, ns *Namespace) Outcome {
	if err := ctx.Err(); err != nil {
		return failure(api.FailureTimeout, "cancelled before execution: "+err.Error(), script)
	}

	if perr := CheckPolicy(script); perr != nil {
		return failure(perr.Kind, perr.Message, script)
	}

	prog, err := goja.Compile("script.js", script, false)
	if err != nil {
		return failure(api.FailureSyntax, err.Error(), script)
	}

	restore := ns.beginCapture()
	defer restore()

	// Watchdog: interrupt the interpreter when the wall-clock budget is
	// spent. Cleared on every exit path so the next execution starts fresh.
	timer := time.AfterFunc(s.timeout, func() {
		ns.vm.Interrupt(errDeadline)
	})
	defer func() {
		timer.Stop()
		ns.vm.ClearInterrupt()
	}()

	var last goja.Value
	runErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("script panicked: %v", r)
			}
		}()
		last, err = ns.vm.RunProgram(prog)
		return err
	}()

	if runErr != nil {
		return classifyRunError(runErr, script)
	}

	return Outcome{
		Success: true,
		Value:   ns.resultValue(last),
		Stdout:  ns.stdout.String(),
		Chart:   ns.chart,
		Script:  script,
	}
}

// classifyRunError maps interpreter errors onto the failure taxonomy.
func classifyRunError(err error, script string) Outcome {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return failure(api.FailureTimeout,
			fmt.Sprintf("execution exceeded the time limit: %v", interrupted.Value()), script)
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return failure(api.FailureRuntime, exception.Error(), script)
	}
	return failure(api.FailureRuntime, err.Error(), script)
}

func failure(kind api.FailureKind, message, script string) Outcome {
	return Outcome{Kind: kind, Message: message, Script: script}
}
