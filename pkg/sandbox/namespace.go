package sandbox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dop251/goja"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/dataset"
)

// Namespace is the persistent execution state of one session. It wraps a
// single goja runtime that survives across calls: a variable (or fitted
// model) bound in turn N is visible in turn N+1. A Namespace is exclusively
// owned by its session and must not be shared between sessions.
//
// A Namespace is not safe for concurrent use; the owning session
// serializes executions against it.
type Namespace struct {
	vm *goja.Runtime

	// Per-execution capture, reset by beginCapture.
	stdout bytes.Buffer
	chart  *api.ChartSpec

	// warnSink receives warn() output. Swapped to io.Discard for the
	// duration of each execution (quiet mode) and restored afterwards.
	warnSink io.Writer
}

// NewNamespace creates a namespace with the dataset bound as globals:
//
//	rows     - array of row objects keyed by column name
//	columns  - array of column names
//	rowCount - number of rows
//	print()  - append a line to the captured output
//	warn()   - advisory output, suppressed during execution
//	chart()  - record a declarative chart spec for the caller
//
// The result protocol mirrors the reasoner contract: scripts answer by
// printing, assigning `result`, or calling chart().
func NewNamespace(ds *dataset.Dataset) (*Namespace, error) {
	ns := &Namespace{
		vm:       goja.New(),
		warnSink: io.Discard,
	}
	if err := ns.bindDataset(ds); err != nil {
		return nil, err
	}
	if err := ns.bindBuiltins(); err != nil {
		return nil, err
	}
	return ns, nil
}

// bindDataset installs the dataset globals. Called again by the session
// when the dataset is replaced.
func (ns *Namespace) bindDataset(ds *dataset.Dataset) error {
	if err := ns.vm.Set("rows", ds.Rows()); err != nil {
		return fmt.Errorf("sandbox: binding rows: %w", err)
	}
	if err := ns.vm.Set("columns", ds.ColumnNames()); err != nil {
		return fmt.Errorf("sandbox: binding columns: %w", err)
	}
	if err := ns.vm.Set("rowCount", ds.RowCount()); err != nil {
		return fmt.Errorf("sandbox: binding rowCount: %w", err)
	}
	return nil
}

func (ns *Namespace) bindBuiltins() error {
	if err := ns.vm.Set("print", func(args ...any) {
		for i, a := range args {
			if i > 0 {
				ns.stdout.WriteByte(' ')
			}
			fmt.Fprintf(&ns.stdout, "%v", formatArg(a))
		}
		ns.stdout.WriteByte('\n')
	}); err != nil {
		return err
	}
	if err := ns.vm.Set("warn", func(args ...any) {
		fmt.Fprintln(ns.warnSink, args...)
	}); err != nil {
		return err
	}
	return ns.vm.Set("chart", func(spec map[string]any) {
		cs, err := parseChartSpec(spec)
		if err != nil {
			panic(ns.vm.NewTypeError(err.Error()))
		}
		ns.chart = cs
	})
}

// beginCapture resets per-execution capture state and silences warn()
// output for the duration of the call. The returned restore function must
// run on every exit path.
func (ns *Namespace) beginCapture() (restore func()) {
	ns.stdout.Reset()
	ns.chart = nil

	prev := ns.warnSink
	ns.warnSink = io.Discard

	// Clear any stale result binding from a previous turn so it cannot be
	// mistaken for this execution's output. User variables are untouched.
	_ = ns.vm.Set("result", goja.Undefined())

	return func() { ns.warnSink = prev }
}

// resultValue returns the explicit `result` binding if the script set one,
// otherwise the provided last-expression value. Undefined and null map
// to nil.
func (ns *Namespace) resultValue(last goja.Value) any {
	if v := ns.vm.Get("result"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		return v.Export()
	}
	if last == nil || goja.IsUndefined(last) || goja.IsNull(last) {
		return nil
	}
	return last.Export()
}

// SetWarnSink directs warn() output outside of executions, e.g. to a
// session log. During an execution the sink is always io.Discard.
func (ns *Namespace) SetWarnSink(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	ns.warnSink = w
}

// Lookup exports a global from the namespace, for tests and debugging.
func (ns *Namespace) Lookup(name string) (any, bool) {
	v := ns.vm.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return nil, false
	}
	return v.Export(), true
}

func formatArg(a any) any {
	switch a.(type) {
	case map[string]any, []any:
		if b, err := json.Marshal(a); err == nil {
			return string(b)
		}
	}
	return a
}

// parseChartSpec converts the exported chart() argument into an
// api.ChartSpec via a JSON round-trip, validating the minimum shape.
func parseChartSpec(spec map[string]any) (*api.ChartSpec, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("chart: spec is not serializable: %w", err)
	}
	var cs api.ChartSpec
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("chart: invalid spec: %w", err)
	}
	if cs.Type == "" {
		return nil, fmt.Errorf("chart: spec requires a type")
	}
	return &cs, nil
}
