package dataset

import (
	"fmt"
	"strings"
	"time"
)

// profileSampleSize bounds how many values per column are inspected for
// type inference. Large columns are sampled, not scanned.
const profileSampleSize = 256

// ColumnSchema describes one column of a profiled dataset.
type ColumnSchema struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`

	// Distinct is the number of distinct non-nil values observed in the
	// sample (cardinality, capped at the sample size).
	Distinct int `json:"distinct"`

	// Example is a representative value rendered as text, empty when the
	// column holds no non-nil values.
	Example string `json:"example,omitempty"`
}

// Schema is a read-only structural snapshot of a dataset. It is recomputed
// whenever the dataset changes and never mutated in place.
type Schema struct {
	Columns []ColumnSchema `json:"columns"`
	Rows    int            `json:"rows"`
}

// Profile inspects the dataset and produces its Schema. It is a pure
// function of the dataset snapshot: idempotent, no mutation, no execution.
// Zero-row and zero-column datasets profile without error.
func Profile(d *Dataset) *Schema {
	s := &Schema{
		Columns: make([]ColumnSchema, 0, d.ColumnCount()),
		Rows:    d.RowCount(),
	}
	for _, c := range d.columns {
		s.Columns = append(s.Columns, profileColumn(c))
	}
	return s
}

func profileColumn(c Column) ColumnSchema {
	cs := ColumnSchema{Name: c.Name, Type: TypeString}

	sample := c.Values
	if len(sample) > profileSampleSize {
		sample = sample[:profileSampleSize]
	}

	seen := make(map[string]struct{})
	counts := make(map[ColumnType]int)
	for _, v := range sample {
		if v == nil {
			continue
		}
		t := typeOf(v)
		counts[t]++
		rendered := renderValue(v)
		if cs.Example == "" {
			cs.Example = rendered
		}
		seen[rendered] = struct{}{}
	}
	cs.Distinct = len(seen)

	// Majority type wins; any disagreement between sampled values makes
	// the column mixed rather than failing.
	var best ColumnType
	total := 0
	for t, n := range counts {
		total += n
		if best == "" || n > counts[best] {
			best = t
		}
	}
	switch {
	case total == 0:
		cs.Type = TypeString
	case counts[best] == total:
		cs.Type = best
	default:
		cs.Type = TypeMixed
	}
	return cs
}

func typeOf(v any) ColumnType {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return TypeNumber
	case bool:
		return TypeBool
	case time.Time:
		return TypeTime
	default:
		return TypeString
	}
}

func renderValue(v any) string {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", x), "0"), ".")
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Summary renders the schema as a dense textual description suitable for
// inclusion in a reasoning prompt, one line per column.
func (s *Schema) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows: %d\nColumns:\n", s.Rows)
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "- %q (%s", c.Name, c.Type)
		if c.Example != "" {
			fmt.Fprintf(&b, ", e.g. %q", c.Example)
		}
		b.WriteString(")\n")
	}
	return b.String()
}

// ColumnNames returns the profiled column names in order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
