package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rhuss/cortex/pkg/sandbox"
)

// interpret turns a successful outcome into the textual answer. Printed
// output wins; otherwise the result value is rendered by shape: row
// collections become a small text table, maps become key-value lines,
// scalars print as-is. A chart-only script yields a short confirmation.
func interpret(out sandbox.Outcome, limit int) string {
	if text := strings.TrimRight(out.Stdout, "\n"); text != "" {
		return truncate(text, limit)
	}
	if out.Value != nil {
		return truncate(formatValue(out.Value), limit)
	}
	if out.Chart != nil {
		if out.Chart.Title != "" {
			return "Chart: " + out.Chart.Title
		}
		return "See the attached chart."
	}
	return "The analysis completed but produced no output."
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		return formatMap(val)
	case []any:
		if t, ok := formatTable(val); ok {
			return t
		}
		return formatJSON(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatMap renders a map as sorted key-value lines.
func formatMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, formatValue(m[k]))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatTable renders a slice of homogeneous row maps as an aligned text
// table. Returns false when the slice has a different shape.
func formatTable(rows []any) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}

	maps := make([]map[string]any, len(rows))
	for i, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			return "", false
		}
		maps[i] = m
	}

	cols := make([]string, 0, len(maps[0]))
	for k := range maps[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	widths := make([]int, len(cols))
	cells := make([][]string, len(maps))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for i, m := range maps {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			s := formatValue(m[c])
			cells[i][j] = s
			if len(s) > widths[j] {
				widths[j] = len(s)
			}
		}
	}

	var b strings.Builder
	writeRow := func(vals []string) {
		for j, v := range vals {
			if j > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[j], v)
		}
		b.WriteString("\n")
	}
	writeRow(cols)
	for _, row := range cells {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func formatJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// truncate bounds the answer text, marking the cut. The cut lands on a
// rune boundary so multi-byte output is never split mid-character.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n[output truncated]"
}
