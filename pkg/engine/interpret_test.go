package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/sandbox"
)

func TestInterpretPrefersStdout(t *testing.T) {
	out := sandbox.Outcome{Success: true, Stdout: "printed answer\n", Value: 42.0}
	if got := interpret(out, 2000); got != "printed answer" {
		t.Errorf("got %q", got)
	}
}

func TestInterpretScalarValue(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{3680.75, "3680.75"},
		{int64(7), "7"},
		{"north gate", "north gate"},
		{true, "true"},
	}
	for _, tc := range cases {
		out := sandbox.Outcome{Success: true, Value: tc.value}
		if got := interpret(out, 2000); got != tc.want {
			t.Errorf("interpret(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestInterpretMapValue(t *testing.T) {
	out := sandbox.Outcome{Success: true, Value: map[string]any{
		"total": 3680.75,
		"count": int64(3),
	}}
	got := interpret(out, 2000)
	want := "count: 3\ntotal: 3680.75"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInterpretRowsAsTable(t *testing.T) {
	out := sandbox.Outcome{Success: true, Value: []any{
		map[string]any{"name": "North", "revenue": 1200.5},
		map[string]any{"name": "South", "revenue": 980.0},
	}}
	got := interpret(out, 2000)

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "name") || !strings.Contains(lines[0], "revenue") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "North") || !strings.Contains(lines[1], "1200.5") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestInterpretChartOnly(t *testing.T) {
	out := sandbox.Outcome{Success: true, Chart: &api.ChartSpec{Type: "bar", Title: "Revenue"}}
	if got := interpret(out, 2000); got != "Chart: Revenue" {
		t.Errorf("got %q", got)
	}
}

func TestInterpretTruncates(t *testing.T) {
	out := sandbox.Outcome{Success: true, Stdout: strings.Repeat("x", 5000)}
	got := interpret(out, 2000)
	if len(got) > 2100 {
		t.Errorf("len = %d", len(got))
	}
	if !strings.HasSuffix(got, "[output truncated]") {
		t.Errorf("missing truncation marker: %q", got[len(got)-40:])
	}
}

func TestInterpretTruncatesOnRuneBoundary(t *testing.T) {
	// Three-byte runes straddle a limit that is not a multiple of three.
	out := sandbox.Outcome{Success: true, Stdout: strings.Repeat("€", 100)}
	got := interpret(out, 10)

	text := strings.TrimSuffix(got, "\n[output truncated]")
	if text == got {
		t.Fatalf("missing truncation marker: %q", got)
	}
	if !utf8.ValidString(text) {
		t.Errorf("truncation split a rune: %q", text)
	}
	if text != strings.Repeat("€", 3) {
		t.Errorf("got %q, want three runes", text)
	}
}

func TestConfidenceDecaysWithAttempts(t *testing.T) {
	ok := sandbox.Outcome{Success: true, Value: 1.0}

	first := confidence(ok, 1)
	second := confidence(ok, 2)
	third := confidence(ok, 3)

	if !(first > second && second > third) {
		t.Errorf("confidence not decreasing: %v %v %v", first, second, third)
	}
	if first > 1 || third < 0 {
		t.Errorf("confidence out of range: %v %v", first, third)
	}
	if got := confidence(sandbox.Outcome{}, 3); got != 0 {
		t.Errorf("failure confidence = %v, want 0", got)
	}
}
