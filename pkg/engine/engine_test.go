package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rhuss/cortex/pkg/dataset"
	"github.com/rhuss/cortex/pkg/history/memstore"
	"github.com/rhuss/cortex/pkg/provider"
	"github.com/rhuss/cortex/pkg/session"
)

// mockReasoner replays canned completions and records every prompt it
// received.
type mockReasoner struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

func (m *mockReasoner) Name() string { return "mock" }

func (m *mockReasoner) Complete(_ context.Context, req *provider.Request) (*provider.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Prompt)
	i := len(m.prompts) - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return &provider.Response{Text: m.responses[i], Model: "mock-model"}, nil
}

func (m *mockReasoner) Close() error { return nil }

func (m *mockReasoner) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockReasoner) prompt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[i]
}

func fenced(script string) string {
	return "Here you go:\n```js\n" + script + "\n```"
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("tolls", []dataset.Column{
		{Name: "Toll Name", Values: []any{"North", "South", "East"}},
		{Name: "Revenue", Values: []any{1200.5, 980.0, 1500.25}},
	})
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	return ds
}

// setup builds an engine over one session and returns both plus the
// history store.
func setup(t *testing.T, r provider.Reasoner) (*Engine, *session.Session, *memstore.Store) {
	t.Helper()

	sessions := session.NewStore(time.Minute, nil)
	sess, err := sessions.Create(testDataset(t))
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	hist := memstore.New(0)
	eng, err := New(r, sessions, hist, nil, Config{ExecTimeout: time.Second})
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	return eng, sess, hist
}

func TestAskSucceedsFirstAttempt(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`
		var total = 0;
		for (var i = 0; i < rows.length; i++) { total += rows[i]["Revenue"]; }
		print("Total revenue: " + total);
	`)}}
	eng, sess, hist := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "total revenue"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if !resp.Success {
		t.Fatalf("success = false, result = %q", resp.Result)
	}
	if resp.Result != "Total revenue: 3680.75" {
		t.Errorf("result = %q", resp.Result)
	}
	if resp.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", resp.Attempts)
	}
	if resp.Confidence <= 0.8 {
		t.Errorf("confidence = %v, want > 0.8 for a first-attempt success", resp.Confidence)
	}
	if resp.Metadata.Script == "" {
		t.Error("metadata.script is empty")
	}
	if resp.TimeTaken <= 0 {
		t.Errorf("time_taken = %v", resp.TimeTaken)
	}

	entries, err := hist.List(context.Background(), sess.ID(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || !entries[0].Response.Success {
		t.Errorf("history entries = %+v", entries)
	}
}

func TestAskRetriesAfterRuntimeError(t *testing.T) {
	r := &mockReasoner{responses: []string{
		fenced(`result = rows[0]["No Such Column"].toFixed(2);`),
		fenced(`result = rows[0]["Revenue"];`),
	}}
	eng, sess, _ := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "first revenue"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if !resp.Success {
		t.Fatalf("success = false, result = %q", resp.Result)
	}
	if resp.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", resp.Attempts)
	}
	if r.calls() != 2 {
		t.Errorf("reasoner calls = %d, want 2", r.calls())
	}

	// The corrective prompt must carry the failure and the failing script.
	second := r.prompt(1)
	if !strings.Contains(second, "runtime_error") {
		t.Errorf("corrective prompt missing error kind:\n%s", second)
	}
	if !strings.Contains(second, "No Such Column") {
		t.Errorf("corrective prompt missing failing script:\n%s", second)
	}

	// Retried answers are reported with lower confidence.
	if resp.Confidence >= 0.9 {
		t.Errorf("confidence = %v, want < 0.9 after a retry", resp.Confidence)
	}
}

func TestAskExhaustsAttempts(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`result = alwaysMissing();`)}}
	eng, sess, hist := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "impossible"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Success {
		t.Fatal("success = true, want failure")
	}
	if resp.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", resp.Attempts)
	}
	if resp.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 on failure", resp.Confidence)
	}
	if r.calls() != 3 {
		t.Errorf("reasoner calls = %d, want 3", r.calls())
	}

	// Failed turns are audited too.
	entries, _ := hist.List(context.Background(), sess.ID(), 0)
	if len(entries) != 1 || entries[0].Response.Success {
		t.Errorf("history entries = %+v", entries)
	}
}

func TestAskNoScriptAbortsWithoutRetry(t *testing.T) {
	r := &mockReasoner{responses: []string{"The total revenue is 3680.75."}}
	eng, sess, _ := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "total revenue"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Success {
		t.Fatal("success = true, want failure")
	}
	if resp.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 (nothing executed)", resp.Attempts)
	}
	if r.calls() != 1 {
		t.Errorf("reasoner calls = %d, want 1 (no retry without an error to correct)", r.calls())
	}
}

func TestAskPolicyRejectionDoesNotConsumeAttempt(t *testing.T) {
	r := &mockReasoner{responses: []string{
		fenced(`result = eval("1+1");`),
		fenced(`result = 2;`),
	}}
	eng, sess, _ := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "one plus one"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if !resp.Success {
		t.Fatalf("success = false, result = %q", resp.Result)
	}
	if resp.Attempts != 1 {
		t.Errorf("attempts = %d, want 1: rejection must not consume an attempt", resp.Attempts)
	}

	second := r.prompt(1)
	if !strings.Contains(second, "policy_violation") {
		t.Errorf("corrective prompt missing rejection:\n%s", second)
	}
}

func TestAskPolicyLoopIsBounded(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`result = eval("1+1");`)}}
	eng, sess, _ := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "one plus one"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Success {
		t.Fatal("success = true, want failure")
	}
	if resp.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", resp.Attempts)
	}
	// Default bound: initial generation plus two regenerations.
	if r.calls() != 3 {
		t.Errorf("reasoner calls = %d, want 3", r.calls())
	}
}

func TestAskChartProducesPlotMetadata(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`
		var labels = [], values = [];
		for (var i = 0; i < rows.length; i++) {
			labels.push(rows[i]["Toll Name"]);
			values.push(rows[i]["Revenue"]);
		}
		chart({type: "bar", title: "Revenue by toll", labels: labels,
		       series: [{name: "Revenue", values: values}]});
	`)}}
	eng, sess, _ := setup(t, r)

	resp, err := eng.Ask(context.Background(), Query{
		SessionID: sess.ID(),
		Text:      "revenue per toll",
		ChartHint: "as a bar chart",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if !resp.Success {
		t.Fatalf("success = false, result = %q", resp.Result)
	}
	if resp.Metadata.Plot == nil {
		t.Fatal("metadata.plot is nil")
	}
	if resp.Metadata.Plot.Type != "bar" {
		t.Errorf("plot type = %q", resp.Metadata.Plot.Type)
	}
	if !strings.Contains(r.prompt(0), "wants a chart") {
		t.Error("prompt does not ask for a chart")
	}
}

func TestAskChartHintAppendedVerbatim(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`print("ok");`)}}
	eng, sess, _ := setup(t, r)

	_, err := eng.Ask(context.Background(), Query{
		SessionID: sess.ID(),
		Text:      "revenue per toll",
		ChartHint: "as a pie chart",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	p := r.prompt(0)
	if !strings.Contains(p, "Question: revenue per toll as a pie chart") {
		t.Errorf("hint not appended to the question:\n%s", p)
	}
}

func TestAskStatePersistsAcrossQueries(t *testing.T) {
	r := &mockReasoner{responses: []string{
		fenced(`var cachedTotal = 3680.75; result = cachedTotal;`),
		fenced(`result = cachedTotal / rowCount;`),
	}}
	eng, sess, _ := setup(t, r)
	ctx := context.Background()

	first, err := eng.Ask(ctx, Query{SessionID: sess.ID(), Text: "total revenue"})
	if err != nil || !first.Success {
		t.Fatalf("first Ask: err=%v resp=%+v", err, first)
	}

	second, err := eng.Ask(ctx, Query{SessionID: sess.ID(), Text: "average revenue"})
	if err != nil {
		t.Fatalf("second Ask: %v", err)
	}
	if !second.Success {
		t.Fatalf("second query failed: %q", second.Result)
	}
	if !strings.HasPrefix(second.Result, "1226.91") {
		t.Errorf("result = %q", second.Result)
	}
}

func TestAskFollowUpPromptCarriesHistory(t *testing.T) {
	r := &mockReasoner{responses: []string{
		fenced(`print("42 rows match");`),
		fenced(`print("second answer");`),
	}}
	eng, sess, _ := setup(t, r)
	ctx := context.Background()

	if _, err := eng.Ask(ctx, Query{SessionID: sess.ID(), Text: "how many rows match"}); err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	if _, err := eng.Ask(ctx, Query{SessionID: sess.ID(), Text: "and of those?"}); err != nil {
		t.Fatalf("second Ask: %v", err)
	}

	second := r.prompt(1)
	if !strings.Contains(second, "how many rows match") || !strings.Contains(second, "42 rows match") {
		t.Errorf("follow-up prompt missing earlier exchange:\n%s", second)
	}
}

func TestAskUnknownSession(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`result = 1;`)}}
	eng, _, _ := setup(t, r)

	if _, err := eng.Ask(context.Background(), Query{SessionID: "sess_missing", Text: "x"}); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestPromptNamesRelevantColumns(t *testing.T) {
	r := &mockReasoner{responses: []string{fenced(`print("ok");`)}}
	eng, sess, _ := setup(t, r)

	if _, err := eng.Ask(context.Background(), Query{SessionID: sess.ID(), Text: "revenue by toll name"}); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	p := r.prompt(0)
	if !strings.Contains(p, `"Revenue"`) || !strings.Contains(p, `"Toll Name"`) {
		t.Errorf("prompt missing relevant columns:\n%s", p)
	}
}
