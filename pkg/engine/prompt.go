package engine

import (
	"fmt"
	"strings"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/dataset"
	"github.com/rhuss/cortex/pkg/session"
)

// promptInput carries everything the prompt builder folds into one
// reasoner request.
type promptInput struct {
	schema    *dataset.Schema
	query     string
	chartHint string
	history   []session.Exchange
	lastErr   *api.EngineError
	hint      string
}

const promptPreamble = `You are a data analysis assistant. Answer the question by writing one
self-contained JavaScript (ES5) program. The program runs in a restricted
interpreter with these globals:

  rows     - array of row objects keyed by column name
  columns  - array of column names
  rowCount - number of rows
  print(...)  - print a line of output
  chart(spec) - record a chart: {type, title, labels, series: [{name, values}]}

Report your answer by printing it, assigning it to the variable result,
or calling chart(). Do not use require, eval, network access, or the
filesystem; such scripts are rejected. Variables from your earlier
programs in this conversation are still defined.

Respond with exactly one fenced code block containing the program and
nothing else.`

// buildPrompt assembles the full reasoner request: the execution
// contract, the dataset schema, conversational context, and, on a retry,
// the failing script with its error.
func buildPrompt(in promptInput) string {
	var b strings.Builder
	b.WriteString(promptPreamble)

	b.WriteString("\n\nDataset:\n")
	b.WriteString(in.schema.Summary())

	if matched := dataset.MatchColumns(in.schema, in.query); len(matched) > 0 {
		b.WriteString("\nColumns likely relevant to the question: ")
		b.WriteString(strings.Join(quoteAll(matched), ", "))
		b.WriteString("\n")
	}

	if len(in.history) > 0 {
		b.WriteString("\nEarlier in this conversation:\n")
		for _, ex := range in.history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", ex.Query, ex.Answer)
		}
	}

	if in.hint != "" && in.lastErr == nil {
		b.WriteString("\nA similar question was previously answered by this program. Adapt it\nonly if it fits; the data may have changed:\n```js\n")
		b.WriteString(in.hint)
		b.WriteString("\n```\n")
	}

	if in.lastErr != nil {
		fmt.Fprintf(&b, "\nYour previous program failed (%s): %s\n", in.lastErr.Kind, in.lastErr.Message)
		if in.lastErr.Script != "" {
			b.WriteString("```js\n")
			b.WriteString(in.lastErr.Script)
			b.WriteString("\n```\n")
		}
		b.WriteString("Write a corrected program that avoids this error.\n")
	}

	if in.chartHint != "" {
		b.WriteString("\nThe user wants a chart: call chart() with an appropriate spec.\n")
	}

	// The chart hint is appended to the question untouched; whatever
	// phrasing the caller detected reaches the reasoner as-is.
	b.WriteString("\nQuestion: ")
	b.WriteString(in.query)
	if in.chartHint != "" {
		b.WriteString(" ")
		b.WriteString(in.chartHint)
	}
	b.WriteString("\n")

	return b.String()
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
