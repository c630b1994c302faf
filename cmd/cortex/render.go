package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/dataset"
)

// renderResponse prints one answer envelope to the terminal.
func renderResponse(resp *api.AnalysisResponse, showScript bool) {
	if !resp.Success {
		title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Analysis Failed")
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(resp.Result))
		return
	}

	pterm.Println()
	pterm.Println(resp.Result)
	pterm.Println()

	if resp.Metadata.Plot != nil {
		renderChart(resp.Metadata.Plot)
	}

	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf(
		"confidence %.2f · %s · %.2fs",
		resp.Confidence, attemptsLabel(resp.Attempts), resp.TimeTaken))

	if showScript && resp.Metadata.Script != "" {
		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Script"))
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(resp.Metadata.Script))
	}
}

func attemptsLabel(n int) string {
	if n == 1 {
		return "1 attempt"
	}
	return fmt.Sprintf("%d attempts", n)
}

// renderChart draws the declarative chart as terminal output: bar charts
// through pterm's bar renderer, everything else as an aligned table.
func renderChart(spec *api.ChartSpec) {
	if spec.Title != "" {
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(spec.Title))
	}

	if spec.Type == "bar" && len(spec.Series) == 1 {
		bars := make([]pterm.Bar, 0, len(spec.Series[0].Values))
		for i, v := range spec.Series[0].Values {
			bars = append(bars, pterm.Bar{
				Label: chartLabel(spec.Labels, i),
				Value: int(v),
			})
		}
		if err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render(); err == nil {
			pterm.Println()
			return
		}
	}

	renderChartTable(spec)
	pterm.Println()
}

func renderChartTable(spec *api.ChartSpec) {
	header := []string{firstNonEmpty(spec.XLabel, "label")}
	for i, s := range spec.Series {
		header = append(header, firstNonEmpty(s.Name, spec.YLabel, "series "+strconv.Itoa(i+1)))
	}

	rows := pterm.TableData{header}
	n := 0
	for _, s := range spec.Series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	for i := 0; i < n; i++ {
		row := []string{chartLabel(spec.Labels, i)}
		for _, s := range spec.Series {
			if i < len(s.Values) {
				row = append(row, strconv.FormatFloat(s.Values[i], 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func chartLabel(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(i + 1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// renderSchema prints the dataset schema as a table.
func renderSchema(schema *dataset.Schema) {
	rows := pterm.TableData{{"Column", "Type", "Example"}}
	for _, c := range schema.Columns {
		rows = append(rows, []string{c.Name, string(c.Type), c.Example})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("%d rows", schema.Rows))
}

// promptStyle is the REPL input marker.
func promptStyle() string {
	return pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("cortex> ")
}

func trimQuery(s string) string {
	return strings.TrimSpace(s)
}
