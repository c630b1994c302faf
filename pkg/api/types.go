package api

// ChartSpec is a transport-neutral, declarative description of a chart.
// The caller renders it interactively; the engine never rasterizes.
type ChartSpec struct {
	// Type is the chart kind: "bar", "line", "pie", "scatter".
	Type string `json:"type"`

	// Title is an optional human-readable chart title.
	Title string `json:"title,omitempty"`

	// XLabel and YLabel name the axes, when meaningful for the chart type.
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`

	// Labels holds the category labels along the X axis (or pie segments).
	Labels []string `json:"labels,omitempty"`

	// Series holds one or more named value sequences aligned with Labels.
	Series []ChartSeries `json:"series"`
}

// ChartSeries is one named sequence of values within a chart.
type ChartSeries struct {
	Name   string    `json:"name,omitempty"`
	Values []float64 `json:"values"`
}

// ResponseMetadata carries structured artifacts alongside the textual answer.
type ResponseMetadata struct {
	// Plot is the declarative chart produced by the executed script, if any.
	Plot *ChartSpec `json:"plot,omitempty"`

	// Image is an optional base64-encoded raster, for callers that cannot
	// render a ChartSpec themselves. The engine itself never populates it.
	Image string `json:"image,omitempty"`

	// Script is the script that produced the answer, retained for
	// transparency and debugging.
	Script string `json:"script,omitempty"`
}

// AnalysisResponse is the envelope returned for one user query, packaged
// once after the retry loop terminates.
type AnalysisResponse struct {
	// Result is the natural-language answer, or a failure message when
	// Success is false.
	Result string `json:"result"`

	// Confidence is a heuristic score in [0,1]. Zero on failure.
	Confidence float64 `json:"confidence"`

	Metadata ResponseMetadata `json:"metadata"`

	// TimeTaken is the wall-clock duration of the whole query in seconds.
	TimeTaken float64 `json:"time_taken"`

	// Attempts is the number of execution attempts consumed.
	Attempts int `json:"attempts"`

	Success bool `json:"success"`
}
