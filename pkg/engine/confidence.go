package engine

import "github.com/rhuss/cortex/pkg/sandbox"

// confidence scores a successful answer in [0,1]. The score is a
// heuristic, not a calibrated probability: it starts high and decays
// with every corrective retry, since an answer that needed fixing is
// less likely to be right. A typed result or an explicit chart raises
// it slightly over free-form printed text.
func confidence(out sandbox.Outcome, attempts int) float64 {
	if !out.Success {
		return 0
	}

	score := 0.9 - 0.15*float64(attempts-1)

	if out.Value != nil || out.Chart != nil {
		score += 0.05
	}

	if score < 0.2 {
		score = 0.2
	}
	if score > 0.95 {
		score = 0.95
	}
	return score
}
