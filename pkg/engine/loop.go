package engine

import (
	"context"
	"time"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/observability"
	"github.com/rhuss/cortex/pkg/provider"
	"github.com/rhuss/cortex/pkg/sandbox"
	"github.com/rhuss/cortex/pkg/session"
)

// loopState is the orchestrator's position in the generate-execute-
// evaluate cycle.
type loopState int

const (
	stateGenerating loopState = iota
	stateExecuting
	stateEvaluating
	stateSucceeded
	stateExhausted
)

// runLoop drives one query through the retry cycle. Attempts count
// executions: a deny-list rejection regenerates without consuming an
// attempt (nothing ran), bounded separately; a reasoner response with no
// script at all aborts the turn outright.
func (e *Engine) runLoop(ctx context.Context, sess *session.Session, q Query) (*api.AnalysisResponse, error) {
	var (
		st            = stateGenerating
		attempts      int
		policyRejects int
		lastErr       *api.EngineError
		script        string
		out           sandbox.Outcome
	)

	hint, hasHint := e.memory.Recall(q.Text)

	for {
		switch st {
		case stateGenerating:
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			prompt := buildPrompt(promptInput{
				schema:    sess.Schema(),
				query:     q.Text,
				chartHint: q.ChartHint,
				history:   sess.History(e.cfg.historyWindow()),
				lastErr:   lastErr,
				hint:      hintScript(hint.Script, hasHint),
			})

			completion, err := e.complete(ctx, prompt)
			if err != nil {
				return nil, err
			}

			var serr *api.EngineError
			script, serr = provider.ExtractScript(completion)
			if serr != nil {
				// Fatal for the turn: retrying without an error to correct
				// would just repeat the same request.
				out = sandbox.Outcome{Kind: serr.Kind, Message: serr.Message}
				st = stateExhausted
				continue
			}

			if perr := screen(script); perr != nil {
				observability.ExecutionsTotal.WithLabelValues(string(perr.Kind)).Inc()
				policyRejects++
				if policyRejects > e.cfg.maxPolicyRejections() {
					out = sandbox.Outcome{Kind: perr.Kind, Message: perr.Message, Script: script}
					st = stateExhausted
					continue
				}
				e.logger.Info("script rejected before execution",
					"session_id", sess.ID(),
					"reason", perr.Message)
				lastErr = perr
				continue
			}

			st = stateExecuting

		case stateExecuting:
			attempts++
			out = sess.Execute(ctx, e.sandbox, script)

			if out.Success {
				observability.ExecutionsTotal.WithLabelValues("success").Inc()
			} else {
				observability.ExecutionsTotal.WithLabelValues(string(out.Kind)).Inc()
			}

			st = stateEvaluating

		case stateEvaluating:
			if out.Success {
				st = stateSucceeded
				continue
			}
			e.logger.Info("script attempt failed",
				"session_id", sess.ID(),
				"attempt", attempts,
				"kind", out.Kind,
				"error", out.Message)
			if out.Kind.Retryable() && attempts < e.cfg.maxAttempts() {
				lastErr = out.Err()
				st = stateGenerating
				continue
			}
			st = stateExhausted

		case stateSucceeded:
			observability.QueriesTotal.WithLabelValues("success").Inc()
			observability.QueryAttempts.Observe(float64(attempts))
			return e.succeed(out, attempts), nil

		case stateExhausted:
			observability.QueriesTotal.WithLabelValues("failure").Inc()
			observability.QueryAttempts.Observe(float64(attempts))
			return fail(out, attempts), nil
		}
	}
}

// screen runs the pre-execution checks: the deny-list and the output
// review. Both feed the corrective prompt without consuming an attempt.
func screen(script string) *api.EngineError {
	if perr := sandbox.CheckPolicy(script); perr != nil {
		return perr
	}
	return sandbox.ReviewOutput(script)
}

// complete calls the reasoning backend and records its latency.
func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	backend := e.reasoner.Name()
	start := time.Now()

	resp, err := e.reasoner.Complete(ctx, &provider.Request{
		Prompt:      prompt,
		Model:       e.cfg.Model,
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})

	observability.ReasonerLatency.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ReasonerRequestsTotal.WithLabelValues(backend, "error").Inc()
		return "", err
	}
	observability.ReasonerRequestsTotal.WithLabelValues(backend, "success").Inc()

	return resp.Text, nil
}

// succeed packages a successful outcome into the response envelope.
func (e *Engine) succeed(out sandbox.Outcome, attempts int) *api.AnalysisResponse {
	result := interpret(out, e.cfg.resultLimit())
	return &api.AnalysisResponse{
		Result:     result,
		Confidence: confidence(out, attempts),
		Metadata: api.ResponseMetadata{
			Plot:   out.Chart,
			Script: out.Script,
		},
		Attempts: attempts,
		Success:  true,
	}
}

// fail packages a terminal failure into the response envelope.
func fail(out sandbox.Outcome, attempts int) *api.AnalysisResponse {
	return &api.AnalysisResponse{
		Result:     failureMessage(out),
		Confidence: 0,
		Metadata: api.ResponseMetadata{
			Script: out.Script,
		},
		Attempts: attempts,
		Success:  false,
	}
}

func failureMessage(out sandbox.Outcome) string {
	switch out.Kind {
	case api.FailureNoScript:
		return "I could not produce an executable analysis for this question. Try rephrasing it."
	case api.FailurePolicy:
		return "The generated analysis kept requesting facilities that are not allowed in the sandbox."
	case api.FailureTimeout:
		return "The analysis did not finish within the time limit. Try a narrower question."
	default:
		return "The analysis failed after exhausting all attempts: " + out.Message
	}
}

func hintScript(script string, ok bool) string {
	if !ok {
		return ""
	}
	return script
}
