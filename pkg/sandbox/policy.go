package sandbox

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rhuss/cortex/pkg/api"
)

// deniedTokens are names whose presence anywhere in a script rejects it
// before execution. The scan is a static pre-check, not a runtime trap:
// the goal is to refuse attempted misuse, not merely contain it after the
// fact. Matching is case-sensitive on word boundaries, so a column label
// like "Process Step" does not trip the lowercase "process" entry. A
// false positive is surfaced in the corrective prompt and regenerated.
var deniedTokens = []string{
	// Host command execution and process spawning.
	"exec", "spawn", "system", "execSync", "spawnSync", "child_process",
	// Module and runtime escape hatches.
	"require", "process", "globalThis", "eval", "Function", "import",
	// Filesystem deletion.
	"unlink", "unlinkSync", "rmdir", "rmdirSync", "rm -rf",
	// Network egress.
	"fetch", "XMLHttpRequest", "WebSocket",
}

var denyPattern = buildDenyPattern()

func buildDenyPattern() *regexp.Regexp {
	quoted := make([]string, len(deniedTokens))
	for i, t := range deniedTokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(^|\W)(` + strings.Join(quoted, "|") + `)(\W|$)`)
}

// CheckPolicy scans a script against the deny-list. A hit yields a
// PolicyViolation error naming the disallowed token; the namespace is
// never touched.
func CheckPolicy(script string) *api.EngineError {
	m := denyPattern.FindStringSubmatch(script)
	if m == nil {
		return nil
	}
	return api.NewPolicyError(
		fmt.Sprintf("script references disallowed facility %q", m[2]),
		script,
	)
}

// ReviewOutput rejects scripts with no observable output channel: no
// print call, no chart call, and no result binding. Such a script would
// execute and answer nothing, so it is bounced back to the reasoner
// before consuming an attempt.
func ReviewOutput(script string) *api.EngineError {
	if strings.Contains(script, "print(") ||
		strings.Contains(script, "chart(") ||
		strings.Contains(script, "result") {
		return nil
	}
	return api.NewPolicyError(
		"script produces no output: call print(), call chart(), or assign result",
		script,
	)
}
