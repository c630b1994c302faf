package provider

import (
	"regexp"
	"strings"

	"github.com/rhuss/cortex/pkg/api"
)

// fencedBlock matches the first triple-backtick block, tolerating an
// optional language tag on the opening fence.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\n(.*?)```")

// ExtractScript pulls the executable script out of a reasoner completion.
// The contract is one fenced code block per response; when the response
// carries several, the first wins and the rest are ignored. A response
// with no fenced block at all is a fatal NoScriptFound failure for the
// turn, never retried.
func ExtractScript(completion string) (string, *api.EngineError) {
	m := fencedBlock.FindStringSubmatch(completion)
	if m == nil {
		return "", api.NewNoScriptError("reasoner response contains no fenced code block")
	}
	script := strings.TrimSpace(m[1])
	if script == "" {
		return "", api.NewNoScriptError("reasoner response contains an empty code block")
	}
	return script, nil
}
