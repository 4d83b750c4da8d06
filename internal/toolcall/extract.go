// Package toolcall parses structured action requests out of free-form
// model output.
//
// Small local models emit tool calls in wildly different shapes: clean
// JSON, JSON wrapped in markdown fences, one object per line between
// prose, or a bare shell command in a ```bash block. Extraction applies
// three strategies in priority order and the first non-empty result
// wins. An empty result is not an error: it means the model explained
// instead of acting.
package toolcall

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RawToolCall is an action request as extracted, before execution.
type RawToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

var (
	fenceRe      = regexp.MustCompile("(?s)```([a-zA-Z0-9_-]*)\n(.*?)```")
	narrowToolRe = regexp.MustCompile(`"tool"\s*:\s*"([^"]+)"`)
	narrowArgsRe = regexp.MustCompile(`(?s)"args"\s*:\s*(\{.*?\})`)
)

var shellFenceLangs = map[string]bool{
	"bash": true, "sh": true, "zsh": true, "shell": true,
}

// Extract finds tool calls in model output, in order of appearance.
// The strategy order is deliberate and pinned by tests; a shell block
// that also parses as JSON is claimed by the structured strategies.
func Extract(output string) []RawToolCall {
	if calls := extractStructured(output); len(calls) > 0 {
		return calls
	}
	if calls := extractLines(output); len(calls) > 0 {
		return calls
	}
	return extractShellBlocks(output)
}

// extractStructured scans the raw text plus fence-stripped block
// contents for JSON objects carrying a tool key.
func extractStructured(output string) []RawToolCall {
	text := output
	for _, m := range fenceRe.FindAllStringSubmatch(output, -1) {
		text += "\n" + m[2]
	}

	var calls []RawToolCall
	seen := map[string]bool{}
	for _, candidate := range scanObjects(text) {
		if !strings.Contains(candidate, `"tool"`) {
			continue
		}
		call, ok := parseCandidate(candidate)
		if !ok {
			continue
		}
		key := fingerprint(call)
		if seen[key] {
			continue
		}
		seen[key] = true
		calls = append(calls, call)
	}
	return calls
}

// parseCandidate tries a strict parse, then a narrower regex pull of
// just the tool name and args object.
func parseCandidate(candidate string) (RawToolCall, bool) {
	var call RawToolCall
	if err := json.Unmarshal([]byte(candidate), &call); err == nil && call.Tool != "" {
		if call.Args == nil {
			call.Args = map[string]any{}
		}
		return call, true
	}

	toolMatch := narrowToolRe.FindStringSubmatch(candidate)
	if toolMatch == nil {
		return RawToolCall{}, false
	}
	call = RawToolCall{Tool: toolMatch[1], Args: map[string]any{}}
	if argsMatch := narrowArgsRe.FindStringSubmatch(candidate); argsMatch != nil {
		var args map[string]any
		if err := json.Unmarshal([]byte(argsMatch[1]), &args); err == nil {
			call.Args = args
		}
	}
	return call, true
}

// extractLines tolerates models that emit one clean object per line
// surrounded by prose.
func extractLines(output string) []RawToolCall {
	var calls []RawToolCall
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
			continue
		}
		if !strings.Contains(trimmed, `"tool"`) {
			continue
		}
		var call RawToolCall
		if err := json.Unmarshal([]byte(trimmed), &call); err != nil || call.Tool == "" {
			continue
		}
		if call.Args == nil {
			call.Args = map[string]any{}
		}
		calls = append(calls, call)
	}
	return calls
}

// extractShellBlocks treats a single-line shell-tagged fence as an
// implicit execute_shell request.
func extractShellBlocks(output string) []RawToolCall {
	var calls []RawToolCall
	for _, m := range fenceRe.FindAllStringSubmatch(output, -1) {
		lang := strings.ToLower(m[1])
		if !shellFenceLangs[lang] {
			continue
		}
		body := strings.TrimSpace(m[2])
		if body == "" || strings.Contains(body, "\n") {
			continue
		}
		calls = append(calls, RawToolCall{
			Tool: "execute_shell",
			Args: map[string]any{"command": body},
		})
	}
	return calls
}

// scanObjects returns balanced top-level {...} substrings of text.
// String literals are honored so braces inside quoted values do not
// unbalance the scan.
func scanObjects(text string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, text[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

func fingerprint(call RawToolCall) string {
	args, _ := json.Marshal(call.Args)
	return call.Tool + "\x00" + string(args)
}
