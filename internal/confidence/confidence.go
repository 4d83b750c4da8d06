// Package confidence scores generated responses with a cheap syntactic
// heuristic. The score is not a calibrated probability; it exists to
// decide whether a local answer is trustworthy enough to keep or should
// be escalated to a stronger backend.
package confidence

import "strings"

const (
	base = 0.7

	uncertaintyPenalty = 0.15
	codeBlockBonus     = 0.10
	structureBonus     = 0.05
	mismatchPenalty    = 0.20

	longPromptLen = 100
	shortReplyLen = 50
)

// uncertaintyPhrases are hedges that reduce trust, matched
// case-insensitively as substrings.
var uncertaintyPhrases = []string{
	"i'm not sure",
	"i don't know",
	"might not",
	"possibly",
	"maybe",
}

// Score rates response trustworthiness in [0,1]. Deterministic and
// side-effect free: the same inputs always produce the same score.
func Score(response string, promptLen int) float64 {
	score := base
	lower := strings.ToLower(response)

	for _, phrase := range uncertaintyPhrases {
		score -= uncertaintyPenalty * float64(strings.Count(lower, phrase))
	}

	if strings.Contains(response, "```") {
		score += codeBlockBonus
	}

	if hasEnumeratedStructure(response) {
		score += structureBonus
	}

	// A long question answered tersely usually means the model dodged it.
	if promptLen > longPromptLen && len(response) < shortReplyLen {
		score -= mismatchPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// hasEnumeratedStructure detects bulleted or numbered lists.
func hasEnumeratedStructure(response string) bool {
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
		if len(trimmed) > 2 && trimmed[0] >= '0' && trimmed[0] <= '9' &&
			(trimmed[1] == '.' || trimmed[1] == ')') {
			return true
		}
	}
	return false
}
