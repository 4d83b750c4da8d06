package routing

import "strings"

// deterministicCommands maps deterministic request phrases to the shell
// command that satisfies them directly, skipping the model entirely.
// Only phrases with one unambiguous command belong here.
var deterministicCommands = []struct {
	pattern string
	command string
}{
	{"list files", "ls -la"},
	{"show files", "ls -la"},
	{"git status", "git status"},
	{"git log", "git log --oneline -20"},
	{"git diff", "git diff"},
	{"git branch", "git branch -a"},
	{"docker ps", "docker ps"},
}

// DeterministicCommand returns the shell command for a deterministic
// request, when one is mapped. Deterministic requests without a mapped
// command fall back to the model tiers.
func DeterministicCommand(input string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, c := range deterministicCommands {
		if strings.Contains(lower, c.pattern) {
			return c.command, true
		}
	}
	return "", false
}
