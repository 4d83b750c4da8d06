// Package guard decides whether a string is a plausible shell command
// or conversational prose a model emitted by mistake.
//
// The check is a heuristic classifier with false positives and false
// negatives by design. Its job is to keep hallucinated sentences out of
// the shell, not to guarantee a command is correct: a string it rejects
// is never executed, even if it would have run fine.
package guard

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the validation outcome for one candidate command.
type Verdict struct {
	Valid  bool
	Reason string
}

// knownCommands short-circuits acceptance for common shell utilities.
var knownCommands = map[string]bool{
	"ls": true, "cd": true, "pwd": true, "echo": true, "cat": true,
	"head": true, "tail": true, "grep": true, "find": true, "mkdir": true,
	"rm": true, "cp": true, "mv": true, "touch": true, "chmod": true,
	"chown": true, "curl": true, "wget": true, "git": true, "npm": true,
	"node": true, "python": true, "python3": true, "pip": true, "pip3": true,
	"cargo": true, "rustc": true, "go": true, "java": true, "make": true,
	"cmake": true, "docker": true, "kubectl": true, "ssh": true, "scp": true,
	"tar": true, "zip": true, "unzip": true, "gzip": true, "awk": true,
	"sed": true, "sort": true, "uniq": true, "wc": true, "diff": true,
	"date": true, "cal": true, "whoami": true, "hostname": true, "uname": true,
	"df": true, "du": true, "ps": true, "top": true, "htop": true,
	"kill": true, "pkill": true, "which": true, "whereis": true, "file": true,
	"stat": true, "test": true, "export": true, "env": true, "alias": true,
	"source": true, "bash": true, "sh": true, "zsh": true, "brew": true,
	"apt": true, "yum": true, "dnf": true, "pacman": true, "systemctl": true,
	"service": true, "journalctl": true, "crontab": true, "nohup": true,
	"screen": true, "tmux": true, "less": true, "more": true, "man": true,
	"xargs": true, "tee": true, "cut": true, "paste": true, "tr": true,
	"base64": true, "sha256sum": true, "openssl": true, "jq": true, "yq": true,
	"gcc": true, "lsof": true, "netstat": true, "ping": true, "dig": true,
	"nc": true, "rsync": true, "mount": true, "open": true, "sqlite3": true,
	"psql": true, "mysql": true, "redis-cli": true, "ffmpeg": true,
	"rg": true, "fd": true, "bat": true, "fzf": true, "locate": true,
	"printf": true, "read": true, "eval": true, "exec": true, "wait": true,
	"free": true, "uptime": true, "vmstat": true, "iostat": true,
}

// conversationalStarters are first words that mark prose, not commands:
// pronouns, auxiliaries, discourse markers, conjunctions.
var conversationalStarters = map[string]bool{
	"i": true, "you": true, "he": true, "she": true, "it": true,
	"we": true, "they": true, "this": true, "that": true, "there": true,
	"here": true, "what": true, "when": true, "where": true, "why": true,
	"how": true, "who": true, "which": true, "whose": true,
	"would": true, "could": true, "should": true, "might": true,
	"must": true, "will": true, "shall": true, "may": true,
	"am": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"please": true, "sorry": true, "thank": true, "thanks": true,
	"okay": true, "ok": true, "yes": true, "no": true, "yeah": true,
	"the": true, "a": true, "an": true, "my": true, "your": true,
	"its": true, "our": true, "their": true,
	"actually": true, "basically": true, "certainly": true, "clearly": true,
	"definitely": true, "generally": true, "honestly": true, "hopefully": true,
	"perhaps": true, "probably": true, "really": true, "simply": true,
	"typically": true, "usually": true, "unfortunately": true, "well": true,
	"maybe": true, "however": true, "therefore": true, "thus": true,
	"instead": true, "otherwise": true, "meanwhile": true, "moreover": true,
	"furthermore": true, "nevertheless": true,
	"let": true, "let's": true, "but": true, "and": true, "or": true,
	"so": true, "because": true, "although": true, "since": true,
	"after": true, "before": true, "during": true, "until": true,
	"while": true, "if": true, "unless": true, "whether": true,
	"help": true, "can": true, "cannot": true, "don't": true, "doesn't": true,
	"here's": true, "there's": true, "that's": true, "it's": true,
	"i'm": true, "i've": true, "i'll": true, "i'd": true,
	"you're": true, "we're": true, "they're": true,
	"now": true, "then": true, "also": true, "just": true, "only": true,
	"still": true, "already": true, "yet": true, "first": true, "next": true,
	"finally": true, "sure": true, "of": true, "to": true, "for": true,
	"with": true, "at": true, "in": true, "on": true, "from": true,
	"by": true, "about": true, "into": true, "through": true,
	"need": true, "want": true, "think": true, "know": true, "see": true,
	"try": true, "give": true, "tell": true, "show": true, "look": true,
}

// identifierRe matches a command-shaped first token.
var identifierRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// shellOperators are characters prose almost never contains.
var shellOperators = []string{"|", "&&", ";", "$", "`"}

// Validate classifies candidate as command or prose.
func Validate(candidate string) Verdict {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return reject("command is empty")
	}

	words := strings.Fields(trimmed)
	first := strings.ToLower(words[0])

	if knownCommands[first] {
		return Verdict{Valid: true}
	}

	if conversationalStarters[first] {
		return reject(fmt.Sprintf("starts with conversational word %q", first))
	}

	// Sentences end in punctuation; command lines do not, unless the
	// "punctuation" is really a path argument like "grep pattern .".
	if endsLikeSentence(trimmed) && !hasPathPrefix(trimmed) {
		return reject("ends with sentence punctuation")
	}

	if hasPathPrefix(trimmed) {
		return Verdict{Valid: true}
	}

	if len(words) > 10 && !containsShellOperator(trimmed) {
		return reject("long phrase without shell operators")
	}

	if len(words) > 3 && !identifierRe.MatchString(words[0]) && !hasPathPrefix(words[0]) {
		return reject(fmt.Sprintf("first token %q does not look like a command", words[0]))
	}

	return Verdict{Valid: true}
}

func reject(reason string) Verdict {
	return Verdict{Valid: false, Reason: reason}
}

func endsLikeSentence(s string) bool {
	if strings.HasSuffix(s, " .") {
		return false // trailing dot is a path argument
	}
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func hasPathPrefix(s string) bool {
	return strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "~") || strings.HasPrefix(s, "[")
}

func containsShellOperator(s string) bool {
	for _, op := range shellOperators {
		if strings.Contains(s, op) {
			return true
		}
	}
	return false
}
