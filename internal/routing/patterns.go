package routing

import "strings"

// Pattern tables. Substring match against lowercased input, first match
// wins within a table. Tables are checked in priority order:
// deterministic, conversational, template, search, generative.

var deterministicPatterns = []struct {
	pattern string
	typ     RequestType
}{
	{"list files", TypeShellCommand},
	{"show files", TypeShellCommand},
	{"git status", TypeShellCommand},
	{"git log", TypeShellCommand},
	{"git diff", TypeShellCommand},
	{"git branch", TypeShellCommand},
	{"run build", TypeShellCommand},
	{"run test", TypeShellCommand},
	{"npm install", TypeShellCommand},
	{"cargo build", TypeShellCommand},
	{"docker ps", TypeShellCommand},
	{"kill process", TypeShellCommand},

	{"read file", TypeFileOperation},
	{"open file", TypeFileOperation},
	{"delete file", TypeFileOperation},
	{"create directory", TypeFileOperation},
	{"move file", TypeFileOperation},
	{"copy file", TypeFileOperation},
	{"rename file", TypeFileOperation},

	{"go to ", TypeNavigation},
	{"navigate to", TypeNavigation},
	{"open folder", TypeNavigation},
	{"cd ", TypeNavigation},
}

var templatePatterns = []struct {
	patterns []string
	typ      RequestType
	template string
}{
	{[]string{"react component", "create component", "new component"}, TypeCodeGeneration, "react_component"},
	{[]string{"create hook", "custom hook", "react hook"}, TypeCodeGeneration, "react_hook"},
	{[]string{"create endpoint", "add endpoint", "api endpoint", "rest endpoint"}, TypeBoilerplate, "api_endpoint"},
	{[]string{"create route", "add route", "new route"}, TypeBoilerplate, "api_route"},
	{[]string{"write test", "add test", "create test", "unit test", "test for"}, TypeTestGeneration, "unit_test"},
	{[]string{"integration test", "e2e test", "end to end"}, TypeTestGeneration, "integration_test"},
	{[]string{"create struct", "new struct"}, TypeCodeGeneration, "struct"},
	{[]string{"create class", "new class"}, TypeCodeGeneration, "class"},
	{[]string{"create interface", "new interface"}, TypeCodeGeneration, "interface"},
	{[]string{"create module", "new module", "add module"}, TypeBoilerplate, "module"},
	{[]string{"config file", "configuration file", "create config"}, TypeBoilerplate, "config"},
	{[]string{"dockerfile", "docker compose"}, TypeBoilerplate, "docker"},
	{[]string{"github action", "ci pipeline", "workflow file"}, TypeBoilerplate, "ci_pipeline"},
}

var searchPatterns = []struct {
	pattern string
	typ     RequestType
}{
	{"where is", TypeCodeSearch},
	{"where does", TypeCodeSearch},
	{"find where", TypeCodeSearch},
	{"locate", TypeCodeSearch},
	{"search for", TypeCodeSearch},

	{"what does", TypeExplanation},
	{"how does", TypeExplanation},
	{"explain", TypeExplanation},

	{"how to", TypeDocumentation},
	{"how do i", TypeDocumentation},
	{"show me how", TypeDocumentation},
}

var generativePatterns = []struct {
	pattern string
	typ     RequestType
}{
	{"fix", TypeBugFix},
	{"debug", TypeBugFix},
	{"error", TypeBugFix},
	{"broken", TypeBugFix},
	{"not working", TypeBugFix},

	{"refactor", TypeRefactor},
	{"improve", TypeRefactor},
	{"optimize", TypeRefactor},
	{"clean up", TypeRefactor},
	{"simplify", TypeRefactor},

	{"implement", TypeCodeGeneration},
	{"build", TypeCodeGeneration},
	{"design", TypeCodeGeneration},
	{"write", TypeCodeGeneration},
}

var conversationalPatterns = []string{
	"hi", "hello", "hey", "howdy",
	"good morning", "good afternoon", "good evening",
	"what's up", "how are you", "how's it going",
	"who are you", "what are you", "what can you do",
	"thanks", "thank you", "got it", "okay", "cool",
	"bye", "goodbye", "see you",
	"daily brief", "status update", "what's pending",
	"summary", "overview", "priorities",
}

var complexIndicators = []string{
	"refactor", "redesign", "architect", "optimize",
	"implement from scratch", "build a complete",
	"complex", "advanced", "sophisticated",
	"multiple files", "entire", "whole system",
}

func matchDeterministic(input string) (RequestType, bool) {
	for _, p := range deterministicPatterns {
		if strings.Contains(input, p.pattern) {
			return p.typ, true
		}
	}
	return TypeUnknown, false
}

func matchTemplate(input string) (RequestType, string, bool) {
	for _, t := range templatePatterns {
		for _, p := range t.patterns {
			if strings.Contains(input, p) {
				return t.typ, t.template, true
			}
		}
	}
	return TypeUnknown, "", false
}

func matchSearch(input string) (RequestType, bool) {
	for _, p := range searchPatterns {
		if strings.Contains(input, p.pattern) {
			return p.typ, true
		}
	}
	return TypeUnknown, false
}

func matchGenerative(input string) (RequestType, bool) {
	for _, p := range generativePatterns {
		if strings.Contains(input, p.pattern) {
			return p.typ, true
		}
	}
	return TypeUnknown, false
}

// isConversational detects greetings and status chatter. Single-word
// patterns must match a whole word; "hi" firing inside "something"
// would misroute real work as chatter and suppress escalation.
// Status queries may be longer than greetings before the pattern stops
// applying.
func isConversational(input string) bool {
	words := strings.Fields(input)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?;:'\"")] = true
	}

	matched := false
	for _, p := range conversationalPatterns {
		if strings.Contains(p, " ") {
			if strings.Contains(input, p) {
				matched = true
				break
			}
		} else if wordSet[p] {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	statusQuery := strings.Contains(input, "brief") ||
		strings.Contains(input, "status") ||
		strings.Contains(input, "summary") ||
		strings.Contains(input, "overview")
	if statusQuery {
		return len(words) <= 15
	}
	return len(words) <= 8
}

func isComplex(input string) bool {
	for _, ind := range complexIndicators {
		if strings.Contains(input, ind) {
			return true
		}
	}
	return false
}
