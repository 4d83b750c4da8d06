package files

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/oakworth/steward/internal/agent"
)

const (
	maxGlobResults = 500
	maxGrepMatches = 200
	maxGrepLine    = 500
)

// skipDirs are never descended into during glob or grep walks.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".cache":       true,
}

// GlobTool lists workspace files matching a glob pattern.
type GlobTool struct {
	resolver Resolver
}

var _ agent.Tool = (*GlobTool)(nil)

// NewGlobTool creates a glob tool scoped to the workspace.
func NewGlobTool(cfg Config) *GlobTool {
	return &GlobTool{resolver: Resolver{Root: cfg.Workspace}}
}

func (t *GlobTool) Name() string { return "glob_files" }

func (t *GlobTool) Description() string {
	return "Find workspace files whose names match a glob pattern."
}

func (t *GlobTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pattern": {"type": "string", "description": "Glob pattern matched against file names, e.g. *.go."},
			"path": {"type": "string", "description": "Directory to search under (default: workspace root)."}
		},
		"required": ["pattern"]
	}`)
}

func (t *GlobTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	pattern := strings.TrimSpace(input.Pattern)
	if pattern == "" {
		return toolError("pattern is required"), nil
	}
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return toolError(fmt.Sprintf("invalid pattern: %v", err)), nil
	}

	base := input.Path
	if base == "" {
		base = "."
	}
	root, err := t.resolver.Resolve(base)
	if err != nil {
		return toolError(err.Error()), nil
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			matches = append(matches, rel)
			if len(matches) >= maxGlobResults {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil && err != ctx.Err() {
		return toolError(fmt.Sprintf("walk failed: %v", err)), nil
	}

	if len(matches) == 0 {
		return &agent.ToolResult{Content: "no files matched " + pattern}, nil
	}
	sort.Strings(matches)
	return &agent.ToolResult{Content: strings.Join(matches, "\n")}, nil
}

// GrepTool searches workspace file contents by regular expression.
type GrepTool struct {
	resolver Resolver
}

var _ agent.Tool = (*GrepTool)(nil)

// NewGrepTool creates a grep tool scoped to the workspace.
func NewGrepTool(cfg Config) *GrepTool {
	return &GrepTool{resolver: Resolver{Root: cfg.Workspace}}
}

func (t *GrepTool) Name() string { return "grep_files" }

func (t *GrepTool) Description() string {
	return "Search file contents for a regular expression and return matching lines."
}

func (t *GrepTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pattern": {"type": "string", "description": "Regular expression to search for."},
			"path": {"type": "string", "description": "File or directory to search (default: workspace root)."}
		},
		"required": ["pattern"]
	}`)
}

func (t *GrepTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	re, err := regexp.Compile(input.Pattern)
	if err != nil {
		return toolError(fmt.Sprintf("invalid pattern: %v", err)), nil
	}

	base := input.Path
	if base == "" {
		base = "."
	}
	root, err := t.resolver.Resolve(base)
	if err != nil {
		return toolError(err.Error()), nil
	}

	var out strings.Builder
	matched := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		n, err := grepFile(re, root, path, &out, maxGrepMatches-matched)
		if err != nil {
			return nil
		}
		matched += n
		if matched >= maxGrepMatches {
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil && walkErr != ctx.Err() {
		return toolError(fmt.Sprintf("walk failed: %v", walkErr)), nil
	}

	if matched == 0 {
		return &agent.ToolResult{Content: "no matches for " + input.Pattern}, nil
	}
	return &agent.ToolResult{Content: strings.TrimRight(out.String(), "\n")}, nil
}

func grepFile(re *regexp.Regexp, root, path string, out *strings.Builder, budget int) (int, error) {
	if budget <= 0 {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	matched := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !re.MatchString(line) {
			continue
		}
		if len(line) > maxGrepLine {
			line = line[:maxGrepLine] + "..."
		}
		fmt.Fprintf(out, "%s:%d: %s\n", rel, lineNo, line)
		matched++
		if matched >= budget {
			break
		}
	}
	// Binary files fail the scan; treat them as having no matches.
	return matched, nil
}
