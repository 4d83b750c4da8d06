package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oakworth/steward/internal/agent"
)

// EditTool performs an exact string replacement in a file. Without
// replace_all, the target string must occur exactly once so a vague
// edit never lands somewhere unintended.
type EditTool struct {
	resolver Resolver
}

var _ agent.Tool = (*EditTool)(nil)

// NewEditTool creates an edit tool scoped to the workspace.
func NewEditTool(cfg Config) *EditTool {
	return &EditTool{resolver: Resolver{Root: cfg.Workspace}}
}

func (t *EditTool) Name() string { return "edit_file" }

func (t *EditTool) Description() string {
	return "Replace an exact string in a file. The string must be unique unless replace_all is set."
}

func (t *EditTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Path to the file (relative to workspace)."},
			"old_string": {"type": "string", "description": "Exact text to replace."},
			"new_string": {"type": "string", "description": "Replacement text."},
			"replace_all": {"type": "boolean", "description": "Replace every occurrence."}
		},
		"required": ["path", "old_string", "new_string"]
	}`)
}

func (t *EditTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Path       string `json:"path"`
		OldString  string `json:"old_string"`
		NewString  string `json:"new_string"`
		ReplaceAll bool   `json:"replace_all"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.OldString == "" {
		return toolError("old_string is required"), nil
	}
	if input.OldString == input.NewString {
		return toolError("old_string and new_string are identical"), nil
	}

	resolved, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return toolError(fmt.Sprintf("read file: %v", err)), nil
	}
	content := string(data)

	count := strings.Count(content, input.OldString)
	if count == 0 {
		return toolError("old_string not found in file"), nil
	}
	if count > 1 && !input.ReplaceAll {
		return toolError(fmt.Sprintf("old_string occurs %d times; pass replace_all or provide more context", count)), nil
	}

	replaced := count
	if input.ReplaceAll {
		content = strings.ReplaceAll(content, input.OldString, input.NewString)
	} else {
		content = strings.Replace(content, input.OldString, input.NewString, 1)
		replaced = 1
	}

	info, err := os.Stat(resolved)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(resolved, []byte(content), mode); err != nil {
		return toolError(fmt.Sprintf("write file: %v", err)), nil
	}
	return &agent.ToolResult{Content: fmt.Sprintf("replaced %d occurrence(s) in %s", replaced, input.Path)}, nil
}
