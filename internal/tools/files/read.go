package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oakworth/steward/internal/agent"
)

// ReadTool reads a file from the workspace.
type ReadTool struct {
	resolver Resolver
	maxBytes int
}

var _ agent.Tool = (*ReadTool)(nil)

// NewReadTool creates a read tool scoped to the workspace.
func NewReadTool(cfg Config) *ReadTool {
	limit := cfg.MaxReadBytes
	if limit <= 0 {
		limit = 200000
	}
	return &ReadTool{
		resolver: Resolver{Root: cfg.Workspace},
		maxBytes: limit,
	}
}

func (t *ReadTool) Name() string { return "read_file" }

func (t *ReadTool) Description() string {
	return "Read a file from the workspace with an optional byte offset."
}

func (t *ReadTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Path to the file (relative to workspace)."},
			"offset": {"type": "integer", "description": "Byte offset to start reading from.", "minimum": 0}
		},
		"required": ["path"]
	}`)
}

func (t *ReadTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Path   string `json:"path"`
		Offset int64  `json:"offset"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Offset < 0 {
		return toolError("offset must be >= 0"), nil
	}

	resolved, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return toolError(fmt.Sprintf("open file: %v", err)), nil
	}
	defer file.Close()

	if input.Offset > 0 {
		if _, err := file.Seek(input.Offset, io.SeekStart); err != nil {
			return toolError(fmt.Sprintf("seek file: %v", err)), nil
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, int64(t.maxBytes)+1))
	if err != nil {
		return toolError(fmt.Sprintf("read file: %v", err)), nil
	}

	truncated := false
	if len(data) > t.maxBytes {
		data = data[:t.maxBytes]
		truncated = true
	}

	content := string(data)
	if truncated {
		content += "\n... (truncated)"
	}
	if strings.TrimSpace(content) == "" {
		content = "(empty file)"
	}
	return &agent.ToolResult{Content: content}, nil
}
