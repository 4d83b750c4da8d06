// Package exec provides the shell execution tool.
package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oakworth/steward/internal/agent"
)

// maxOutputBytes caps captured command output.
const maxOutputBytes = 100_000

// ShellTool runs a shell command and captures its output. Command
// validation happens upstream in the executor; this tool only runs
// what it is given.
type ShellTool struct {
	workdir string
	timeout time.Duration
}

var _ agent.Tool = (*ShellTool)(nil)

// NewShellTool creates a shell tool with a default working directory
// and per-command timeout.
func NewShellTool(workdir string, timeout time.Duration) *ShellTool {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShellTool{workdir: workdir, timeout: timeout}
}

func (t *ShellTool) Name() string { return "execute_shell" }

func (t *ShellTool) Description() string {
	return "Run a shell command and return its captured output."
}

func (t *ShellTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"command": {"type": "string", "description": "Shell command to execute."},
			"workdir": {"type": "string", "description": "Working directory (default: session workdir)."}
		},
		"required": ["command"]
	}`)
}

func (t *ShellTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Command string `json:"command"`
		Workdir string `json:"workdir"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	command := strings.TrimSpace(input.Command)
	if command == "" {
		return &agent.ToolResult{Content: "command is required", IsError: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if input.Workdir != "" {
		cmd.Dir = input.Workdir
	} else if t.workdir != "" {
		cmd.Dir = t.workdir
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()

	output := out.String()
	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n... (output truncated)"
	}

	if ctx.Err() == context.DeadlineExceeded {
		return &agent.ToolResult{Content: fmt.Sprintf("command timed out after %s\n%s", t.timeout, output), IsError: true}, nil
	}
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("command failed: %v\n%s", err, output), IsError: true}, nil
	}
	if strings.TrimSpace(output) == "" {
		output = "(no output)"
	}
	return &agent.ToolResult{Content: output}, nil
}
