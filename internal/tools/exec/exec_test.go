package exec

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, tool *ShellTool, params string) *struct {
	Content string
	IsError bool
} {
	t.Helper()
	res, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err != nil {
		t.Fatalf("execute returned a Go error: %v", err)
	}
	return &struct {
		Content string
		IsError bool
	}{res.Content, res.IsError}
}

func TestShellToolCapturesOutput(t *testing.T) {
	tool := NewShellTool("", 10*time.Second)
	res := run(t, tool, `{"command": "echo hello"}`)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if strings.TrimSpace(res.Content) != "hello" {
		t.Fatalf("wrong output: %q", res.Content)
	}
}

func TestShellToolCapturesStderr(t *testing.T) {
	tool := NewShellTool("", 10*time.Second)
	res := run(t, tool, `{"command": "echo oops >&2"}`)
	if res.IsError {
		t.Fatalf("stderr-only command should still succeed: %s", res.Content)
	}
	if strings.TrimSpace(res.Content) != "oops" {
		t.Fatalf("stderr not captured: %q", res.Content)
	}
}

func TestShellToolWorkdir(t *testing.T) {
	dir := t.TempDir()
	tool := NewShellTool(dir, 10*time.Second)
	res := run(t, tool, `{"command": "pwd"}`)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if strings.TrimSpace(res.Content) != dir {
		t.Fatalf("default workdir ignored: %q != %q", res.Content, dir)
	}

	other := t.TempDir()
	res = run(t, tool, `{"command": "pwd", "workdir": "`+other+`"}`)
	if strings.TrimSpace(res.Content) != other {
		t.Fatalf("explicit workdir ignored: %q != %q", res.Content, other)
	}
}

func TestShellToolFailureIsToolError(t *testing.T) {
	tool := NewShellTool("", 10*time.Second)
	res := run(t, tool, `{"command": "exit 3"}`)
	if !res.IsError {
		t.Fatal("nonzero exit should set IsError")
	}
	if !strings.Contains(res.Content, "command failed") {
		t.Fatalf("missing failure prefix: %q", res.Content)
	}
}

func TestShellToolTimeout(t *testing.T) {
	tool := NewShellTool("", 50*time.Millisecond)
	res := run(t, tool, `{"command": "sleep 5"}`)
	if !res.IsError || !strings.Contains(res.Content, "timed out") {
		t.Fatalf("timeout not reported: %+v", res)
	}
}

func TestShellToolEmptyCommand(t *testing.T) {
	tool := NewShellTool("", time.Second)
	res := run(t, tool, `{"command": "  "}`)
	if !res.IsError || !strings.Contains(res.Content, "command is required") {
		t.Fatalf("blank command should be rejected: %+v", res)
	}
}

func TestShellToolNoOutputPlaceholder(t *testing.T) {
	tool := NewShellTool("", time.Second)
	res := run(t, tool, `{"command": "true"}`)
	if res.IsError || res.Content != "(no output)" {
		t.Fatalf("silent success should return placeholder: %+v", res)
	}
}
