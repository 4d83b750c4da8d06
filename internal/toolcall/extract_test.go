package toolcall

import (
	"testing"
)

func TestExtractNoJSON(t *testing.T) {
	if calls := Extract("no json here"); len(calls) != 0 {
		t.Fatalf("expected no calls, got %v", calls)
	}
}

func TestExtractPlainObject(t *testing.T) {
	calls := Extract(`{"tool":"execute_shell","args":{"command":"ls -la"}}`)
	if len(calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(calls))
	}
	if calls[0].Tool != "execute_shell" {
		t.Fatalf("expected execute_shell, got %q", calls[0].Tool)
	}
	if cmd, _ := calls[0].Args["command"].(string); cmd != "ls -la" {
		t.Fatalf("expected command 'ls -la', got %q", cmd)
	}
}

func TestExtractFromFence(t *testing.T) {
	output := "I'll list the files:\n```json\n{\"tool\":\"execute_shell\",\"args\":{\"command\":\"ls\"}}\n```\nDone."
	calls := Extract(output)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Tool != "execute_shell" {
		t.Fatalf("expected execute_shell, got %q", calls[0].Tool)
	}
}

func TestExtractDedupesFenceAndRaw(t *testing.T) {
	// The fence body is concatenated with the raw text, so the same
	// object is seen twice; it must come back once.
	output := "```\n{\"tool\":\"read_file\",\"args\":{\"path\":\"a.txt\"}}\n```"
	calls := Extract(output)
	if len(calls) != 1 {
		t.Fatalf("expected one deduplicated call, got %d", len(calls))
	}
}

func TestExtractMultipleInOrder(t *testing.T) {
	output := `First {"tool":"read_file","args":{"path":"a"}} then {"tool":"read_file","args":{"path":"b"}}`
	calls := Extract(output)
	if len(calls) != 2 {
		t.Fatalf("expected two calls, got %d", len(calls))
	}
	if calls[0].Args["path"] != "a" || calls[1].Args["path"] != "b" {
		t.Fatalf("extraction order not preserved: %v", calls)
	}
}

func TestExtractNarrowFallback(t *testing.T) {
	// Trailing comma makes the strict parse fail; the narrow regex
	// still recovers the tool name and args.
	output := `{"tool": "web_fetch", "args": {"url": "https://example.com"},}`
	calls := Extract(output)
	if len(calls) != 1 {
		t.Fatalf("expected one call from narrow fallback, got %d", len(calls))
	}
	if calls[0].Tool != "web_fetch" {
		t.Fatalf("expected web_fetch, got %q", calls[0].Tool)
	}
	if url, _ := calls[0].Args["url"].(string); url != "https://example.com" {
		t.Fatalf("expected url arg, got %v", calls[0].Args)
	}
}

func TestExtractMissingArgs(t *testing.T) {
	calls := Extract(`{"tool":"system_info"}`)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Args == nil {
		t.Fatalf("args must never be nil")
	}
}

func TestExtractLineScan(t *testing.T) {
	// The unclosed brace in the prose keeps the balanced scan from ever
	// emitting a candidate, so the line strategy picks up the
	// standalone object line.
	output := "wrap it in func main() {\n" +
		`{"tool":"system_info","args":{}}` + "\n" +
		"that should do it"
	calls := Extract(output)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Tool != "system_info" {
		t.Fatalf("expected system_info, got %q", calls[0].Tool)
	}
}

func TestExtractShellBlock(t *testing.T) {
	output := "Run this:\n```bash\ndf -h\n```"
	calls := Extract(output)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Tool != "execute_shell" {
		t.Fatalf("expected execute_shell, got %q", calls[0].Tool)
	}
	if cmd, _ := calls[0].Args["command"].(string); cmd != "df -h" {
		t.Fatalf("expected df -h, got %q", cmd)
	}
}

func TestExtractShellBlockMultilineIgnored(t *testing.T) {
	output := "```sh\ncd /tmp\nls\n```"
	if calls := Extract(output); len(calls) != 0 {
		t.Fatalf("multi-line shell blocks are not implicit calls, got %v", calls)
	}
}

func TestExtractStructuredWinsOverShell(t *testing.T) {
	// Strategy order is pinned: a structured call anywhere in the
	// output claims the result even when a shell fence is also present.
	output := `{"tool":"read_file","args":{"path":"x"}}` + "\n```bash\nls\n```"
	calls := Extract(output)
	if len(calls) != 1 || calls[0].Tool != "read_file" {
		t.Fatalf("structured strategy must win, got %v", calls)
	}
}

func TestExtractBracesInsideStrings(t *testing.T) {
	output := `{"tool":"write_file","args":{"path":"a.go","content":"func f() { return }"}}`
	calls := Extract(output)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if content, _ := calls[0].Args["content"].(string); content != "func f() { return }" {
		t.Fatalf("braces inside string mangled: %q", content)
	}
}

func TestExtractIgnoresPlainObjects(t *testing.T) {
	output := `the config is {"retries": 3, "delay": "2s"}`
	if calls := Extract(output); len(calls) != 0 {
		t.Fatalf("objects without a tool key are not calls, got %v", calls)
	}
}
