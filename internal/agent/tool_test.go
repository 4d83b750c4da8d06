package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type stubTool struct {
	name   string
	schema json.RawMessage
	fn     func(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) Description() string     { return "stub" }
func (s *stubTool) Schema() json.RawMessage { return s.schema }
func (s *stubTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	if s.fn == nil {
		return &ToolResult{Content: "ok"}, nil
	}
	return s.fn(ctx, params)
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "echo", fn: func(_ context.Context, params json.RawMessage) (*ToolResult, error) {
		return &ToolResult{Content: string(params)}, nil
	}})

	result, err := r.Execute(context.Background(), "echo", json.RawMessage(`{"x":1}`))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result.IsError || result.Content != `{"x":1}` {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()

	result, err := r.Execute(context.Background(), "nope", nil)
	if err != nil {
		t.Fatalf("unknown tool must not error: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "unknown tool") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

type stubDelegate struct {
	handled string
	fail    bool
}

func (d *stubDelegate) Handle(_ context.Context, name string, _ json.RawMessage) (*ToolResult, error) {
	if d.fail {
		return nil, errors.New("delegate unavailable")
	}
	d.handled = name
	return &ToolResult{Content: "delegated " + name}, nil
}

func TestRegistryDelegateFallthrough(t *testing.T) {
	r := NewRegistry()
	delegate := &stubDelegate{}
	r.SetDelegate(delegate)

	result, err := r.Execute(context.Background(), "external_thing", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result.IsError || result.Content != "delegated external_thing" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if delegate.handled != "external_thing" {
		t.Fatalf("delegate not invoked")
	}
}

func TestRegistryDelegateFailureReportsUnknown(t *testing.T) {
	r := NewRegistry()
	r.SetDelegate(&stubDelegate{fail: true})

	result, err := r.Execute(context.Background(), "external_thing", nil)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "unknown tool") {
		t.Fatalf("delegate failure should fall back to unknown tool, got %+v", result)
	}
}

func TestRegistrySchemaValidation(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{
		name: "typed",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {"count": {"type": "integer"}},
			"required": ["count"]
		}`),
	})

	result, err := r.Execute(context.Background(), "typed", json.RawMessage(`{"count":"three"}`))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "schema") {
		t.Fatalf("expected schema rejection, got %+v", result)
	}

	result, err = r.Execute(context.Background(), "typed", json.RawMessage(`{"count":3}`))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("valid arguments rejected: %+v", result)
	}
}

func TestRegistryOversizedName(t *testing.T) {
	r := NewRegistry()
	result, err := r.Execute(context.Background(), strings.Repeat("a", MaxToolNameLength+1), nil)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.IsError {
		t.Fatalf("oversized name should be rejected")
	}
}
