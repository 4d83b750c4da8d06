package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tool is a capability handler the model can invoke by name.
type Tool interface {
	// Name returns the tool name used for dispatch.
	Name() string

	// Description explains the tool to the model.
	Description() string

	// Schema returns the JSON schema for the tool's arguments, or nil
	// when arguments are unconstrained.
	Schema() json.RawMessage

	// Execute runs the tool. Handler failures are reported through
	// ToolResult.IsError, not the error return, so one bad call never
	// aborts a batch; the error return is reserved for programming
	// errors.
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is the outcome of one tool invocation.
type ToolResult struct {
	Content string
	IsError bool
}

// MaxToolNameLength bounds tool names to keep hostile dispatch cheap.
const MaxToolNameLength = 256

// maxToolParamsSize bounds argument payloads (1MB).
const maxToolParamsSize = 1 << 20

// Delegate handles tool names no registered tool claims, typically by
// forwarding them to an external agent capability.
type Delegate interface {
	Handle(ctx context.Context, name string, params json.RawMessage) (*ToolResult, error)
}

// Registry manages available tools with thread-safe registration,
// lookup and schema-validated dispatch.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	schemas  map[string]*jsonschema.Schema
	delegate Delegate
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   map[string]Tool{},
		schemas: map[string]*jsonschema.Schema{},
	}
}

// Register adds a tool, replacing any existing tool of the same name.
// The tool's schema is compiled eagerly; an invalid schema disables
// validation for that tool rather than failing registration.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
	delete(r.schemas, tool.Name())

	raw := tool.Schema()
	if len(raw) == 0 {
		return
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return
	}
	if schema, err := compiler.Compile("schema.json"); err == nil {
		r.schemas[tool.Name()] = schema
	}
}

// SetDelegate installs the fallback handler for unknown tool names.
func (r *Registry) SetDelegate(delegate Delegate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delegate = delegate
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Execute dispatches by name with schema validation. A missing tool or
// invalid arguments come back as an error-flagged result, not an error.
func (r *Registry) Execute(ctx context.Context, name string, params json.RawMessage) (*ToolResult, error) {
	if len(name) > MaxToolNameLength {
		return &ToolResult{Content: fmt.Sprintf("tool name exceeds %d characters", MaxToolNameLength), IsError: true}, nil
	}
	if len(params) > maxToolParamsSize {
		return &ToolResult{Content: fmt.Sprintf("tool arguments exceed %d bytes", maxToolParamsSize), IsError: true}, nil
	}

	r.mu.RLock()
	tool, ok := r.tools[name]
	schema := r.schemas[name]
	delegate := r.delegate
	r.mu.RUnlock()
	if !ok {
		// Unknown names go to the delegate before being reported as
		// unknown, so a host process can extend the tool surface
		// without registering handlers here.
		if delegate != nil {
			result, err := delegate.Handle(ctx, name, params)
			if err == nil && result != nil {
				return result, nil
			}
		}
		return &ToolResult{Content: "unknown tool: " + name, IsError: true}, nil
	}

	if schema != nil && len(params) > 0 {
		var decoded any
		if err := json.Unmarshal(params, &decoded); err != nil {
			return &ToolResult{Content: fmt.Sprintf("invalid tool arguments: %v", err), IsError: true}, nil
		}
		if err := schema.Validate(decoded); err != nil {
			return &ToolResult{Content: fmt.Sprintf("arguments rejected by schema: %v", err), IsError: true}, nil
		}
	}

	return tool.Execute(ctx, params)
}
