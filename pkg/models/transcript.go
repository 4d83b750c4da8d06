package models

import (
	"time"
)

// Role indicates the message author type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Path is the processing tier chosen for a request.
//
// The set is closed: callers dispatch with an exhaustive switch rather
// than comparing strings at each call site, so adding a tier is a
// compile-visible change.
type Path string

const (
	// PathDeterministic handles the request from a pattern table with no
	// model call at all.
	PathDeterministic Path = "deterministic"

	// PathTemplateFill expands a known template with a minimal model fill.
	PathTemplateFill Path = "template_fill"

	// PathEmbeddingSearch answers via semantic lookup, no generation.
	PathEmbeddingSearch Path = "embedding_search"

	// PathMicroModel generates with the small local model.
	PathMicroModel Path = "micro_model"

	// PathFullModel generates with the larger model, selected only when
	// the session explicitly asks for higher quality or the request is
	// classified as complex.
	PathFullModel Path = "full_model"
)

// Valid reports whether p is one of the defined processing tiers.
func (p Path) Valid() bool {
	switch p {
	case PathDeterministic, PathTemplateFill, PathEmbeddingSearch, PathMicroModel, PathFullModel:
		return true
	}
	return false
}

// Session represents one conversation thread.
//
// A session owns its messages exclusively. The in-flight guard (at most
// one top-level request at a time) lives in the sessions package, not
// on this struct, so persisted state never encodes transient busyness.
type Session struct {
	ID        string         `json:"id"`
	Model     string         `json:"model,omitempty"`
	WorkDir   string         `json:"work_dir,omitempty"`
	Title     string         `json:"title,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Message is a single transcript entry.
//
// Once Streaming is cleared the message is immutable, except that tool
// results may still be folded into Meta while the owning turn finishes.
type Message struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Streaming bool         `json:"streaming,omitempty"`
	Meta      *MessageMeta `json:"meta,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// MessageMeta records how a message was produced.
type MessageMeta struct {
	Path       Path       `json:"path,omitempty"`
	Provider   string     `json:"provider,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Escalated  bool       `json:"escalated,omitempty"`
	LatencyMS  int64      `json:"latency_ms,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a structured action request extracted from model output,
// completed by the executor and folded into the owning message's meta.
type ToolCall struct {
	Name    string         `json:"name"`
	Args    map[string]any `json:"args,omitempty"`
	Result  string         `json:"result,omitempty"`
	Success bool           `json:"success"`
}
