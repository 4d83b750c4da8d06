package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oakworth/steward/internal/confidence"
	"github.com/oakworth/steward/internal/escalate"
	"github.com/oakworth/steward/internal/observability"
	"github.com/oakworth/steward/internal/routing"
	"github.com/oakworth/steward/internal/sessions"
	"github.com/oakworth/steward/internal/toolcall"
	"github.com/oakworth/steward/pkg/models"
)

// Resolver decides whether a locally produced answer stands or is
// replaced by a remote backend's answer.
type Resolver interface {
	Resolve(ctx context.Context, prompt string, local escalate.LocalResult, threshold float64, opts escalate.Options) escalate.FinalResult
}

// RequestOptions adjust a single top-level request.
type RequestOptions struct {
	// PreferQuality routes generative work to the full-model tier.
	PreferQuality bool

	// ForceLocal keeps the local answer regardless of confidence.
	ForceLocal bool

	// ForceRemote escalates regardless of confidence.
	ForceRemote bool
}

// Config configures a Runtime.
type Config struct {
	// ConfidenceThreshold below which answers are escalated.
	ConfidenceThreshold float64

	// MaxToolDepth bounds the recursive follow-up loop.
	MaxToolDepth int

	// HistoryLimit is how many prior messages accompany a model call.
	HistoryLimit int

	// DefaultModel is used when neither the routing decision nor the
	// session names a model.
	DefaultModel string

	// RequestTimeout bounds one whole top-level request, tool loop and
	// escalation included. Zero means no bound.
	RequestTimeout time.Duration

	// SystemPrompt is prepended to every model call.
	SystemPrompt string
}

// Runtime ties routing, generation, tool execution and escalation
// together per session. One top-level request per session runs at a
// time; a second request to a busy session is rejected immediately.
type Runtime struct {
	cfg         Config
	store       sessions.Store
	busy        *sessions.BusyGuard
	router      *routing.Router
	provider    Provider
	executor    *Executor
	coordinator Resolver
	logger      *observability.Logger
	metrics     *observability.Metrics
	tracer      *observability.Tracer
}

// NewRuntime wires a Runtime. coordinator may be nil, in which case
// every answer stands on its local confidence.
func NewRuntime(cfg Config, store sessions.Store, router *routing.Router, provider Provider, executor *Executor, coordinator Resolver, logger *observability.Logger, metrics *observability.Metrics, tracer *observability.Tracer) *Runtime {
	if cfg.MaxToolDepth <= 0 {
		cfg.MaxToolDepth = 5
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.6
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Runtime{
		cfg:         cfg,
		store:       store,
		busy:        sessions.NewBusyGuard(),
		router:      router,
		provider:    provider,
		executor:    executor,
		coordinator: coordinator,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
	}
}

// Store exposes the session store for hosts that manage sessions
// directly.
func (r *Runtime) Store() sessions.Store {
	return r.store
}

// Busy reports whether a session has an in-flight request.
func (r *Runtime) Busy(sessionID string) bool {
	return r.busy.Busy(sessionID)
}

// Respond runs one full turn for a session: route, generate, extract
// and execute tool calls with bounded follow-up, score, and optionally
// escalate. The returned message is the assistant transcript entry.
//
// The user message is appended only after the busy guard is acquired,
// so a rejected request never mutates the transcript. A cancelled
// context after generation discards results instead of appending them.
func (r *Runtime) Respond(ctx context.Context, sessionID, input string, opts RequestOptions) (*models.Message, error) {
	release, err := r.busy.Acquire(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	defer release()
	if r.metrics != nil {
		r.metrics.BusySessions.Inc()
		defer r.metrics.BusySessions.Dec()
	}

	ctx = observability.WithSessionID(ctx, sessionID)
	ctx = observability.WithRequestID(ctx, uuid.New().String())

	if r.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
	}

	session, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	start := time.Now()

	userMsg := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   input,
	}
	if err := r.store.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	decision := r.router.Route(input, routing.Options{PreferQuality: opts.PreferQuality})
	if r.metrics != nil {
		r.metrics.RouteDecisions.WithLabelValues(string(decision.Path)).Inc()
	}
	r.logger.Info(ctx, "request routed",
		"path", string(decision.Path),
		"request_type", string(decision.RequestType),
		"confidence", decision.Confidence,
		"reasoning", decision.Reasoning,
	)

	var turn turnResult
	if decision.Path == models.PathDeterministic {
		turn = r.runDeterministic(ctx, session, input, decision)
	} else {
		turn = r.runGenerative(ctx, session, input, decision)
	}
	if turn.err != nil {
		// Generation failure is the one error surfaced to the caller.
		// The busy flag is released by the deferred call either way.
		return nil, turn.err
	}

	score := turn.confidence
	escalated := false
	skipEscalation := opts.ForceLocal ||
		decision.Path == models.PathDeterministic ||
		decision.RequestType == routing.TypeConversational
	if r.coordinator != nil && !skipEscalation {
		final := r.coordinator.Resolve(ctx, input, escalate.LocalResult{
			Text:       turn.text,
			Confidence: score,
		}, r.cfg.ConfidenceThreshold, escalate.Options{
			ForceLocal:  opts.ForceLocal,
			ForceRemote: opts.ForceRemote,
		})
		turn.text = final.Text
		score = final.Confidence
		escalated = final.Escalated
	}

	if ctx.Err() != nil {
		// Caller abandoned the session; results are discarded, not
		// appended.
		return nil, ctx.Err()
	}

	assistant := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   turn.text,
		Meta: &models.MessageMeta{
			Path:       decision.Path,
			Provider:   turn.provider,
			Confidence: score,
			Escalated:  escalated,
			LatencyMS:  time.Since(start).Milliseconds(),
			ToolCalls:  turn.toolCalls,
		},
	}
	if err := r.store.AppendMessage(ctx, sessionID, assistant); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	return assistant, nil
}

// turnResult is the outcome of one turn before escalation.
type turnResult struct {
	text       string
	provider   string
	confidence float64
	toolCalls  []models.ToolCall
	err        error
}

// runDeterministic satisfies a deterministic request directly from the
// command table, without touching a model.
func (r *Runtime) runDeterministic(ctx context.Context, session *models.Session, input string, decision routing.Decision) turnResult {
	command, ok := routing.DeterministicCommand(input)
	if !ok {
		// No mapped command; fall back to the micro-model tier.
		decision.Path = models.PathMicroModel
		return r.runGenerative(ctx, session, input, decision)
	}

	results := r.executor.ExecuteAll(ctx, []toolcall.RawToolCall{{
		Tool: "execute_shell",
		Args: map[string]any{"command": command, "workdir": session.WorkDir},
	}})
	result := results[0]

	text := result.Result
	if !result.Success {
		text = fmt.Sprintf("Could not run `%s`: %s", command, result.Result)
	}
	return turnResult{
		text:       text,
		provider:   "deterministic",
		confidence: decision.Confidence,
		toolCalls:  results,
	}
}

// runGenerative calls the model backend and drives the bounded
// extract, validate, execute, re-query loop.
func (r *Runtime) runGenerative(ctx context.Context, session *models.Session, input string, decision routing.Decision) turnResult {
	model := decision.Model
	if session.Model != "" {
		model = session.Model
	}
	if model == "" {
		model = r.cfg.DefaultModel
	}

	history, err := r.store.History(ctx, session.ID, r.cfg.HistoryLimit)
	if err != nil {
		r.logger.Warn(ctx, "history load failed, continuing without it", "error", err)
		history = nil
	}

	system := r.systemPrompt(session, decision)
	messages := make([]CompletionMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, CompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	text, err := r.complete(ctx, model, system, messages)
	if err != nil {
		return turnResult{err: fmt.Errorf("generation failed: %w", err)}
	}

	var allCalls []models.ToolCall
	depth := 0
	for {
		calls := toolcall.Extract(text)
		if len(calls) == 0 {
			// The model explained instead of acting. A legitimate
			// terminal state, not a failure.
			break
		}
		if depth >= r.cfg.MaxToolDepth {
			r.logger.Warn(ctx, "maximum tool depth reached, stopping follow-up loop",
				"depth", depth,
				"pending_calls", len(calls),
			)
			if r.metrics != nil {
				r.metrics.RecursionDepthReached.Inc()
			}
			break
		}
		depth++

		results := r.executor.ExecuteAll(ctx, calls)
		allCalls = append(allCalls, results...)

		followup := buildFollowupPrompt(results)
		messages = append(messages,
			CompletionMessage{Role: string(models.RoleAssistant), Content: text},
			CompletionMessage{Role: string(models.RoleUser), Content: followup},
		)
		next, err := r.complete(ctx, model, system, messages)
		if err != nil {
			r.logger.Warn(ctx, "follow-up generation failed, keeping prior answer", "error", err)
			text = attachResults(text, results)
			break
		}
		text = next
	}
	if depth == 0 && len(allCalls) == 0 {
		text = strings.TrimSpace(text)
	}

	return turnResult{
		text:       text,
		provider:   r.provider.Name(),
		confidence: confidence.Score(text, len(input)),
		toolCalls:  allCalls,
	}
}

func (r *Runtime) complete(ctx context.Context, model, system string, messages []CompletionMessage) (string, error) {
	if r.provider == nil {
		return "", ErrNoProvider
	}
	ctx, endSpan := r.startSpan(ctx, "provider.complete", model)
	defer endSpan()

	start := time.Now()
	completion, err := r.provider.Complete(ctx, &CompletionRequest{
		Model:    model,
		System:   system,
		Messages: messages,
	})
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	if r.metrics != nil {
		r.metrics.ProviderRequests.WithLabelValues(r.provider.Name(), model, status).Inc()
		r.metrics.ProviderLatency.WithLabelValues(r.provider.Name(), model).Observe(elapsed.Seconds())
	}
	if err != nil {
		return "", err
	}
	if completion == nil || completion.Text == "" {
		return "", errors.New("empty completion")
	}
	return completion.Text, nil
}

func (r *Runtime) startSpan(ctx context.Context, name, model string) (context.Context, func()) {
	if r.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := r.tracer.Start(ctx, name, attribute.String("model", model))
	return ctx, func() { span.End() }
}

// systemPrompt shapes the model call per processing tier. Template and
// search tiers are prompt-level specializations of the same backend.
func (r *Runtime) systemPrompt(session *models.Session, decision routing.Decision) string {
	var b strings.Builder
	if r.cfg.SystemPrompt != "" {
		b.WriteString(r.cfg.SystemPrompt)
	} else {
		b.WriteString("You are a capable assistant running on the user's machine. " +
			"When an action is needed, respond with a JSON object of the form " +
			`{"tool": "<name>", "args": {...}} and nothing else. ` +
			"Available tools: execute_shell, read_file, write_file, edit_file, " +
			"glob_files, grep_files, web_fetch, system_info, clear_cache. " +
			"Otherwise answer in plain text.")
	}
	if session.WorkDir != "" {
		fmt.Fprintf(&b, "\nWorking directory: %s", session.WorkDir)
	}
	switch decision.Path {
	case models.PathTemplateFill:
		fmt.Fprintf(&b, "\nProduce a minimal, idiomatic %s scaffold. Fill only the parts the request specifies.", decision.TemplateID)
	case models.PathEmbeddingSearch:
		b.WriteString("\nThe user is looking something up. Answer concisely from what you can inspect with the search tools; prefer glob_files and grep_files over guessing.")
	}
	return b.String()
}

// buildFollowupPrompt folds tool results into the re-query prompt.
func buildFollowupPrompt(results []models.ToolCall) string {
	var b strings.Builder
	b.WriteString("Tool results:\n")
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "[%s %s]\n%s\n", r.Name, status, r.Result)
	}
	b.WriteString("\nContinue with the task, or summarize the results for the user. If nothing remains to do, answer in plain text.")
	return b.String()
}

// attachResults appends tool output to an answer when the follow-up
// call could not run.
func attachResults(text string, results []models.ToolCall) string {
	var b strings.Builder
	b.WriteString(text)
	for _, r := range results {
		fmt.Fprintf(&b, "\n\n[%s]\n%s", r.Name, r.Result)
	}
	return b.String()
}
