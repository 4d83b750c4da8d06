package escalate

import (
	"context"
	"time"

	"github.com/oakworth/steward/internal/observability"
)

// Completer is the remote backend the bridge answers tasks through.
// Each task is a single standalone prompt, so the interface is a
// one-shot call rather than a full conversation API.
type Completer interface {
	// Complete answers prompt with the given model and returns the
	// generated text.
	Complete(ctx context.Context, model, prompt string) (string, error)

	// Name returns the backend name for logging.
	Name() string
}

// Bridge is the external worker side of the escalation transport: it
// consumes pending tasks from the shared store, answers them through a
// remote provider, and writes responses keyed by task id. It runs as a
// separate process from the sessions that enqueue tasks.
type Bridge struct {
	store    *FileStore
	provider Completer
	model    string
	interval time.Duration
	logger   *observability.Logger
}

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	Model        string
	PollInterval time.Duration
}

// NewBridge creates a bridge worker over the given store and provider.
func NewBridge(store *FileStore, provider Completer, cfg BridgeConfig, logger *observability.Logger) *Bridge {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bridge{
		store:    store,
		provider: provider,
		model:    cfg.Model,
		interval: cfg.PollInterval,
		logger:   logger,
	}
}

// Run polls the task queue until the context is cancelled. Each pending
// task is moved to processing before the provider call and to a
// terminal state after, so a second worker never double-claims it
// within one poll interval.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info(ctx, "bridge worker started",
		"provider", b.provider.Name(),
		"model", b.model,
		"poll_interval", b.interval,
	)
	for {
		select {
		case <-ctx.Done():
			b.logger.Info(ctx, "bridge worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			b.drainPending(ctx)
		}
	}
}

func (b *Bridge) drainPending(ctx context.Context) {
	tasks, err := b.store.Tasks()
	if err != nil {
		b.logger.Warn(ctx, "task queue read failed", "error", err)
		return
	}
	for _, task := range tasks {
		if task.Status != StatusPending {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		b.handle(ctx, task)
	}
}

func (b *Bridge) handle(ctx context.Context, task Task) {
	ctx = observability.WithTaskID(ctx, task.ID)
	if err := b.store.UpdateStatus(task.ID, StatusProcessing); err != nil {
		b.logger.Warn(ctx, "task claim failed", "error", err)
		return
	}

	text, err := b.provider.Complete(ctx, b.model, task.Prompt)

	resp := Response{Timestamp: time.Now().UTC()}
	status := StatusDone
	if err != nil {
		b.logger.Warn(ctx, "remote completion failed", "error", err)
		resp.Response = err.Error()
		status = StatusFailed
	} else {
		resp.Response = text
		resp.Success = true
	}

	if err := b.store.Respond(task.ID, resp); err != nil {
		b.logger.Warn(ctx, "response write failed", "error", err)
		return
	}
	if err := b.store.UpdateStatus(task.ID, status); err != nil {
		b.logger.Warn(ctx, "status update failed", "error", err)
	}
	b.logger.Info(ctx, "task resolved", "status", string(status))
}
