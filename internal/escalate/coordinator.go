package escalate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oakworth/steward/internal/observability"
)

// LocalResult is the locally generated answer under consideration.
type LocalResult struct {
	Text       string
	Confidence float64
}

// FinalResult is what the caller surfaces after the escalation
// decision. Escalated is true only when a remote answer replaced the
// local one.
type FinalResult struct {
	Text       string
	Confidence float64
	Escalated  bool
}

// Options force the escalation decision one way or the other.
// ForceLocal wins when both are set.
type Options struct {
	ForceLocal  bool
	ForceRemote bool
}

// Coordinator decides local-vs-remote per answer and manages the
// remote round trip through a shared FileStore. Escalation is strictly
// best-effort: every failure mode falls back to the local result.
type Coordinator struct {
	store        *FileStore
	logger       *observability.Logger
	metrics      *observability.Metrics
	provider     string
	pollInterval time.Duration
	timeout      time.Duration
}

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	Provider     string
	PollInterval time.Duration
	Timeout      time.Duration
}

// NewCoordinator wires a coordinator over the given store.
func NewCoordinator(store *FileStore, cfg CoordinatorConfig, logger *observability.Logger, metrics *observability.Metrics) *Coordinator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Provider == "" {
		cfg.Provider = "claude"
	}
	return &Coordinator{
		store:        store,
		logger:       logger,
		metrics:      metrics,
		provider:     cfg.Provider,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
	}
}

// Resolve returns the final answer for a prompt. The local result is
// kept when ForceLocal is set or confidence meets the threshold;
// otherwise a task is enqueued and the response store polled until a
// matching answer arrives or the timeout elapses. Timeout and I/O
// failures return the local result unchanged.
func (c *Coordinator) Resolve(ctx context.Context, prompt string, local LocalResult, threshold float64, opts Options) FinalResult {
	keep := FinalResult{Text: local.Text, Confidence: local.Confidence}

	if opts.ForceLocal {
		return keep
	}
	if !opts.ForceRemote && local.Confidence >= threshold {
		return keep
	}

	task := Task{
		ID:       uuid.New().String(),
		Prompt:   prompt,
		Provider: c.provider,
		Status:   StatusPending,
		Created:  time.Now().UTC(),
	}
	ctx = observability.WithTaskID(ctx, task.ID)

	if err := c.store.Enqueue(task); err != nil {
		c.logger.Warn(ctx, "escalation enqueue failed, keeping local result", "error", err)
		c.countOutcome("enqueue_failed")
		return keep
	}
	c.logger.Info(ctx, "escalating low-confidence answer",
		"provider", c.provider,
		"confidence", local.Confidence,
		"threshold", threshold,
	)

	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Warn(ctx, "escalation cancelled, keeping local result", "error", ctx.Err())
			c.countOutcome("cancelled")
			return keep
		case <-deadline.C:
			c.logger.Warn(ctx, "escalation timed out, keeping local result", "timeout", c.timeout)
			c.countOutcome("timeout")
			return keep
		case <-ticker.C:
			resp, ok, err := c.store.Response(task.ID)
			if err != nil {
				c.logger.Warn(ctx, "response store read failed, keeping local result", "error", err)
				c.countOutcome("store_failed")
				return keep
			}
			if !ok {
				continue
			}
			if !resp.Success {
				c.logger.Warn(ctx, "remote worker reported failure, keeping local result")
				c.countOutcome("remote_failed")
				return keep
			}
			c.countOutcome("resolved")
			return FinalResult{Text: resp.Response, Confidence: 1.0, Escalated: true}
		}
	}
}

func (c *Coordinator) countOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.Escalations.WithLabelValues(outcome).Inc()
	}
}
