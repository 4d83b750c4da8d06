package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oakworth/steward/internal/guard"
	"github.com/oakworth/steward/internal/observability"
	"github.com/oakworth/steward/internal/toolcall"
	"github.com/oakworth/steward/pkg/models"
)

// Executor runs extracted tool calls sequentially in extraction order.
// Every call produces a result entry; a failing call is recorded with
// Success=false and never aborts the rest of the batch.
type Executor struct {
	registry *Registry
	logger   *observability.Logger
	metrics  *observability.Metrics
	timeout  time.Duration
}

// NewExecutor creates an executor over the given registry. timeout
// bounds each individual tool call; zero means no per-call bound.
func NewExecutor(registry *Registry, logger *observability.Logger, metrics *observability.Metrics, timeout time.Duration) *Executor {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Executor{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		timeout:  timeout,
	}
}

// ExecuteAll runs the batch in order and returns one result per call.
// Shell commands are validated before dispatch; a command that fails
// validation is recorded as a failed call with the rejection reason.
func (e *Executor) ExecuteAll(ctx context.Context, calls []toolcall.RawToolCall) []models.ToolCall {
	results := make([]models.ToolCall, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			results = append(results, models.ToolCall{
				Name:    call.Tool,
				Args:    call.Args,
				Result:  "cancelled: " + ctx.Err().Error(),
				Success: false,
			})
			continue
		}
		results = append(results, e.executeOne(ctx, call))
	}
	return results
}

func (e *Executor) executeOne(ctx context.Context, call toolcall.RawToolCall) models.ToolCall {
	out := models.ToolCall{Name: call.Tool, Args: call.Args}

	if call.Tool == "execute_shell" {
		command, _ := call.Args["command"].(string)
		if verdict := guard.Validate(command); !verdict.Valid {
			e.logger.Warn(ctx, "shell command rejected",
				"tool", call.Tool,
				"reason", verdict.Reason,
			)
			if e.metrics != nil {
				e.metrics.ToolExecutions.WithLabelValues(call.Tool, "rejected").Inc()
			}
			out.Result = "command rejected: " + verdict.Reason
			return out
		}
	}

	params, err := json.Marshal(call.Args)
	if err != nil {
		out.Result = fmt.Sprintf("invalid arguments: %v", err)
		return out
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := e.registry.Execute(callCtx, call.Tool, params)
	elapsed := time.Since(start)

	status := "success"
	switch {
	case err != nil:
		status = "error"
		out.Result = "tool error: " + err.Error()
	case result.IsError:
		status = "error"
		out.Result = result.Content
	default:
		out.Result = result.Content
		out.Success = true
	}

	if e.metrics != nil {
		e.metrics.ToolExecutions.WithLabelValues(call.Tool, status).Inc()
		e.metrics.ToolLatency.WithLabelValues(call.Tool).Observe(elapsed.Seconds())
	}
	e.logger.Debug(ctx, "tool executed",
		"tool", call.Tool,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	)
	return out
}
