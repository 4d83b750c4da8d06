// app.go assembles the orchestration engine from configuration. Both
// the chat and ask commands share this wiring.
package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oakworth/steward/internal/agent"
	"github.com/oakworth/steward/internal/config"
	"github.com/oakworth/steward/internal/escalate"
	"github.com/oakworth/steward/internal/observability"
	"github.com/oakworth/steward/internal/providers"
	"github.com/oakworth/steward/internal/routing"
	"github.com/oakworth/steward/internal/sessions"
	execTool "github.com/oakworth/steward/internal/tools/exec"
	"github.com/oakworth/steward/internal/tools/files"
	systemTool "github.com/oakworth/steward/internal/tools/system"
	"github.com/oakworth/steward/internal/tools/web"
)

// app holds the wired engine and everything that needs shutdown.
type app struct {
	cfg     *config.Config
	logger  *observability.Logger
	runtime *agent.Runtime
	ollama  *providers.OllamaProvider

	closers []io.Closer
	stops   []func(context.Context) error
}

func newApp(cfg *config.Config, workdir string) (*app, error) {
	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	tracer, stopTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName:    "steward",
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Insecure:       cfg.Tracing.Insecure,
	})

	a := &app{cfg: cfg, logger: logger}
	a.stops = append(a.stops, stopTracer)

	var store sessions.Store
	if cfg.Storage.Path != "" {
		sqlStore, err := sessions.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		a.closers = append(a.closers, sqlStore)
		store = sqlStore
	} else {
		store = sessions.NewMemoryStore()
	}

	router := routing.NewRouter(routing.Config{
		MicroModel: cfg.Providers.Ollama.MicroModel,
		FullModel:  cfg.Providers.Ollama.FullModel,
	})

	a.ollama = providers.NewOllamaProvider(providers.OllamaConfig{
		BaseURL:      cfg.Providers.Ollama.BaseURL,
		DefaultModel: cfg.Providers.Ollama.MicroModel,
		Timeout:      cfg.Providers.Ollama.Timeout,
	})

	if workdir == "" {
		workdir = cfg.Tools.Workspace
	}
	fileCfg := files.Config{
		Workspace:    workdir,
		MaxReadBytes: cfg.Tools.MaxReadBytes,
	}

	registry := agent.NewRegistry()
	registry.Register(execTool.NewShellTool(workdir, cfg.Tools.PerToolTimeout))
	registry.Register(files.NewReadTool(fileCfg))
	registry.Register(files.NewWriteTool(fileCfg))
	registry.Register(files.NewEditTool(fileCfg))
	registry.Register(files.NewGlobTool(fileCfg))
	registry.Register(files.NewGrepTool(fileCfg))
	registry.Register(web.NewFetchTool(cfg.Tools.FetchTimeout))
	registry.Register(systemTool.NewInfoTool())
	registry.Register(systemTool.NewCacheTool(cfg.Escalation.Dir))

	executor := agent.NewExecutor(registry, logger, metrics, cfg.Tools.PerToolTimeout)

	var coordinator agent.Resolver
	escStore, err := escalate.NewFileStore(cfg.Escalation.Dir)
	if err != nil {
		logger.Warn(context.Background(), "escalation store unavailable, answers stay local", "error", err)
	} else {
		coordinator = escalate.NewCoordinator(escStore, escalate.CoordinatorConfig{
			Provider:     cfg.Escalation.Provider,
			PollInterval: cfg.Escalation.PollInterval,
			Timeout:      cfg.Escalation.Timeout,
		}, logger, metrics)
	}

	a.runtime = agent.NewRuntime(agent.Config{
		ConfidenceThreshold: cfg.Orchestration.ConfidenceThreshold,
		MaxToolDepth:        cfg.Orchestration.MaxToolDepth,
		DefaultModel:        cfg.Providers.Ollama.MicroModel,
		RequestTimeout:      cfg.Orchestration.RequestTimeout,
	}, store, router, a.ollama, executor, coordinator, logger, metrics, tracer)

	return a, nil
}

// warm preloads the micro model so the first request is fast. Failure
// only costs latency on the first request.
func (a *app) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.ollama.Warm(warmCtx, a.cfg.Providers.Ollama.MicroModel); err != nil {
		a.logger.Warn(ctx, "model warm-up failed", "error", err)
	}
}

func (a *app) close(ctx context.Context) {
	for _, stop := range a.stops {
		if err := stop(ctx); err != nil {
			a.logger.Warn(ctx, "shutdown step failed", "error", err)
		}
	}
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}
}
