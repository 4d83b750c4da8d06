// handlers.go contains the command implementations.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/oakworth/steward/internal/agent"
	"github.com/oakworth/steward/internal/config"
	"github.com/oakworth/steward/internal/escalate"
	"github.com/oakworth/steward/internal/observability"
	"github.com/oakworth/steward/internal/providers"
	"github.com/oakworth/steward/pkg/models"
)

func runChat(ctx context.Context, configPath, workdir string, quality bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, workdir)
	if err != nil {
		return err
	}
	defer a.close(context.Background())
	a.warm(ctx)

	session := &models.Session{
		ID:      uuid.New().String(),
		WorkDir: workdir,
		Title:   "interactive",
	}
	if err := a.runtime.Store().Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	fmt.Println("steward chat (ctrl-d to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			break
		}

		msg, err := a.runtime.Respond(ctx, session.ID, input, agent.RequestOptions{
			PreferQuality: quality,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		printMessage(msg)
	}
	return scanner.Err()
}

func runAsk(ctx context.Context, configPath, workdir string, args []string, quality, local, remote bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, workdir)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	session := &models.Session{
		ID:      uuid.New().String(),
		WorkDir: workdir,
		Title:   "one-shot",
	}
	if err := a.runtime.Store().Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	msg, err := a.runtime.Respond(ctx, session.ID, strings.Join(args, " "), agent.RequestOptions{
		PreferQuality: quality,
		ForceLocal:    local,
		ForceRemote:   remote,
	})
	if err != nil {
		return err
	}
	printMessage(msg)
	return nil
}

func runBridge(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	store, err := escalate.NewFileStore(cfg.Escalation.Dir)
	if err != nil {
		return err
	}

	var provider agent.Provider
	model := cfg.Escalation.AnthropicModel
	switch cfg.Escalation.Provider {
	case "openai", "gpt":
		provider = providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:       cfg.Providers.OpenAI.APIKey,
			BaseURL:      cfg.Providers.OpenAI.BaseURL,
			DefaultModel: cfg.Providers.OpenAI.Model,
		})
		model = cfg.Providers.OpenAI.Model
	default:
		provider = providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:       cfg.Escalation.AnthropicAPIKey,
			DefaultModel: cfg.Escalation.AnthropicModel,
		})
	}

	bridge := escalate.NewBridge(store, bridgeCompleter{provider}, escalate.BridgeConfig{
		Model:        model,
		PollInterval: cfg.Escalation.PollInterval,
	}, logger)

	if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// bridgeCompleter adapts a conversation-oriented provider to the
// bridge's one-shot prompt interface.
type bridgeCompleter struct {
	provider agent.Provider
}

func (c bridgeCompleter) Name() string { return c.provider.Name() }

func (c bridgeCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	completion, err := c.provider.Complete(ctx, &agent.CompletionRequest{
		Model:    model,
		Messages: []agent.CompletionMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return completion.Text, nil
}

func runConfig(out io.Writer, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Secrets stay out of terminal scrollback.
	if cfg.Providers.OpenAI.APIKey != "" {
		cfg.Providers.OpenAI.APIKey = "[redacted]"
	}
	if cfg.Escalation.AnthropicAPIKey != "" {
		cfg.Escalation.AnthropicAPIKey = "[redacted]"
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func printMessage(msg *models.Message) {
	fmt.Println(msg.Content)
	if msg.Meta == nil {
		return
	}
	var tags []string
	tags = append(tags, string(msg.Meta.Path))
	if msg.Meta.Provider != "" {
		tags = append(tags, msg.Meta.Provider)
	}
	tags = append(tags, fmt.Sprintf("confidence %.2f", msg.Meta.Confidence))
	if msg.Meta.Escalated {
		tags = append(tags, "escalated")
	}
	if len(msg.Meta.ToolCalls) > 0 {
		tags = append(tags, fmt.Sprintf("%d tool call(s)", len(msg.Meta.ToolCalls)))
	}
	fmt.Printf("[%s, %dms]\n", strings.Join(tags, ", "), msg.Meta.LatencyMS)
}
