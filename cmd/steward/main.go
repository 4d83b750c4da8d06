// Package main provides the CLI entry point for the Steward request
// orchestration engine.
//
// Steward routes free-form requests to the cheapest viable processing
// tier, runs local model calls through Ollama, extracts and safely
// executes tool calls the model emits, and escalates low-confidence
// answers to a remote backend through a shared file queue.
//
// # Basic Usage
//
// Start an interactive chat session:
//
//	steward chat
//
// Ask a single question:
//
//	steward ask "check disk space"
//
// Run the escalation bridge worker:
//
//	steward bridge
//
// # Environment Variables
//
//   - STEWARD_CONFIG: Path to configuration file (default: steward.yaml)
//   - OPENAI_API_KEY: OpenAI API key for the full-model tier
//   - ANTHROPIC_API_KEY: Anthropic API key for the bridge worker
//   - STEWARD_OLLAMA_URL: Ollama server URL (default: http://localhost:11434)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "steward",
		Short:         "Local-first request orchestration engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildChatCmd(), buildAskCmd(), buildBridgeCmd(), buildConfigCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("STEWARD_CONFIG"); env != "" {
		return env
	}
	return "steward.yaml"
}
