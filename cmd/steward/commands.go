// commands.go contains the cobra command definitions. Each builder
// wires flags to its handler in handlers.go.
package main

import (
	"github.com/spf13/cobra"
)

func buildChatCmd() *cobra.Command {
	var (
		configPath string
		workdir    string
		quality    bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session against the local model tiers.

Each message is routed to the cheapest viable tier; tool calls emitted
by the model are validated and executed, and low-confidence answers are
escalated through the bridge queue when a bridge worker is running.`,
		Example: `  # Chat with default config
  steward chat

  # Prefer the full model for generative work
  steward chat --quality`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), resolveConfigPath(configPath), workdir, quality)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Working directory for shell and file tools")
	cmd.Flags().BoolVarP(&quality, "quality", "q", false, "Prefer the full-model tier for generative requests")

	return cmd
}

func buildAskCmd() *cobra.Command {
	var (
		configPath string
		workdir    string
		quality    bool
		local      bool
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Run a single request and print the answer",
		Args:  cobra.MinimumNArgs(1),
		Example: `  steward ask "check disk space"
  steward ask --local "summarize the readme"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), resolveConfigPath(configPath), workdir, args, quality, local, remote)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Working directory for shell and file tools")
	cmd.Flags().BoolVarP(&quality, "quality", "q", false, "Prefer the full-model tier")
	cmd.Flags().BoolVar(&local, "local", false, "Never escalate, keep the local answer")
	cmd.Flags().BoolVar(&remote, "remote", false, "Escalate regardless of confidence")
	cmd.MarkFlagsMutuallyExclusive("local", "remote")

	return cmd
}

func buildConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration after defaults, the config file
and environment overrides have been applied. Secrets are redacted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.OutOrStdout(), resolveConfigPath(configPath))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")

	return cmd
}

func buildBridgeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Run the escalation bridge worker",
		Long: `Run the bridge worker that consumes pending escalation tasks from
the shared queue, answers them through the configured remote provider,
and writes responses back for waiting sessions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd.Context(), resolveConfigPath(configPath))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")

	return cmd
}
