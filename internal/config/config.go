// Package config loads the orchestration core configuration from YAML
// with environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Orchestration OrchestrationConfig `yaml:"orchestration"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Escalation    EscalationConfig    `yaml:"escalation"`
	Tools         ToolsConfig         `yaml:"tools"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Storage       StorageConfig       `yaml:"storage"`
}

// OrchestrationConfig carries the tunables that were hand-tuned
// constants in earlier revisions. None of the defaults are known to be
// optimal; they are exposed here precisely so deployments can adjust
// them.
type OrchestrationConfig struct {
	// ConfidenceThreshold is the score below which a local result is
	// escalated. Default 0.6.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// MaxToolDepth bounds recursive tool follow-ups per turn. Default 5.
	MaxToolDepth int `yaml:"max_tool_depth"`

	// RequestTimeout bounds one whole top-level request. Default 5m.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ProvidersConfig configures the model backends.
type ProvidersConfig struct {
	Ollama OllamaConfig `yaml:"ollama"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OllamaConfig configures the local micro-model backend.
type OllamaConfig struct {
	BaseURL    string        `yaml:"base_url"`
	MicroModel string        `yaml:"micro_model"`
	FullModel  string        `yaml:"full_model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// OpenAIConfig configures the OpenAI-compatible backend used for the
// full-model tier and by the escalation bridge worker.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EscalationConfig configures the shared escalation transport.
type EscalationConfig struct {
	// Dir holds the task file and response map. Default ~/.steward/escalation.
	Dir string `yaml:"dir"`

	// Provider tags enqueued tasks for the remote worker. Default "claude".
	Provider string `yaml:"provider"`

	// PollInterval between response store reads. Default 2s.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout abandons the task after this long. Default 120s.
	Timeout time.Duration `yaml:"timeout"`

	// AnthropicAPIKey authenticates the bridge worker, not the core.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// AnthropicModel is the model the bridge worker calls.
	AnthropicModel string `yaml:"anthropic_model"`
}

// ToolsConfig configures capability handlers.
type ToolsConfig struct {
	// Workspace roots relative tool paths. Default: process working dir.
	Workspace string `yaml:"workspace"`

	// PerToolTimeout bounds one handler invocation. Default 30s.
	PerToolTimeout time.Duration `yaml:"per_tool_timeout"`

	// MaxReadBytes caps read_file output. Default 200000.
	MaxReadBytes int `yaml:"max_read_bytes"`

	// FetchTimeout bounds web_fetch. Default 10s.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Insecure     bool    `yaml:"insecure"`
}

// StorageConfig configures session persistence.
type StorageConfig struct {
	// Path is the sqlite database file; empty selects the in-memory store.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Orchestration: OrchestrationConfig{
			ConfidenceThreshold: 0.6,
			MaxToolDepth:        5,
			RequestTimeout:      5 * time.Minute,
		},
		Providers: ProvidersConfig{
			Ollama: OllamaConfig{
				BaseURL:    "http://localhost:11434",
				MicroModel: "qwen2.5-coder:1.5b",
				FullModel:  "qwen2.5-coder:7b",
				Timeout:    2 * time.Minute,
			},
			OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
		},
		Escalation: EscalationConfig{
			Dir:            filepath.Join(home, ".steward", "escalation"),
			Provider:       "claude",
			PollInterval:   2 * time.Second,
			Timeout:        120 * time.Second,
			AnthropicModel: "claude-sonnet-4-20250514",
		},
		Tools: ToolsConfig{
			PerToolTimeout: 30 * time.Second,
			MaxReadBytes:   200000,
			FetchTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{SamplingRate: 1.0},
	}
}

// Load reads path, layers it over defaults, then applies env overrides.
// A missing file is not an error; defaults plus env are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STEWARD_OPENAI_API_KEY"); v != "" {
		cfg.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("STEWARD_ANTHROPIC_API_KEY"); v != "" {
		cfg.Escalation.AnthropicAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Escalation.AnthropicAPIKey == "" {
		cfg.Escalation.AnthropicAPIKey = v
	}
	if v := os.Getenv("STEWARD_OLLAMA_URL"); v != "" {
		cfg.Providers.Ollama.BaseURL = v
	}
	if v := os.Getenv("STEWARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Orchestration.ConfidenceThreshold < 0 || c.Orchestration.ConfidenceThreshold > 1 {
		return fmt.Errorf("config: confidence_threshold %v outside [0,1]", c.Orchestration.ConfidenceThreshold)
	}
	if c.Orchestration.MaxToolDepth <= 0 {
		return fmt.Errorf("config: max_tool_depth must be positive, got %d", c.Orchestration.MaxToolDepth)
	}
	if c.Escalation.PollInterval <= 0 {
		return fmt.Errorf("config: escalation poll_interval must be positive")
	}
	if c.Escalation.Timeout < c.Escalation.PollInterval {
		return fmt.Errorf("config: escalation timeout shorter than poll interval")
	}
	return nil
}
