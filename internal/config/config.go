// Package config provides configuration loading for psyched: hardcoded
// defaults, overridden by an optional YAML file, overridden by PSYCHED_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/llm"
	"github.com/fyrsmithlabs/psyched/internal/logging"
	"github.com/fyrsmithlabs/psyched/internal/registry"
)

const (
	envPrefix         = "PSYCHED_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config is the full application configuration.
type Config struct {
	Logging      logging.Config             `koanf:"logging"`
	LLM          llm.Config                 `koanf:"llm"`
	Orchestrator OrchestratorConfig         `koanf:"orchestrator"`
	Frameworks   map[string]registry.Config `koanf:"frameworks"`
}

// OrchestratorConfig holds orchestration-level settings.
type OrchestratorConfig struct {
	// Timeout is the overall deadline per analysis call. Zero disables it.
	Timeout Duration `koanf:"timeout"`
}

// DefaultConfig returns the configuration used when no file or
// environment overrides are present: all built-in frameworks enabled with
// default scheduling, Anthropic as the model provider.
func DefaultConfig() *Config {
	frameworks := make(map[string]registry.Config, len(framework.BuiltinNames()))
	for _, name := range framework.BuiltinNames() {
		frameworks[name] = registry.DefaultConfig()
	}
	return &Config{
		Logging: *logging.NewDefaultConfig(),
		LLM: llm.Config{
			Provider: "anthropic",
		},
		Orchestrator: OrchestratorConfig{
			Timeout: Duration(60 * time.Second),
		},
		Frameworks: frameworks,
	}
}

// Load reads configuration from an optional YAML file and the
// environment. A missing file is not an error; an unreadable or invalid
// one is.
//
// Environment variables are prefixed with PSYCHED_ and map to config keys
// by splitting on the first underscore after the prefix:
//
//	PSYCHED_LLM_API_KEY      -> llm.api_key
//	PSYCHED_LOGGING_LEVEL    -> logging.level
//	PSYCHED_ORCHESTRATOR_TIMEOUT -> orchestrator.timeout
//
// Per-framework settings are file-only.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		info, err := os.Stat(configPath)
		switch {
		case os.IsNotExist(err):
			// Missing file falls through to defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		default:
			if info.Size() > maxConfigFileSize {
				return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
			}
			content, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// PSYCHED_LLM_API_KEY -> llm.api_key: section before the first
		// underscore, field name keeps its underscores.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills fields a partial file override left at zero. A
// framework entry that sets only `enabled: false` still needs valid
// scheduling fields to pass validation.
func applyDefaults(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	def := registry.DefaultConfig()
	for name, fw := range cfg.Frameworks {
		if fw.AnalysisInterval == 0 {
			fw.AnalysisInterval = def.AnalysisInterval
		}
		if fw.WindowSize == 0 {
			fw.WindowSize = def.WindowSize
		}
		cfg.Frameworks[name] = fw
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.LLM.Provider != "anthropic" && c.LLM.Provider != "openai" {
		return fmt.Errorf("llm provider must be 'anthropic' or 'openai', got %q", c.LLM.Provider)
	}
	if c.Orchestrator.Timeout.Duration() < 0 {
		return fmt.Errorf("orchestrator timeout cannot be negative")
	}
	for name, fw := range c.Frameworks {
		if err := fw.Validate(); err != nil {
			return fmt.Errorf("framework %q: %w", name, err)
		}
	}
	return nil
}

// FrameworkConfig returns the configuration for a framework, falling back
// to defaults for frameworks absent from the map.
func (c *Config) FrameworkConfig(name string) registry.Config {
	if fw, ok := c.Frameworks[name]; ok {
		return fw
	}
	return registry.DefaultConfig()
}
