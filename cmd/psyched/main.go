// Package main implements the psyched CLI: conversation analysis across
// multiple psychological frameworks from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/psyched/internal/config"
	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/llm"
	"github.com/fyrsmithlabs/psyched/internal/logging"
	"github.com/fyrsmithlabs/psyched/internal/registry"
)

var (
	// configPath is the optional YAML config file.
	configPath string
	// version information, set at build time.
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "psyched",
	Short: "Multi-framework psychological conversation analysis",
	Long: `psyched analyzes a conversation across several psychological frameworks
(CBT, Jungian, narrative, attachment, IFS): cheap lexical scanning every
turn, selective model-driven deep analysis, and cross-framework insight
synthesis.

Without an API key (ANTHROPIC_API_KEY, OPENAI_API_KEY, or
PSYCHED_LLM_API_KEY) deep analysis is unavailable and every framework
degrades to pattern-only scoring; the output is still complete.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(frameworksCmd)
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newModelClient builds the LLM client, or returns nil when no API key is
// configured. A nil client means every escalation degrades to
// pattern-only analysis.
func newModelClient(cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil
	}
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return client, nil
}

// buildRegistry registers the built-in detectors with their configured
// settings in the default registration order.
func buildRegistry(cfg *config.Config, client llm.Client) (*registry.Registry, error) {
	reg := registry.New()
	for _, detector := range framework.BuiltinDetectors(client) {
		if err := reg.Register(detector, cfg.FrameworkConfig(detector.Name())); err != nil {
			return nil, fmt.Errorf("failed to register framework: %w", err)
		}
	}
	return reg, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sortedKeys returns a map's keys in lexicographic order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
