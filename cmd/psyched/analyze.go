package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/logging"
	"github.com/fyrsmithlabs/psyched/internal/orchestrator"
	"github.com/fyrsmithlabs/psyched/internal/telemetry"
)

var (
	analyzeFile    string
	analyzeJSON    bool
	conversationID string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full multi-framework analysis over a conversation",
	Long: `Run quick scans for every enabled framework, escalate to deep analysis
where signal and cooldown permit, and print the aggregate result.

The conversation file is either a JSON array of {"role","content"}
messages or JSONL with one message per line.

Examples:
  # Text summary
  psyched analyze --file conversation.json

  # Full aggregate as JSON
  psyched analyze --file conversation.json --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "conversation file (JSON array or JSONL)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().StringVar(&conversationID, "conversation-id", "", "conversation ID (defaults to a random UUID)")
	_ = analyzeCmd.MarkFlagRequired("file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	parsed, err := conversation.ParseFile(analyzeFile)
	if err != nil {
		return fmt.Errorf("failed to parse conversation: %w", err)
	}
	if len(parsed.Messages) == 0 {
		return fmt.Errorf("conversation %s contains no usable messages", analyzeFile)
	}

	client, err := newModelClient(cfg)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg, client)
	if err != nil {
		return err
	}

	metrics, err := telemetry.New(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	orch := orchestrator.New(reg,
		orchestrator.WithLogger(logger.Named("orchestrator")),
		orchestrator.WithMetrics(metrics),
		orchestrator.WithTimeout(cfg.Orchestrator.Timeout.Duration()),
	)

	convID := conversationID
	if convID == "" {
		convID = uuid.NewString()
	} else if err := logging.ValidateID(convID, "conversation-id"); err != nil {
		return fmt.Errorf("invalid --conversation-id: %w", err)
	}
	ctx := logging.WithConversationID(cmd.Context(), convID)

	if client == nil {
		logger.Warn(ctx, "no API key configured, deep analysis disabled")
	}
	if parsed.Skipped > 0 {
		logger.Warn(ctx, "skipped malformed conversation entries")
	}

	result := orch.Analyze(ctx, parsed.Messages, convID, uuid.NewString(), orchestrator.NewHistory(reg.Enabled()...))

	if analyzeJSON {
		return printJSON(result)
	}
	printSummary(result)
	return nil
}

// printSummary renders the aggregate result as human-readable text.
func printSummary(result orchestrator.MultiFrameworkAnalysis) {
	fmt.Printf("Conversation %s\n", result.ConversationID)
	fmt.Printf("Total confidence: %.2f\n\n", result.TotalConfidence)

	for _, name := range sortedKeys(result.Frameworks) {
		analysis := result.Frameworks[name]
		status := "skipped"
		switch {
		case analysis.Analyzed && analysis.LLMUsed:
			status = string(analysis.AnalysisType)
		case analysis.Analyzed:
			status = "pattern_only (degraded)"
		}
		fmt.Printf("%-12s %-24s confidence %.2f, %d element(s)\n",
			name, status, analysis.ConfidenceScore, len(analysis.Elements))
		for _, el := range analysis.Elements {
			label := el.Type
			if el.Subtype != "" {
				label += "/" + el.Subtype
			}
			fmt.Printf("    - %s (%.2f): %s\n", label, el.Confidence, truncate(el.Evidence, 80))
		}
	}

	if len(result.CrossFrameworkInsights) > 0 {
		fmt.Println("\nInsights:")
		for _, ins := range result.CrossFrameworkInsights {
			fmt.Printf("  [%s] %.2f %s (%s)\n",
				ins.Type, ins.Confidence, ins.Description, strings.Join(ins.FrameworksInvolved, ", "))
		}
	}

	s := result.AnalysisSummary
	fmt.Printf("\nAnalyzed %d framework(s), %d with detections, %d element(s), %d insight(s)\n",
		s.FrameworksAnalyzed, s.FrameworksWithDetections, s.TotalElements, s.InsightCount)
	if s.HighestConfidenceFramework != "" {
		fmt.Printf("Highest confidence: %s\n", s.HighestConfidenceFramework)
	}
	if len(s.DominantThemes) > 0 {
		fmt.Printf("Dominant themes: %s\n", strings.Join(s.DominantThemes, ", "))
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
