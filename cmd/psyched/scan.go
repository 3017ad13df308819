package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
)

var (
	scanFile      string
	scanFramework string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the quick lexical scan for one framework, no model calls",
	Long: `Run only the deterministic pattern scan over a conversation's user
turns and print the matched categories and keywords.

Examples:
  psyched scan --file conversation.json --framework cbt`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFile, "file", "", "conversation file (JSON array or JSONL)")
	scanCmd.Flags().StringVar(&scanFramework, "framework", "", "framework name (e.g. cbt, ifs)")
	_ = scanCmd.MarkFlagRequired("file")
	_ = scanCmd.MarkFlagRequired("framework")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	parsed, err := conversation.ParseFile(scanFile)
	if err != nil {
		return fmt.Errorf("failed to parse conversation: %w", err)
	}

	// Scanning needs no model client.
	reg, err := buildRegistry(cfg, nil)
	if err != nil {
		return err
	}
	entry, err := reg.Get(scanFramework)
	if err != nil {
		return fmt.Errorf("unknown framework %q (see 'psyched frameworks'): %w", scanFramework, err)
	}

	window := conversation.Window(parsed.Messages, entry.Config.WindowSize)
	return printJSON(entry.QuickScan(window))
}
