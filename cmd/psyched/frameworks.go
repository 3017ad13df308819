package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List registered frameworks and their configuration",
	RunE:  runFrameworks,
}

func runFrameworks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg, nil)
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-8s %-10s %-10s %s\n", "NAME", "ENABLED", "INTERVAL", "THRESHOLD", "WINDOW")
	for _, name := range reg.Names() {
		entry, err := reg.Get(name)
		if err != nil {
			continue
		}
		c := entry.Config
		fmt.Printf("%-12s %-8t %-10d %-10.2f %d\n",
			name, c.Enabled, c.AnalysisInterval, c.ConfidenceThreshold, c.WindowSize)
	}
	return nil
}
