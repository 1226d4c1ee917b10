package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/opsched/internal/agent"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a work item file and the agent configuration",
	Long: `Validate a work item file without running it.

Checks every item's fields, rejects duplicate ids and dependency cycles, and
verifies that every capability used by the file has an agent configured.
Dependencies naming unknown items are reported but do not fail validation.`,
	RunE: runValidate,
}

var validateItems string

func init() {
	validateCmd.Flags().StringVarP(&validateItems, "items", "i", "", "work item file (.json, .yaml; default .opsched/items.yaml)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := buildPlan(validateItems, cfg.Scheduler.Concurrency)
	if err != nil {
		return err
	}

	registry, err := agent.NewRegistry(cfg.Agents)
	if err != nil {
		return err
	}
	if _, err := registry.Bind(p); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range p.DAG.Dangling {
		fmt.Fprintf(out, "warning: %s depends on unknown item %s (ignored)\n", d.ItemID, d.DependencyID)
	}
	fmt.Fprintf(out, "✓ %d items in %d levels, critical path %d min\n",
		p.DAG.Len(), len(p.DAG.Levels), p.CriticalPathMinutes)
	return nil
}
