package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/opsched/internal/telemetry"
	"github.com/felixgeelhaar/opsched/internal/ux"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the execution levels and critical path of a work item file",
	Long: `Build the dependency graph of a work item file without running anything.

Prints the parallel levels, the critical path with its forecast duration, the
serial estimate and every dependency that names an unknown item.

Examples:
  # Plan the items discovered in .opsched/
  opsched plan

  # Plan a specific file as JSON
  opsched plan --items ops.yaml --format json`,
	RunE: runPlan,
}

var (
	planItems       string
	planConcurrency int
	planFormat      string
	planNoColor     bool
)

func init() {
	planCmd.Flags().StringVarP(&planItems, "items", "i", "", "work item file (.json, .yaml; default .opsched/items.yaml)")
	planCmd.Flags().IntVarP(&planConcurrency, "concurrency", "c", 0, "requested concurrency (default from config)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "text", "output format (text, json, yaml)")
	planCmd.Flags().BoolVar(&planNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, span := telemetry.StartCommandSpan(cmd.Context(), "plan")
	defer span.End()

	p, err := buildPlan(planItems, concurrencyFrom(cmd, planConcurrency, cfg))
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	formatter, err := ux.NewFormatter(planFormat, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: planNoColor,
	})
	if err != nil {
		return err
	}

	telemetry.RecordSuccess(span)
	return formatter.Format(p)
}
