package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/opsched/internal/config"
	"github.com/felixgeelhaar/opsched/internal/exitcode"
	"github.com/felixgeelhaar/opsched/internal/log"
	"github.com/felixgeelhaar/opsched/internal/plan"
	"github.com/felixgeelhaar/opsched/internal/ux"
)

var rootCmd = &cobra.Command{
	Use:   "opsched",
	Short: "Dependency-aware work item scheduler",
	Long: `opsched schedules facility-operations work items (messaging, billing, exports,
attendance and health checks) that depend on each other.

It builds a dependency graph from a work item file, groups the items into levels
that can run in parallel, forecasts the run through the critical path and drives
the levels one after another under a concurrency bound.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	logLevel   string
	logFormat  string
)

// ExecuteContext runs the root command with ctx; cancelling ctx cancels a run
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ReportError logs a failed command with its exit code and returns that code
func ReportError(ctx context.Context, err error) int {
	code := exitcode.DetermineExitCode(err)
	log.DefaultLogger().
		With("exit_code", code, "exit_reason", exitcode.GetExitCodeDescription(code)).
		LogError(ctx, err)
	return code
}

func init() {
	defaults := ux.NewPathDefaults(workingDir())

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaults.ConfigFile(), "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log.format (json, text)")
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// loadConfig reads --config (defaults when the file is missing) and applies
// the global logging overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg and installs it as default
func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:       log.ParseLevel(cfg.Log.Level),
		Format:      log.ParseFormat(cfg.Log.Format),
		Output:      w,
		ServiceName: "opsched",
	})
	log.SetDefaultLogger(logger)
	return logger
}

// resolveItemsPath falls back to the discovered .opsched items file
func resolveItemsPath(path string) string {
	if path != "" {
		return path
	}
	return ux.NewPathDefaults(workingDir()).ItemsFile()
}

// buildPlan loads and validates the item file and plans it
func buildPlan(itemsPath string, concurrency int) (*plan.ExecutionPlan, error) {
	items, err := plan.LoadItems(resolveItemsPath(itemsPath))
	if err != nil {
		return nil, err
	}
	return plan.New(items, concurrency)
}

// concurrencyFrom prefers an explicitly set --concurrency over the config value
func concurrencyFrom(cmd *cobra.Command, flagValue int, cfg *config.Config) int {
	if cmd.Flags().Changed("concurrency") {
		return flagValue
	}
	return cfg.Scheduler.Concurrency
}
