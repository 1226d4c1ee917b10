package cmd

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/opsched/internal/agent"
	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/exec"
	"github.com/felixgeelhaar/opsched/internal/log"
	"github.com/felixgeelhaar/opsched/internal/metrics"
	"github.com/felixgeelhaar/opsched/internal/server"
	"github.com/felixgeelhaar/opsched/internal/telemetry"
	"github.com/felixgeelhaar/opsched/internal/ux"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a work item file level by level",
	Long: `Plan a work item file and execute it with the agents configured per capability.

Items of one level run concurrently under the concurrency bound; the next level
starts only after every item of the current one finished. An item whose
prerequisite did not complete is blocked and never reaches its agent.

The exit code reflects the outcome: 0 when every item completed, otherwise the
most severe of cancelled, failed, escalated or blocked.

Examples:
  # Run with the configured agents
  opsched run --items ops.yaml

  # Bound concurrency and each agent call, expose /metrics while running
  opsched run --items ops.yaml -c 2 --timeout 30s --metrics-addr :9090`,
	RunE: runExecute,
}

var (
	runItems       string
	runConcurrency int
	runTimeout     time.Duration
	runMetricsAddr string
	runReportDir   string
	runSaveReport  bool
	runFormat      string
	runNoColor     bool
)

func init() {
	runCmd.Flags().StringVarP(&runItems, "items", "i", "", "work item file (.json, .yaml; default .opsched/items.yaml)")
	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 0, "requested concurrency (default from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-item agent timeout (default from config, 0 disables)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	runCmd.Flags().StringVar(&runReportDir, "report-dir", "", "write the JSON report into this directory")
	runCmd.Flags().BoolVar(&runSaveReport, "save", false, "write the JSON report into .opsched/runs when no report directory is set")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "text", "report format (text, json, yaml)")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
}

func runExecute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Scheduler.ItemTimeout = runTimeout
	}
	if runMetricsAddr != "" {
		cfg.Metrics.Addr = runMetricsAddr
	}
	if runReportDir != "" {
		cfg.Scheduler.ReportDir = runReportDir
	}
	if runSaveReport && cfg.Scheduler.ReportDir == "" {
		cfg.Scheduler.ReportDir = ux.NewPathDefaults(workingDir()).ReportDir()
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())

	shutdownTracing, err := telemetry.InitProvider(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}
	}()

	ctx, span := telemetry.StartCommandSpan(ctx, "run")
	defer span.End()

	reg, m := metrics.NewRegistry()
	if cfg.Metrics.Addr != "" {
		srv := server.NewServer(metrics.HandlerFor(reg, promhttp.HandlerOpts{}), server.Config{Address: cfg.Metrics.Addr})
		if err := srv.Start(); err != nil {
			return errors.Wrap(errors.ErrCodeConfigInvalid, "start metrics endpoint", err)
		}
		logger.Info("serving metrics", "addr", srv.Addr())
		defer func() {
			if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.WithError(err).Warn("metrics endpoint did not drain")
			}
		}()
	}

	p, err := buildPlan(runItems, concurrencyFrom(cmd, runConcurrency, cfg))
	if err != nil {
		m.RecordPlanError(string(errors.CodeOf(err)))
		telemetry.RecordError(span, err)
		return err
	}
	m.RecordPlan(p.DAG.Len(), len(p.DAG.Levels), p.CriticalPathMinutes, len(p.DAG.Dangling))
	logger.Info("plan built",
		"items", p.DAG.Len(),
		"levels", len(p.DAG.Levels),
		"concurrency", p.Concurrency,
		"critical_path_minutes", p.CriticalPathMinutes,
		"fingerprint", p.DAG.Fingerprint())

	registry, err := agent.NewRegistry(cfg.Agents)
	if err != nil {
		return err
	}

	executor := &exec.Executor{
		Registry:    registry,
		Logger:      logger,
		Metrics:     m,
		ItemTimeout: cfg.Scheduler.ItemTimeout,
	}

	report, err := executor.Run(log.WithLogger(ctx, logger), p)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	formatter, err := ux.NewFormatter(runFormat, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: runNoColor,
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(report); err != nil {
		return err
	}

	if cfg.Scheduler.ReportDir != "" {
		path, err := exec.SaveReport(report, cfg.Scheduler.ReportDir)
		if err != nil {
			return err
		}
		logger.Info("report saved", "path", path)
	}

	runErr := report.Err()
	if runErr != nil {
		telemetry.RecordError(span, runErr)
	} else {
		telemetry.RecordSuccess(span)
	}
	return runErr
}
