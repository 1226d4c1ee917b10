package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for opsched
type Metrics struct {
	// Planning metrics
	PlansBuilt          *prometheus.CounterVec
	PlanItemCount       prometheus.Histogram
	PlanLevelCount      prometheus.Histogram
	CriticalPathMinutes prometheus.Histogram
	DanglingDeps        prometheus.Counter

	// Run metrics
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Level metrics
	LevelDuration prometheus.Histogram
	LevelWidth    prometheus.Histogram

	// Item metrics
	ItemResults  *prometheus.CounterVec
	ItemDuration *prometheus.HistogramVec
	ItemsRunning prometheus.Gauge

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PlansBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsched_plans_built_total",
				Help: "Total number of execution plans built",
			},
			[]string{"success"},
		),
		PlanItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsched_plan_item_count",
				Help:    "Number of work items in built plans",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
		),
		PlanLevelCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsched_plan_level_count",
				Help:    "Number of parallel levels in built plans",
				Buckets: []float64{1, 2, 3, 5, 10, 20},
			},
		),
		CriticalPathMinutes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsched_plan_critical_path_minutes",
				Help:    "Estimated critical path duration of built plans in minutes",
				Buckets: []float64{5, 15, 30, 60, 120, 240, 480},
			},
		),
		DanglingDeps: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "opsched_plan_dangling_dependencies_total",
				Help: "Total number of dependencies that referenced unknown items",
			},
		),

		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsched_runs_total",
				Help: "Total number of scheduling runs",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsched_run_duration_seconds",
				Help:    "Scheduling run wall-clock duration in seconds",
				Buckets: []float64{0.1, 1.0, 5.0, 30.0, 60.0, 300.0, 900.0, 3600.0},
			},
		),

		LevelDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsched_level_duration_seconds",
				Help:    "Duration of one level from dispatch to barrier in seconds",
				Buckets: []float64{0.1, 1.0, 5.0, 30.0, 60.0, 300.0, 900.0},
			},
		),
		LevelWidth: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsched_level_width",
				Help:    "Number of items in each executed level",
				Buckets: []float64{1, 2, 5, 10, 20, 50},
			},
		),

		ItemResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsched_item_results_total",
				Help: "Total number of work item outcomes by terminal status",
			},
			[]string{"capability", "status"},
		),
		ItemDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsched_item_duration_seconds",
				Help:    "Work item agent execution duration in seconds",
				Buckets: []float64{0.01, 0.1, 1.0, 5.0, 30.0, 60.0, 300.0},
			},
			[]string{"capability"},
		),
		ItemsRunning: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsched_items_running",
				Help: "Number of work items currently executing",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsched_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordPlan records a successfully built plan
func (m *Metrics) RecordPlan(items, levels, criticalPathMinutes, dangling int) {
	m.PlansBuilt.WithLabelValues("true").Inc()
	m.PlanItemCount.Observe(float64(items))
	m.PlanLevelCount.Observe(float64(levels))
	m.CriticalPathMinutes.Observe(float64(criticalPathMinutes))
	m.DanglingDeps.Add(float64(dangling))
}

// RecordPlanError records a planning failure
func (m *Metrics) RecordPlanError(errorCode string) {
	m.PlansBuilt.WithLabelValues("false").Inc()
	m.RecordError(errorCode, "plan")
}

// RecordItem records the terminal outcome of one work item
func (m *Metrics) RecordItem(capability, status string, seconds float64) {
	m.ItemResults.WithLabelValues(capability, status).Inc()
	if status != "blocked" {
		m.ItemDuration.WithLabelValues(capability).Observe(seconds)
	}
}

// RecordLevel records one executed level
func (m *Metrics) RecordLevel(width int, seconds float64) {
	m.LevelWidth.Observe(float64(width))
	m.LevelDuration.Observe(seconds)
}

// RecordRun records a finished run; outcome is "success", "partial" or "cancelled"
func (m *Metrics) RecordRun(outcome string, seconds float64) {
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(seconds)
}

// RecordError records an error by its structured code
func (m *Metrics) RecordError(errorCode, component string) {
	if errorCode == "" {
		errorCode = "unknown"
	}
	m.Errors.WithLabelValues(errorCode, component).Inc()
}
