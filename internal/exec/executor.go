package exec

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/log"
	"github.com/felixgeelhaar/opsched/internal/metrics"
	"github.com/felixgeelhaar/opsched/internal/plan"
	"github.com/felixgeelhaar/opsched/internal/telemetry"
)

// ReasonCancelled is the blocked reason of items that never started because the run was cancelled
const ReasonCancelled = "cancelled"

// Executor drives an ExecutionPlan level by level. Items of one level run
// concurrently under the plan's concurrency bound; the next level starts
// only after every item of the current one is terminal.
type Executor struct {
	Registry *Registry
	Logger   *log.Logger
	Metrics  *metrics.Metrics

	// ItemTimeout bounds each agent call; zero means no limit
	ItemTimeout time.Duration

	// NewSessionID generates session ids (uuid v4 when nil)
	NewSessionID func() string
}

// Run executes p and returns the session report. Item failures never abort
// the run; only binding errors do, before any item starts.
//
// Cancelling ctx lets in-flight items finish, dispatches nothing further and
// marks every item that never started as blocked with ReasonCancelled.
func (e *Executor) Run(ctx context.Context, p *plan.ExecutionPlan) (*Report, error) {
	if p == nil || p.DAG == nil {
		return nil, errors.New(errors.ErrCodePlanInvalid, "execution plan is empty")
	}

	registry := e.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	binding, err := registry.Bind(p)
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RecordError(string(errors.CodeOf(err)), "exec")
		}
		return nil, err
	}

	sessionID := e.sessionID()
	logger := e.logger(ctx).With("session_id", sessionID)
	for _, d := range p.DAG.Dangling {
		logger.Warn("ignoring unknown dependency", "item_id", d.ItemID, "dependency_id", d.DependencyID)
	}

	ctx, span := telemetry.StartRunSpan(ctx, sessionID, p.DAG.Len(), len(p.DAG.Levels))
	defer span.End()

	logger.InfoContext(ctx, "run started",
		"items", p.DAG.Len(),
		"levels", len(p.DAG.Levels),
		"concurrency", p.Concurrency,
		"critical_path_minutes", p.CriticalPathMinutes,
	)

	start := time.Now()
	statuses := make(map[string]plan.Status, p.DAG.Len())
	results := make([]Result, 0, p.DAG.Len())

	for k := range p.DAG.Levels {
		levelResults := e.runLevel(ctx, logger, p, binding, k, statuses)
		for _, r := range levelResults {
			statuses[r.ItemID] = r.Status
		}
		results = append(results, levelResults...)
	}

	report := Aggregate(sessionID, start, time.Now(), results)
	report.Cancelled = cancelledAny(results)

	logger.InfoContext(ctx, "run finished",
		"completed", report.Summary.Completed,
		"failed", report.Summary.Failed,
		"escalated", report.Summary.Escalated,
		"blocked", report.Summary.Blocked,
		"duration_ms", report.DurationMs,
	)

	if e.Metrics != nil {
		e.Metrics.RecordRun(report.Outcome(), report.EndTime.Sub(report.StartTime).Seconds())
	}
	if err := report.Err(); err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.RecordSuccess(span)
	}

	return report, nil
}

// cancelledAny reports whether the run left items unstarted because of cancellation
func cancelledAny(results []Result) bool {
	for _, r := range results {
		if r.Status == plan.StatusBlocked && r.Reason == ReasonCancelled {
			return true
		}
	}
	return false
}

// collector gathers a level's results in the order items became terminal
type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (e *Executor) runLevel(ctx context.Context, logger *log.Logger, p *plan.ExecutionPlan, binding Binding, k int, statuses map[string]plan.Status) []Result {
	items := p.Level(k)

	levelCtx, span := telemetry.StartLevelSpan(ctx, k, len(items))
	defer span.End()

	levelStart := time.Now()
	logger.DebugContext(levelCtx, "level started", "level", k, "items", len(items))

	c := &collector{results: make([]Result, 0, len(items))}
	runnable := make([]plan.WorkItem, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			c.add(e.blocked(levelCtx, logger, item, k, ReasonCancelled))
			continue
		}
		if reason, ok := blockedReason(p.DAG, item.ID, statuses); ok {
			c.add(e.blocked(levelCtx, logger, item, k, reason))
			continue
		}
		runnable = append(runnable, item)
	}

	// agents finish their work even if the run is cancelled mid-level
	agentCtx := context.WithoutCancel(levelCtx)

	g := new(errgroup.Group)
	g.SetLimit(p.Concurrency)
	for _, item := range runnable {
		if ctx.Err() != nil {
			c.add(e.blocked(levelCtx, logger, item, k, ReasonCancelled))
			continue
		}
		agent := binding[item.ID]
		g.Go(func() error {
			// g.Go may have waited for a slot past the cancellation
			if ctx.Err() != nil {
				c.add(e.blocked(levelCtx, logger, item, k, ReasonCancelled))
				return nil
			}
			c.add(e.runItem(agentCtx, logger, agent, item, k))
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(levelStart)
	if e.Metrics != nil {
		e.Metrics.RecordLevel(len(items), elapsed.Seconds())
	}
	telemetry.RecordDuration(span, "level", elapsed)
	logger.DebugContext(levelCtx, "level finished", "level", k, "duration_ms", elapsed.Milliseconds())

	return c.results
}

// blockedReason reports the first known prerequisite of id that did not complete
func blockedReason(d *plan.DAG, id string, statuses map[string]plan.Status) (string, bool) {
	for _, prereq := range d.Prerequisites(id) {
		if status := statuses[prereq]; status != plan.StatusCompleted {
			return fmt.Sprintf("prerequisite %s %s", prereq, status), true
		}
	}
	return "", false
}

func (e *Executor) blocked(ctx context.Context, logger *log.Logger, item plan.WorkItem, level int, reason string) Result {
	logger.WarnContext(ctx, "item blocked", "item_id", item.ID, "level", level, "reason", reason)
	if e.Metrics != nil {
		e.Metrics.RecordItem(string(item.Capability), string(plan.StatusBlocked), 0)
	}
	return Result{
		ItemID:     item.ID,
		Status:     plan.StatusBlocked,
		Capability: item.Capability,
		Level:      level,
		Reason:     reason,
	}
}

func (e *Executor) runItem(ctx context.Context, logger *log.Logger, agent Agent, item plan.WorkItem, level int) Result {
	ctx, span := telemetry.StartItemSpan(ctx, item.ID, string(item.Capability))
	defer span.End()

	if e.Metrics != nil {
		e.Metrics.ItemsRunning.Inc()
		defer e.Metrics.ItemsRunning.Dec()
	}

	logger.DebugContext(ctx, "item running", "item_id", item.ID, "level", level, "capability", item.Capability)

	start := time.Now()
	err := e.invoke(ctx, agent, item)
	elapsed := time.Since(start)

	result := Result{
		ItemID:     item.ID,
		Capability: item.Capability,
		DurationMs: elapsed.Milliseconds(),
		Level:      level,
	}

	switch {
	case err == nil:
		result.Status = plan.StatusCompleted
		telemetry.RecordSuccess(span)
		logger.InfoContext(ctx, "item completed", "item_id", item.ID, "duration_ms", result.DurationMs)
	case stderrors.Is(err, ErrEscalated):
		result.Status = plan.StatusEscalated
		result.Reason = err.Error()
		telemetry.RecordError(span, err)
		logger.WarnContext(ctx, "item escalated", "item_id", item.ID, "reason", result.Reason)
	default:
		result.Status = plan.StatusFailed
		result.Reason = err.Error()
		telemetry.RecordError(span, err)
		logger.WithError(err).WarnContext(ctx, "item failed", "item_id", item.ID, "duration_ms", result.DurationMs)
	}

	if e.Metrics != nil {
		e.Metrics.RecordItem(string(item.Capability), string(result.Status), elapsed.Seconds())
	}

	return result
}

// invoke calls the agent, converting a panic or an expired item timeout into a failure
func (e *Executor) invoke(ctx context.Context, agent Agent, item plan.WorkItem) (err error) {
	if e.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ItemTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()

	err = agent.Execute(ctx, item)

	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeExecTimeout, fmt.Sprintf("item %s exceeded timeout %s", item.ID, e.ItemTimeout), ctx.Err())
	}
	return err
}

func (e *Executor) sessionID() string {
	if e.NewSessionID != nil {
		return e.NewSessionID()
	}
	return uuid.NewString()
}

func (e *Executor) logger(ctx context.Context) *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.FromContext(ctx)
}
