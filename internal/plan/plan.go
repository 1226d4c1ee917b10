package plan

import (
	"fmt"
	"strings"
)

// ExecutionPlan is everything the driver needs for one scheduling session
type ExecutionPlan struct {
	DAG          *DAG     `json:"dag" yaml:"dag"`
	CriticalPath []string `json:"critical_path" yaml:"critical_path"`
	// CriticalPathMinutes is the parallel forecast: the duration of the critical path
	CriticalPathMinutes int `json:"critical_path_minutes" yaml:"critical_path_minutes"`
	// EstimatedTotalMinutes is the serial worst case: the sum of every item's estimate
	EstimatedTotalMinutes int `json:"estimated_total_minutes" yaml:"estimated_total_minutes"`
	// Concurrency is the effective bound, never larger than the item count
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	items []WorkItem
}

// New builds the DAG for items, computes its critical path and clamps the
// requested concurrency to max(1, min(requested, len(items))).
// A cycle aborts planning with an error wrapping *CycleError.
func New(items []WorkItem, requestedConcurrency int) (*ExecutionPlan, error) {
	dag, err := Build(items)
	if err != nil {
		return nil, err
	}

	path := CriticalPath(dag)

	total := 0
	for _, item := range items {
		total += item.EstimateMinutes
	}

	return &ExecutionPlan{
		DAG:                   dag,
		CriticalPath:          path,
		CriticalPathMinutes:   dag.PathMinutes(path),
		EstimatedTotalMinutes: total,
		Concurrency:           effectiveConcurrency(requestedConcurrency, len(items)),
		items:                 append([]WorkItem(nil), items...),
	}, nil
}

func effectiveConcurrency(requested, itemCount int) int {
	return max(1, min(requested, itemCount))
}

// Items returns the submitted items in submission order
func (p *ExecutionPlan) Items() []WorkItem {
	return p.items
}

// Level returns the items of level k in submission order
func (p *ExecutionPlan) Level(k int) []WorkItem {
	if k < 0 || k >= len(p.DAG.Levels) {
		return nil
	}
	ids := p.DAG.Levels[k]
	items := make([]WorkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, p.DAG.items[id])
	}
	return items
}

// String renders a human readable summary of the plan
func (p *ExecutionPlan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %d items, %d levels, concurrency %d\n", p.DAG.Len(), len(p.DAG.Levels), p.Concurrency)
	for i, level := range p.DAG.Levels {
		fmt.Fprintf(&b, "Level %d (%d items): %s\n", i, len(level), strings.Join(level, ", "))
	}
	if len(p.CriticalPath) > 0 {
		fmt.Fprintf(&b, "Critical path: %s (%d min)\n", strings.Join(p.CriticalPath, " -> "), p.CriticalPathMinutes)
	}
	fmt.Fprintf(&b, "Serial estimate: %d min\n", p.EstimatedTotalMinutes)
	for _, d := range p.DAG.Dangling {
		fmt.Fprintf(&b, "Ignored dependency: %s -> %s (unknown item)\n", d.ItemID, d.DependencyID)
	}
	return b.String()
}
