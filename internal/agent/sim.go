package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/opsched/internal/exec"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// Sim is a dry-run agent: it sleeps for the item's estimate scaled by
// MinuteScale and fails or escalates the ids it was told to
type Sim struct {
	MinuteScale time.Duration
	Fail        map[string]bool
	Escalate    map[string]bool
}

// NewSim creates a sim agent from id lists
func NewSim(minuteScale time.Duration, fail, escalate []string) *Sim {
	s := &Sim{
		MinuteScale: minuteScale,
		Fail:        make(map[string]bool, len(fail)),
		Escalate:    make(map[string]bool, len(escalate)),
	}
	for _, id := range fail {
		s.Fail[id] = true
	}
	for _, id := range escalate {
		s.Escalate[id] = true
	}
	return s
}

// Execute implements exec.Agent
func (s *Sim) Execute(ctx context.Context, item plan.WorkItem) error {
	if wait := time.Duration(item.EstimateMinutes) * s.MinuteScale; wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	switch {
	case s.Fail[item.ID]:
		return fmt.Errorf("simulated failure of %s", item.ID)
	case s.Escalate[item.ID]:
		return exec.Escalate(fmt.Sprintf("simulated escalation of %s", item.ID))
	default:
		return nil
	}
}
