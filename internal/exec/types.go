package exec

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// ErrEscalated marks an agent outcome that needs a human rather than a retry
var ErrEscalated = errors.New("escalated")

// Escalate returns an error that classifies the item as escalated
func Escalate(reason string) error {
	return fmt.Errorf("%w: %s", ErrEscalated, reason)
}

// Agent performs one work item. A nil error means completed, an error
// wrapping ErrEscalated means escalated, anything else means failed.
// Implementations must be safe for concurrent use.
type Agent interface {
	Execute(ctx context.Context, item plan.WorkItem) error
}

// AgentFunc adapts a function to the Agent interface
type AgentFunc func(ctx context.Context, item plan.WorkItem) error

// Execute calls f(ctx, item)
func (f AgentFunc) Execute(ctx context.Context, item plan.WorkItem) error {
	return f(ctx, item)
}

// Result is the terminal outcome of one work item
type Result struct {
	ItemID     string            `json:"item_id" yaml:"item_id"`
	Status     plan.Status       `json:"status" yaml:"status"`
	Capability domain.Capability `json:"capability" yaml:"capability"`
	DurationMs int64             `json:"duration_ms" yaml:"duration_ms"`
	Level      int               `json:"level" yaml:"level"`
	Reason     string            `json:"reason,omitempty" yaml:"reason,omitempty"`
}
