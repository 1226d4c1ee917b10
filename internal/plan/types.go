package plan

import "github.com/felixgeelhaar/opsched/internal/domain"

// Status is the lifecycle state of a work item within one scheduling session
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusEscalated Status = "escalated"
	StatusBlocked   Status = "blocked"
)

// IsTerminal reports whether no further transition can leave s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusEscalated, StatusBlocked:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusRunning || s.IsTerminal()
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// WorkItem represents a single unit of work submitted for scheduling
type WorkItem struct {
	ID              string            `json:"id" yaml:"id"`
	Category        domain.Category   `json:"category,omitempty" yaml:"category,omitempty"`
	Title           string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description     string            `json:"description,omitempty" yaml:"description,omitempty"`
	Capability      domain.Capability `json:"capability" yaml:"capability"`
	Severity        domain.Severity   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Complexity      domain.Complexity `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Dependencies    []string          `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	EstimateMinutes int               `json:"estimate_minutes" yaml:"estimate_minutes"` // Estimated duration in minutes
	Status          Status            `json:"status,omitempty" yaml:"status,omitempty"`
}
