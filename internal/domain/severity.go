package domain

import "fmt"

// Severity classifies how much an item matters to facility operations.
// The zero value is treated as SeverityMedium by callers that need a rank.
type Severity string

// Valid severity levels
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NewSeverity creates a new Severity value object with validation
func NewSeverity(value string) (Severity, error) {
	s := Severity(value)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks if the severity is valid
func (s Severity) Validate() error {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return nil
	default:
		return fmt.Errorf("invalid severity %q: must be low, medium, high, or critical", string(s))
	}
}

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// IsHigherThan checks if this severity outranks another
func (s Severity) IsHigherThan(other Severity) bool {
	return severityRank(s) > severityRank(other)
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}
