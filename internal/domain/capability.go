package domain

import "fmt"

// Capability names the kind of agent that can execute a work item.
// The set is closed: dispatch is resolved against these values once, when a plan is bound.
type Capability string

const (
	// CapabilityMessaging sends chat notifications and replies
	CapabilityMessaging Capability = "messaging"
	// CapabilityRepository reads or writes spreadsheet-backed records
	CapabilityRepository Capability = "repository"
	// CapabilityExport produces CSV exports
	CapabilityExport Capability = "export"
	// CapabilityBilling computes and records billing
	CapabilityBilling Capability = "billing"
	// CapabilityAttendance records attendance check-ins
	CapabilityAttendance Capability = "attendance"
	// CapabilityHealthCheck records daily health checks
	CapabilityHealthCheck Capability = "health-check"
)

// Capabilities returns every known capability in a stable order
func Capabilities() []Capability {
	return []Capability{
		CapabilityMessaging,
		CapabilityRepository,
		CapabilityExport,
		CapabilityBilling,
		CapabilityAttendance,
		CapabilityHealthCheck,
	}
}

// NewCapability creates a new Capability value object with validation
func NewCapability(value string) (Capability, error) {
	c := Capability(value)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate checks if the capability is one of the known kinds
func (c Capability) Validate() error {
	for _, known := range Capabilities() {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("unknown capability %q: must be one of %v", string(c), Capabilities())
}

// String returns the string representation
func (c Capability) String() string {
	return string(c)
}
