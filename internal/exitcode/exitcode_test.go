package exitcode

import (
	"errors"
	"fmt"
	"testing"

	schederrors "github.com/felixgeelhaar/opsched/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error returns success", nil, Success},
		{"failed items", schederrors.New(schederrors.ErrCodeExecItemFailed, "1 of 4 items failed"), ItemsFailed},
		{"timeout counts as failure", schederrors.New(schederrors.ErrCodeExecTimeout, "slow"), ItemsFailed},
		{"escalated items", schederrors.New(schederrors.ErrCodeExecItemEscalated, "escalated"), ItemsEscalated},
		{"blocked items", schederrors.New(schederrors.ErrCodeExecItemsBlocked, "blocked"), ItemsBlocked},
		{"cancelled run", schederrors.New(schederrors.ErrCodeExecCancelled, "cancelled"), Interrupted},
		{"unbound capability", schederrors.NewCapabilityUnboundError("billing", "B"), ConfigError},
		{"cycle", fmt.Errorf("plan: %w", schederrors.NewCyclicDependencyError([]string{"X", "Y"}, nil)), PlanError},
		{"duplicate id", schederrors.NewDuplicateItemError("A", 2), PlanError},
		{"invalid config", schederrors.NewConfigInvalidError("bad"), ConfigError},
		{"io error", schederrors.NewFileNotFoundError("x"), GeneralError},
		{"unknown flag", errors.New("unknown flag: --itemz"), UsageError},
		{"required flag", errors.New(`required flag(s) "items" not set`), UsageError},
		{"plain error", errors.New("something broke"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	codes := []int{Success, GeneralError, UsageError, PlanError, ItemsFailed, ItemsEscalated, ItemsBlocked, ConfigError, Interrupted}
	seen := make(map[string]bool)
	for _, code := range codes {
		desc := GetExitCodeDescription(code)
		if desc == "Unknown error" {
			t.Errorf("code %d has no description", code)
		}
		if seen[desc] {
			t.Errorf("description %q used twice", desc)
		}
		seen[desc] = true
	}

	if GetExitCodeDescription(99) != "Unknown error" {
		t.Error("unexpected description for unknown code")
	}
}
