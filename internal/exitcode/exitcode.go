package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/opsched/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates every item completed
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// PlanError indicates the items could not be planned (invalid item, cycle, duplicate id)
	PlanError = 3

	// ItemsFailed indicates the run finished with failed items
	ItemsFailed = 4

	// ItemsEscalated indicates the run finished with escalated items and no failures
	ItemsEscalated = 5

	// ItemsBlocked indicates the run finished with blocked items only
	ItemsBlocked = 6

	// ConfigError indicates an invalid or unreadable configuration
	ConfigError = 7

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode maps an error to an exit code, using its structured
// code when there is one and message heuristics otherwise
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	code := string(errors.CodeOf(err))
	switch {
	case code == string(errors.ErrCodeExecItemFailed), code == string(errors.ErrCodeExecTimeout):
		return ItemsFailed
	case code == string(errors.ErrCodeExecItemEscalated):
		return ItemsEscalated
	case code == string(errors.ErrCodeExecItemsBlocked):
		return ItemsBlocked
	case code == string(errors.ErrCodeExecCancelled):
		return Interrupted
	case code == string(errors.ErrCodeExecCapabilityUnbound):
		return ConfigError
	case strings.HasPrefix(code, "PLAN-"):
		return PlanError
	case strings.HasPrefix(code, "CONFIG-"):
		return ConfigError
	case code != "":
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case PlanError:
		return "Work items could not be planned"
	case ItemsFailed:
		return "One or more items failed"
	case ItemsEscalated:
		return "One or more items were escalated"
	case ItemsBlocked:
		return "One or more items were blocked"
	case ConfigError:
		return "Configuration error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
