package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound    ErrorCode = "PLAN-001"
	ErrCodePlanInvalid     ErrorCode = "PLAN-002"
	ErrCodePlanItemMissing ErrorCode = "PLAN-004"
	ErrCodePlanCyclicDep   ErrorCode = "PLAN-005"
	ErrCodePlanDuplicateID ErrorCode = "PLAN-006"
	ErrCodePlanItemInvalid ErrorCode = "PLAN-007"

	// Execution errors (EXEC-001 to EXEC-099)
	ErrCodeExecItemFailed        ErrorCode = "EXEC-001"
	ErrCodeExecItemEscalated     ErrorCode = "EXEC-002"
	ErrCodeExecItemsBlocked      ErrorCode = "EXEC-003"
	ErrCodeExecTimeout           ErrorCode = "EXEC-004"
	ErrCodeExecCapabilityUnbound ErrorCode = "EXEC-006"
	ErrCodeExecCancelled         ErrorCode = "EXEC-007"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-001"
	ErrCodeConfigNotFound ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// SchedError represents an enhanced error with code, suggestions, and documentation
type SchedError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *SchedError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *SchedError) Unwrap() error {
	return e.Cause
}

// New creates a new SchedError
func New(code ErrorCode, message string) *SchedError {
	return &SchedError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new SchedError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *SchedError {
	return &SchedError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *SchedError) WithSuggestion(suggestion string) *SchedError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *SchedError) WithSuggestions(suggestions ...string) *SchedError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *SchedError) WithDocs(url string) *SchedError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first SchedError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	var schedErr *SchedError
	if stderrors.As(err, &schedErr) {
		return schedErr.Code
	}
	return ""
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a work item file not found error
func NewPlanNotFoundError(path string) *SchedError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("work item file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Pass the file explicitly with --items").
		WithDocs("https://github.com/felixgeelhaar/opsched#work-items")
}

// NewCyclicDependencyError creates a cyclic dependency error wrapping the cycle details
func NewCyclicDependencyError(ids []string, cause error) *SchedError {
	return Wrap(ErrCodePlanCyclicDep, fmt.Sprintf("dependency cycle between items: %s", strings.Join(ids, ", ")), cause).
		WithSuggestion("Remove one dependency from each listed cycle").
		WithSuggestion("Run 'opsched validate --items <file>' to inspect the graph").
		WithDocs("https://github.com/felixgeelhaar/opsched#dependencies")
}

// NewDuplicateItemError creates a duplicate work item id error
func NewDuplicateItemError(id string, index int) *SchedError {
	return New(ErrCodePlanDuplicateID, fmt.Sprintf("duplicate work item id %q at index %d", id, index)).
		WithSuggestion("Work item ids must be unique within one submission")
}

// NewItemInvalidError creates a work item validation error
func NewItemInvalidError(index int, id string, cause error) *SchedError {
	return Wrap(ErrCodePlanItemInvalid, fmt.Sprintf("work item at index %d (%s) is invalid", index, id), cause).
		WithSuggestion("Check the item fields against the allowed values")
}

// NewCapabilityUnboundError creates an error for a capability without a registered agent
func NewCapabilityUnboundError(capability string, itemID string) *SchedError {
	return New(ErrCodeExecCapabilityUnbound, fmt.Sprintf("no agent registered for capability %q (item %s)", capability, itemID)).
		WithSuggestion(fmt.Sprintf("Configure agents.%s in .opsched/config.yaml", capability)).
		WithSuggestion("Use kind 'sim' to dry-run the plan without a real agent")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *SchedError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Review .opsched/config.yaml").
		WithDocs("https://github.com/felixgeelhaar/opsched#configuration")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *SchedError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *SchedError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
