package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePlanNotFound, "test error message")

	if err.Code != ErrCodePlanNotFound {
		t.Errorf("expected code %s, got %s", ErrCodePlanNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *SchedError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodePlanInvalid, "invalid plan"),
			wantCode: "PLAN-002",
			wantMsg:  "invalid plan",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestions(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad config").
		WithSuggestion("first").
		WithSuggestions("second", "third").
		WithDocs("https://example.com/docs")

	if len(err.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	for _, s := range []string{"Suggestions:", "first", "second", "third", "Documentation:", "https://example.com/docs"} {
		if !strings.Contains(errStr, s) {
			t.Errorf("error string should contain %q, got: %s", s, errStr)
		}
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain", fmt.Errorf("plain"), ""},
		{"direct", New(ErrCodeExecCancelled, "cancelled"), ErrCodeExecCancelled},
		{"wrapped", fmt.Errorf("outer: %w", New(ErrCodePlanCyclicDep, "cycle")), ErrCodePlanCyclicDep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCyclicDependencyError(t *testing.T) {
	cause := fmt.Errorf("cycle detail")
	err := NewCyclicDependencyError([]string{"X", "Y"}, cause)

	if err.Code != ErrCodePlanCyclicDep {
		t.Errorf("expected code %s, got %s", ErrCodePlanCyclicDep, err.Code)
	}

	if !strings.Contains(err.Message, "X, Y") {
		t.Errorf("error message should list the cycle members, got %q", err.Message)
	}

	if !errors.Is(err, cause) {
		t.Errorf("cyclic dependency error should wrap its cause")
	}

	if err.DocsURL == "" {
		t.Errorf("expected docs URL to be set")
	}
}

func TestNewDuplicateItemError(t *testing.T) {
	err := NewDuplicateItemError("billing-export", 3)

	if err.Code != ErrCodePlanDuplicateID {
		t.Errorf("expected code %s, got %s", ErrCodePlanDuplicateID, err.Code)
	}

	if !strings.Contains(err.Message, "billing-export") || !strings.Contains(err.Message, "3") {
		t.Errorf("error message should contain id and index, got %q", err.Message)
	}
}

func TestNewCapabilityUnboundError(t *testing.T) {
	err := NewCapabilityUnboundError("messaging", "notify-staff")

	if err.Code != ErrCodeExecCapabilityUnbound {
		t.Errorf("expected code %s, got %s", ErrCodeExecCapabilityUnbound, err.Code)
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "agents.messaging") {
		t.Errorf("suggestions should point at the agents config key, got: %s", errStr)
	}
}

func TestNewFileUnmarshalError(t *testing.T) {
	cause := fmt.Errorf("invalid YAML syntax at line 5")
	err := NewFileUnmarshalError("/path/to/items.yaml", "YAML", cause)

	if err.Code != ErrCodeFileUnmarshal {
		t.Errorf("expected code %s, got %s", ErrCodeFileUnmarshal, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be preserved")
	}

	if !strings.Contains(err.Message, "YAML") || !strings.Contains(err.Message, "/path/to/items.yaml") {
		t.Errorf("error message should contain format and path, got %q", err.Message)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "read failed", cause)

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap should return the cause")
	}
}
