package agent

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/opsched/internal/exec"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// maxStderr caps how much stderr ends up in a failure reason
const maxStderr = 512

// Shell runs an external command per item. The item is described to the
// command through OPSCHED_* environment variables. Exit status 0 completes
// the item, EscalateExitCode (when non-zero) escalates it, anything else fails it.
type Shell struct {
	Command          []string
	EscalateExitCode int
}

// Execute implements exec.Agent
func (s *Shell) Execute(ctx context.Context, item plan.WorkItem) error {
	if len(s.Command) == 0 {
		return fmt.Errorf("shell agent has no command")
	}

	cmd := osexec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	cmd.Env = append(os.Environ(), itemEnv(item)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *osexec.ExitError
	if !stderrors.As(err, &exitErr) {
		// Command failed to start
		return fmt.Errorf("failed to execute %s: %w", s.Command[0], err)
	}

	detail := tail(strings.TrimSpace(stderr.String()), maxStderr)
	if s.EscalateExitCode != 0 && exitErr.ExitCode() == s.EscalateExitCode {
		if detail == "" {
			detail = fmt.Sprintf("%s exited with %d", s.Command[0], exitErr.ExitCode())
		}
		return exec.Escalate(detail)
	}

	if detail != "" {
		return fmt.Errorf("%s exited with %d: %s", s.Command[0], exitErr.ExitCode(), detail)
	}
	return fmt.Errorf("%s exited with %d", s.Command[0], exitErr.ExitCode())
}

func itemEnv(item plan.WorkItem) []string {
	return []string{
		"OPSCHED_ITEM_ID=" + item.ID,
		"OPSCHED_ITEM_TITLE=" + item.Title,
		"OPSCHED_CAPABILITY=" + string(item.Capability),
		"OPSCHED_CATEGORY=" + string(item.Category),
		"OPSCHED_SEVERITY=" + string(item.Severity),
		"OPSCHED_COMPLEXITY=" + string(item.Complexity),
		"OPSCHED_ESTIMATE_MINUTES=" + strconv.Itoa(item.EstimateMinutes),
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
