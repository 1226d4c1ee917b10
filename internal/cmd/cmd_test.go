package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/exec"
	"github.com/felixgeelhaar/opsched/internal/exitcode"
	"github.com/felixgeelhaar/opsched/internal/log"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// fastConfig binds every capability used by the fixtures to a 1ms-per-minute sim agent
const fastConfig = `scheduler:
  concurrency: 2
agents:
  repository:
    kind: sim
    minute_scale: 1ms
  billing:
    kind: sim
    minute_scale: 1ms
    fail: [%s]
  export:
    kind: sim
    minute_scale: 1ms
  messaging:
    kind: sim
    minute_scale: 1ms
`

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeFixture writes the four-item diamond (A -> B, C -> D) and a config
// that fails the given billing items
func writeFixture(t *testing.T, fail string) (itemsPath, configFile string) {
	t.Helper()
	dir := t.TempDir()

	items := []plan.WorkItem{
		{ID: "A", Capability: domain.CapabilityRepository, EstimateMinutes: 10},
		{ID: "B", Capability: domain.CapabilityBilling, EstimateMinutes: 30, Dependencies: []string{"A"}},
		{ID: "C", Capability: domain.CapabilityExport, EstimateMinutes: 20, Dependencies: []string{"A"}},
		{ID: "D", Capability: domain.CapabilityMessaging, EstimateMinutes: 25, Dependencies: []string{"B", "C"}},
	}
	itemsPath = filepath.Join(dir, "items.yaml")
	require.NoError(t, plan.SaveItems(items, itemsPath))

	configFile = filepath.Join(dir, "config.yaml")
	content := strings.Replace(fastConfig, "%s", fail, 1)
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return itemsPath, configFile
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "opsched "), "got %q", out)

	out, _, err = executeCommand(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["go_version"])
}

func TestPlanCommand(t *testing.T) {
	itemsPath, configFile := writeFixture(t, "")

	t.Run("text", func(t *testing.T) {
		out, _, err := executeCommand(t, "plan", "--config", configFile, "--items", itemsPath, "--no-color")
		require.NoError(t, err)

		assert.Contains(t, out, "Plan: 4 items in 3 levels")
		assert.Contains(t, out, "Concurrency: 2")
		assert.Contains(t, out, "Level 0: A")
		assert.Contains(t, out, "Level 1: B, C")
		assert.Contains(t, out, "Level 2: D")
		assert.Contains(t, out, "Critical path: A -> B -> D (65 min)")
		assert.Contains(t, out, "Serial estimate: 85 min")
	})

	t.Run("json with explicit concurrency", func(t *testing.T) {
		out, _, err := executeCommand(t, "plan", "--config", configFile, "--items", itemsPath, "-c", "10", "--format", "json")
		require.NoError(t, err)

		var got struct {
			CriticalPath []string `json:"critical_path"`
			Concurrency  int      `json:"concurrency"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, []string{"A", "B", "D"}, got.CriticalPath)
		assert.Equal(t, 4, got.Concurrency, "concurrency never exceeds the item count")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := executeCommand(t, "plan", "--config", configFile, "--items", itemsPath, "--format", "xml")
		assert.Error(t, err)
	})
}

func TestPlanCommandMissingItems(t *testing.T) {
	_, configFile := writeFixture(t, "")

	_, _, err := executeCommand(t, "plan", "--config", configFile, "--items", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePlanNotFound, errors.CodeOf(err))
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		itemsPath, configFile := writeFixture(t, "")

		out, _, err := executeCommand(t, "validate", "--config", configFile, "--items", itemsPath)
		require.NoError(t, err)
		assert.Contains(t, out, "4 items in 3 levels, critical path 65 min")
	})

	t.Run("dangling dependency warns", func(t *testing.T) {
		_, configFile := writeFixture(t, "")
		itemsPath := filepath.Join(t.TempDir(), "items.json")
		require.NoError(t, plan.SaveItems([]plan.WorkItem{
			{ID: "A", Capability: domain.CapabilityExport, Dependencies: []string{"ghost"}},
		}, itemsPath))

		out, _, err := executeCommand(t, "validate", "--config", configFile, "--items", itemsPath)
		require.NoError(t, err)
		assert.Contains(t, out, "A depends on unknown item ghost")
	})

	t.Run("cycle", func(t *testing.T) {
		_, configFile := writeFixture(t, "")
		itemsPath := filepath.Join(t.TempDir(), "items.yaml")
		require.NoError(t, plan.SaveItems([]plan.WorkItem{
			{ID: "X", Capability: domain.CapabilityExport, Dependencies: []string{"Y"}},
			{ID: "Y", Capability: domain.CapabilityExport, Dependencies: []string{"X"}},
		}, itemsPath))

		_, _, err := executeCommand(t, "validate", "--config", configFile, "--items", itemsPath)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodePlanCyclicDep, errors.CodeOf(err))
		assert.Equal(t, exitcode.PlanError, exitcode.DetermineExitCode(err))

		var cycleErr *plan.CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"X", "Y"}, cycleErr.IDs)
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("all items complete", func(t *testing.T) {
		itemsPath, configFile := writeFixture(t, "")

		out, _, err := executeCommand(t, "run", "--config", configFile, "--items", itemsPath, "--no-color")
		require.NoError(t, err)
		assert.Contains(t, out, "4 completed, 0 failed, 0 escalated, 0 blocked of 4 (100.0%)")
	})

	t.Run("failure blocks dependents", func(t *testing.T) {
		itemsPath, configFile := writeFixture(t, "B")

		out, _, err := executeCommand(t, "run", "--config", configFile, "--items", itemsPath, "--no-color")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeExecItemFailed, errors.CodeOf(err))
		assert.Equal(t, exitcode.ItemsFailed, exitcode.DetermineExitCode(err))

		assert.Contains(t, out, "2 completed, 1 failed, 0 escalated, 1 blocked of 4 (50.0%)")
		assert.Contains(t, out, "prerequisite B failed")
	})

	t.Run("json report saved to directory", func(t *testing.T) {
		itemsPath, configFile := writeFixture(t, "")
		reportDir := filepath.Join(t.TempDir(), "runs")

		out, _, err := executeCommand(t, "run", "--config", configFile, "--items", itemsPath,
			"--format", "json", "--report-dir", reportDir)
		require.NoError(t, err)

		var report exec.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		require.Len(t, report.Results, 4)
		assert.Equal(t, "A", report.Results[0].ItemID)
		assert.Equal(t, "D", report.Results[3].ItemID)

		entries, err := os.ReadDir(reportDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Name(), report.SessionID)
	})

	t.Run("metrics endpoint and json logs", func(t *testing.T) {
		itemsPath, configFile := writeFixture(t, "")

		_, stderr, err := executeCommand(t, "run", "--config", configFile, "--items", itemsPath,
			"--metrics-addr", "127.0.0.1:0", "--log-format", "json")
		require.NoError(t, err)
		assert.Contains(t, stderr, `"msg":"serving metrics"`)
		assert.Contains(t, stderr, `"msg":"plan built"`)
	})

	t.Run("invalid log level", func(t *testing.T) {
		itemsPath, configFile := writeFixture(t, "")

		_, _, err := executeCommand(t, "run", "--config", configFile, "--items", itemsPath, "--log-level", "loud")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
	})
}

func TestConfigCommands(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), ".opsched", "config.yaml")

	out, _, err := executeCommand(t, "config", "init", "--config", configFile)
	require.NoError(t, err)
	assert.Contains(t, out, configFile)
	assert.FileExists(t, configFile)

	_, _, err = executeCommand(t, "config", "init", "--config", configFile)
	require.Error(t, err, "init must not overwrite without --force")

	_, _, err = executeCommand(t, "config", "init", "--config", configFile, "--force")
	require.NoError(t, err)

	out, _, err = executeCommand(t, "config", "show", "--config", configFile)
	require.NoError(t, err)
	assert.Contains(t, out, "concurrency: 4")
	assert.Contains(t, out, "health-check:")

	out, _, err = executeCommand(t, "config", "path", "--config", configFile)
	require.NoError(t, err)
	assert.Equal(t, configFile+"\n", out)
}

func TestReportError(t *testing.T) {
	original := log.DefaultLogger()
	t.Cleanup(func() { log.SetDefaultLogger(original) })

	var buf bytes.Buffer
	log.SetDefaultLogger(log.New(log.Config{Level: log.LevelInfo, Output: &buf}))

	err := errors.New(errors.ErrCodePlanCyclicDep, "cycle among a, b")
	code := ReportError(context.Background(), err)
	assert.Equal(t, exitcode.PlanError, code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "PLAN-005", entry["error_code"])
	assert.Equal(t, float64(exitcode.PlanError), entry["exit_code"])
	assert.Equal(t, exitcode.GetExitCodeDescription(exitcode.PlanError), entry["exit_reason"])
}
