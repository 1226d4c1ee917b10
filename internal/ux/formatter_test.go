package ux

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/exec"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

func testPlan(t *testing.T) *plan.ExecutionPlan {
	t.Helper()
	items := []plan.WorkItem{
		{ID: "A", Capability: domain.CapabilityRepository, EstimateMinutes: 10},
		{ID: "B", Capability: domain.CapabilityBilling, EstimateMinutes: 30, Dependencies: []string{"A"}},
		{ID: "C", Capability: domain.CapabilityExport, EstimateMinutes: 20, Dependencies: []string{"A", "ghost"}},
		{ID: "D", Capability: domain.CapabilityMessaging, EstimateMinutes: 25, Dependencies: []string{"B", "C"}},
	}
	p, err := plan.New(items, 4)
	require.NoError(t, err)
	return p
}

func testReport() *exec.Report {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return exec.Aggregate("session-7", start, start.Add(1500*time.Millisecond), []exec.Result{
		{ItemID: "A", Status: plan.StatusCompleted, DurationMs: 400},
		{ItemID: "B", Status: plan.StatusFailed, Level: 1, DurationMs: 300, Reason: "sheet locked"},
		{ItemID: "C", Status: plan.StatusCompleted, Level: 1, DurationMs: 200},
		{ItemID: "D", Status: plan.StatusBlocked, Level: 2, Reason: "prerequisite B failed"},
	})
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "yaml", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSONFormatterReport(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	require.NoError(t, err)

	require.NoError(t, formatter.Format(testReport()))

	out := buf.String()
	assert.Contains(t, out, `"session_id": "session-7"`)
	assert.Contains(t, out, `"success_rate": 50`)
	assert.Contains(t, out, `"reason": "prerequisite B failed"`)
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	require.NoError(t, err)

	require.NoError(t, formatter.Format(map[string]int{"levels": 3}))
	assert.Equal(t, "{\"levels\":3}\n", buf.String())
}

func TestYAMLFormatterPlan(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	require.NoError(t, err)

	require.NoError(t, formatter.Format(testPlan(t)))

	out := buf.String()
	assert.Contains(t, out, "critical_path_minutes: 65")
	assert.Contains(t, out, "estimated_total_minutes: 85")
	assert.Contains(t, out, "dependency_id: ghost")
}

func TestTextFormatterPlain(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
	require.NoError(t, err)

	require.NoError(t, formatter.Format(testPlan(t)))
	out := buf.String()
	assert.Contains(t, out, "Plan: 4 items in 3 levels")
	assert.Contains(t, out, "Level 1: B, C")
	assert.Contains(t, out, "Critical path: A -> B -> D (65 min)")
	assert.Contains(t, out, "Serial estimate: 85 min")
	assert.Contains(t, out, "Ignored dependency C -> ghost (unknown item)")

	buf.Reset()
	require.NoError(t, formatter.Format(testReport()))
	out = buf.String()
	assert.Contains(t, out, "Run session-7")
	assert.Contains(t, out, "L1 failed    B 300ms: sheet locked")
	assert.Contains(t, out, "L2 blocked   D: prerequisite B failed")
	assert.Contains(t, out, "2 completed, 1 failed, 0 escalated, 1 blocked of 4 (50.0%)")

	buf.Reset()
	require.NoError(t, formatter.Format("plain message"))
	assert.Equal(t, "plain message\n", buf.String())

	assert.Error(t, formatter.Format(struct{ X int }{1}))
}

func TestStatusStylesKeepLabel(t *testing.T) {
	for _, status := range []plan.Status{plan.StatusCompleted, plan.StatusFailed, plan.StatusEscalated, plan.StatusBlocked, plan.StatusPending} {
		rendered := DefaultStyles().Status(status)
		assert.True(t, strings.Contains(rendered, string(status)), "styled %q lost its label: %q", status, rendered)
	}
}
