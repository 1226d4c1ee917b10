package ux

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/opsched/internal/exec"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// Styles contains lipgloss styles for terminal output
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the colored styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")), // Cyan
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
	}
}

// PlainStyles returns styles that render text unchanged
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Label: plain, Success: plain, Error: plain, Warning: plain, Muted: plain}
}

// Status styles a terminal status
func (s Styles) Status(status plan.Status) string {
	label := fmt.Sprintf("%-9s", status)
	switch status {
	case plan.StatusCompleted:
		return s.Success.Render(label)
	case plan.StatusFailed:
		return s.Error.Render(label)
	case plan.StatusEscalated, plan.StatusBlocked:
		return s.Warning.Render(label)
	default:
		return s.Muted.Render(label)
	}
}

// RenderPlan renders levels, critical path and estimates of p
func RenderPlan(p *plan.ExecutionPlan, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render(fmt.Sprintf("Plan: %d items in %d levels", p.DAG.Len(), len(p.DAG.Levels))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d\n", s.Label.Render("Concurrency:"), p.Concurrency)

	for k, level := range p.DAG.Levels {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render(fmt.Sprintf("Level %d:", k)), strings.Join(level, ", "))
	}

	if len(p.CriticalPath) > 0 {
		fmt.Fprintf(&b, "%s %s %s\n",
			s.Label.Render("Critical path:"),
			strings.Join(p.CriticalPath, " -> "),
			s.Muted.Render(fmt.Sprintf("(%d min)", p.CriticalPathMinutes)))
	}
	fmt.Fprintf(&b, "%s %d min\n", s.Label.Render("Serial estimate:"), p.EstimatedTotalMinutes)

	for _, d := range p.DAG.Dangling {
		b.WriteString(s.Warning.Render(fmt.Sprintf("Ignored dependency %s -> %s (unknown item)", d.ItemID, d.DependencyID)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderReport renders the summary and per-item results of r
func RenderReport(r *exec.Report, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render(fmt.Sprintf("Run %s", r.SessionID)))
	b.WriteString("\n")

	for _, res := range r.Results {
		line := fmt.Sprintf("  L%d %s %s", res.Level, s.Status(res.Status), res.ItemID)
		if res.Status != plan.StatusBlocked {
			line += s.Muted.Render(fmt.Sprintf(" %dms", res.DurationMs))
		}
		if res.Reason != "" {
			line += s.Muted.Render(": " + res.Reason)
		}
		b.WriteString(line + "\n")
	}

	sum := r.Summary
	fmt.Fprintf(&b, "%s %d completed, %d failed, %d escalated, %d blocked of %d (%.1f%%)\n",
		s.Label.Render("Summary:"),
		sum.Completed, sum.Failed, sum.Escalated, sum.Blocked, sum.Total, sum.SuccessRate)
	fmt.Fprintf(&b, "%s %dms\n", s.Label.Render("Duration:"), r.DurationMs)
	if r.Cancelled {
		b.WriteString(s.Warning.Render("Run was cancelled before every level was dispatched"))
		b.WriteString("\n")
	}

	return b.String()
}
