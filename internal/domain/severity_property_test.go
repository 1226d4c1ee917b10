package domain

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func genValidSeverity() *rapid.Generator[Severity] {
	return rapid.SampledFrom([]Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical})
}

func genInvalidSeverity() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.Just(""),
		rapid.SampledFrom([]string{"LOW", "High", " critical", "medium ", "urgent", "p0"}),
		rapid.StringMatching(`[A-Za-z]{1,10}`).Filter(func(s string) bool {
			return s != "low" && s != "medium" && s != "high" && s != "critical"
		}),
	)
}

// TestSeverity_ValidAlwaysValidate checks every known severity round-trips
func TestSeverity_ValidAlwaysValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genValidSeverity().Draw(t, "severity")

		parsed, err := NewSeverity(s.String())
		if err != nil {
			t.Fatalf("valid severity %q should pass validation: %v", s, err)
		}
		if parsed != s {
			t.Fatalf("NewSeverity(%q) = %q", s, parsed)
		}
	})
}

// TestSeverity_InvalidFail checks unknown strings are rejected with a helpful message
func TestSeverity_InvalidFail(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := genInvalidSeverity().Draw(t, "invalid")

		_, err := NewSeverity(raw)
		if err == nil {
			t.Fatalf("invalid severity %q should fail validation", raw)
		}
		if !strings.Contains(err.Error(), "must be low, medium, high, or critical") {
			t.Fatalf("error should mention valid values: %v", err)
		}
	})
}

// TestSeverity_RankIsStrictOrder checks IsHigherThan is irreflexive and antisymmetric
func TestSeverity_RankIsStrictOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genValidSeverity().Draw(t, "a")
		b := genValidSeverity().Draw(t, "b")

		if a.IsHigherThan(a) {
			t.Fatalf("%q should not be higher than itself", a)
		}
		if a.IsHigherThan(b) && b.IsHigherThan(a) {
			t.Fatalf("%q and %q cannot both outrank each other", a, b)
		}
		if a != b && !a.IsHigherThan(b) && !b.IsHigherThan(a) {
			t.Fatalf("distinct severities %q and %q must be ordered", a, b)
		}
	})
}
