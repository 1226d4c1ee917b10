package domain

import "fmt"

// Complexity is a coarse effort classifier attached to each work item
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// NewComplexity creates a new Complexity value object with validation
func NewComplexity(value string) (Complexity, error) {
	c := Complexity(value)
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return c, nil
	default:
		return "", fmt.Errorf("invalid complexity %q: must be simple, moderate, or complex", value)
	}
}

// Category tags what kind of change or chore an item represents
type Category string

const (
	CategoryFeature     Category = "feature"
	CategoryBugfix      Category = "bugfix"
	CategoryChore       Category = "chore"
	CategoryMaintenance Category = "maintenance"
	CategoryOps         Category = "ops"
)

// NewCategory creates a new Category value object with validation
func NewCategory(value string) (Category, error) {
	c := Category(value)
	switch c {
	case CategoryFeature, CategoryBugfix, CategoryChore, CategoryMaintenance, CategoryOps:
		return c, nil
	default:
		return "", fmt.Errorf("invalid category %q: must be feature, bugfix, chore, maintenance, or ops", value)
	}
}
