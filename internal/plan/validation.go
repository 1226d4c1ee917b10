package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/errors"
)

// Validate checks if the WorkItem is valid according to domain rules
func (w *WorkItem) Validate() error {
	if _, err := domain.NewItemID(w.ID); err != nil {
		return fmt.Errorf("invalid item ID: %w", err)
	}

	if err := w.Capability.Validate(); err != nil {
		return fmt.Errorf("invalid capability: %w", err)
	}

	if w.Category != "" {
		if _, err := domain.NewCategory(string(w.Category)); err != nil {
			return err
		}
	}

	if w.Severity != "" {
		if err := w.Severity.Validate(); err != nil {
			return err
		}
	}

	if w.Complexity != "" {
		if _, err := domain.NewComplexity(string(w.Complexity)); err != nil {
			return err
		}
	}

	for i, dep := range w.Dependencies {
		if strings.TrimSpace(dep) == "" {
			return fmt.Errorf("dependency at index %d is empty", i)
		}
	}

	if w.EstimateMinutes < 0 {
		return fmt.Errorf("estimate must not be negative, got %d", w.EstimateMinutes)
	}

	if w.Status != "" && w.Status != StatusPending {
		return fmt.Errorf("submitted items must be pending, got status %q", w.Status)
	}

	return nil
}

// ValidateItems validates every item and rejects duplicate ids.
// Dangling dependencies are not errors; Build reports them separately.
func ValidateItems(items []WorkItem) error {
	seen := make(map[string]bool, len(items))
	for i := range items {
		item := &items[i]
		if err := item.Validate(); err != nil {
			return errors.NewItemInvalidError(i, item.ID, err)
		}
		if seen[item.ID] {
			return errors.NewDuplicateItemError(item.ID, i)
		}
		seen[item.ID] = true
	}
	return nil
}
