package domain

import (
	"fmt"
	"regexp"
)

// ItemID identifies a work item within one scheduling session.
// This is a value object that enforces valid ID formats.
type ItemID string

var (
	// itemIDPattern allows letters, digits and the separators '.', '_', ':' and '-',
	// starting with a letter or digit
	itemIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

	// maxItemIDLength is the maximum allowed length for an item ID
	maxItemIDLength = 128
)

// NewItemID creates a new ItemID value object with validation
func NewItemID(value string) (ItemID, error) {
	id := ItemID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the item ID is valid
func (i ItemID) Validate() error {
	s := string(i)

	if s == "" {
		return fmt.Errorf("item ID cannot be empty")
	}

	if len(s) > maxItemIDLength {
		return fmt.Errorf("item ID %q exceeds maximum length of %d characters", s, maxItemIDLength)
	}

	if !itemIDPattern.MatchString(s) {
		return fmt.Errorf("item ID %q must start with a letter or digit and contain only letters, digits, '.', '_', ':' or '-'", s)
	}

	return nil
}

// String returns the string representation
func (i ItemID) String() string {
	return string(i)
}
