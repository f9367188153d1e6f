package entities

import (
	"fmt"

	"learnpath-backend/pkg/errors"
)

// LearningSection is one ordered group of items within a path. Sequence
// defines display order and must be unique within the owning path.
type LearningSection struct {
	ID          int64
	PathID      int64
	Name        string
	Description string
	Sequence    int64
	Items       []*LearningItem

	// Completion is the fraction of this section's items the user has marked
	// completed. Nil when loaded without a user context or when the section
	// has no items (no data to score).
	Completion *float64
}

// NewLearningSection creates a section with no items
func NewLearningSection(id, pathID int64, name, description string, sequence int64) *LearningSection {
	return &LearningSection{
		ID:          id,
		PathID:      pathID,
		Name:        name,
		Description: description,
		Sequence:    sequence,
		Items:       []*LearningItem{},
	}
}

// ItemByID finds an item of this section by its id
func (s *LearningSection) ItemByID(id int64) (*LearningItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// Validate enforces item sequence uniqueness within the section
func (s *LearningSection) Validate() error {
	if s.Name == "" {
		return errors.NewValidationError(
			fmt.Sprintf("section %d name is required", s.ID))
	}

	seen := make(map[int64]struct{}, len(s.Items))
	for _, it := range s.Items {
		if _, dup := seen[it.Sequence]; dup {
			return errors.NewValidationError(
				fmt.Sprintf("duplicate item sequence %d in section %d", it.Sequence, s.ID))
		}
		seen[it.Sequence] = struct{}{}
	}
	return nil
}
