package entities

import (
	"fmt"

	"learnpath-backend/pkg/errors"
)

// LearningPath is the root of the content hierarchy: an ordered set of
// sections, each holding an ordered set of items. Completion is user-scoped
// and computed on read; it is never persisted.
type LearningPath struct {
	ID          int64
	Name        string
	Description string
	Sections    []*LearningSection

	// Completion is the mean of the section completion ratios for the user
	// the path was loaded for. Nil when loaded without a user context or
	// when no section has any items to score.
	Completion *float64
}

// NewLearningPath creates a path with no sections
func NewLearningPath(id int64, name, description string) *LearningPath {
	return &LearningPath{
		ID:          id,
		Name:        name,
		Description: description,
		Sections:    []*LearningSection{},
	}
}

// SectionByID finds a section of this path by its id
func (p *LearningPath) SectionByID(id int64) (*LearningSection, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// TotalItems counts items across all sections
func (p *LearningPath) TotalItems() int {
	total := 0
	for _, s := range p.Sections {
		total += len(s.Items)
	}
	return total
}

// Validate enforces the writer-side invariants the store cannot: section
// sequences unique within the path, item sequences unique within each section.
func (p *LearningPath) Validate() error {
	if p.Name == "" {
		return errors.NewValidationError("path name is required")
	}

	seen := make(map[int64]struct{}, len(p.Sections))
	for _, s := range p.Sections {
		if _, dup := seen[s.Sequence]; dup {
			return errors.NewValidationError(
				fmt.Sprintf("duplicate section sequence %d in path %d", s.Sequence, p.ID))
		}
		seen[s.Sequence] = struct{}{}

		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
