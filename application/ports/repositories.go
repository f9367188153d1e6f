package ports

import (
	"context"

	"learnpath-backend/domain/core/entities"
)

// PathSummary is the (id, name) projection used for path listings
type PathSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PathRepository persists the Path→Section→Item tree.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type PathRepository interface {
	// ListSummaries returns all paths as (id, name) pairs sorted by name
	ListSummaries(ctx context.Context) ([]PathSummary, error)

	// ReplaceTree upserts the path record, then destructively replaces the
	// entire section subtree: every persisted section (and its items) is
	// deleted and the caller-supplied ones inserted. Not atomic; a failure
	// partway is surfaced as a partial write. Item aggregates are written
	// exactly as supplied, so callers editing structure must carry existing
	// counters forward.
	ReplaceTree(ctx context.Context, path *entities.LearningPath) error

	// Load fetches a path with sections and items in sequence order
	Load(ctx context.Context, id int64) (*entities.LearningPath, error)

	// LoadItem fetches a single item by key
	LoadItem(ctx context.Context, itemID int64) (*entities.LearningItem, error)

	// SaveItem upserts a single item record without touching siblings;
	// used for incremental aggregate updates
	SaveItem(ctx context.Context, item *entities.LearningItem) error
}

// FeedbackRepository persists per-(user, item) feedback
type FeedbackRepository interface {
	// Find returns the user's feedback for an item, or nil when none exists
	Find(ctx context.Context, userID string, itemID int64) (*entities.ItemFeedback, error)

	// ListByUserAndSection returns the user's feedback across a section
	ListByUserAndSection(ctx context.Context, userID string, sectionID int64) ([]*entities.ItemFeedback, error)

	// ListByPath returns all feedback referencing a path, sorted by id
	ListByPath(ctx context.Context, pathID int64) ([]*entities.ItemFeedback, error)

	// ListByItem returns all users' feedback for one item
	ListByItem(ctx context.Context, itemID int64) ([]*entities.ItemFeedback, error)

	// GetByID fetches a single feedback record by key
	GetByID(ctx context.Context, id int64) (*entities.ItemFeedback, error)

	// Upsert inserts new feedback under a store-generated id, or overwrites
	// every field of the existing (userID, itemID) record preserving its id
	Upsert(ctx context.Context, feedback *entities.ItemFeedback) (*entities.ItemFeedback, error)
}
