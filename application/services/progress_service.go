package services

import (
	"context"
	"fmt"

	"learnpath-backend/application/ports"
	"learnpath-backend/domain/core/entities"
	"learnpath-backend/pkg/errors"

	"go.uber.org/zap"
)

// ProgressService composes the tree and feedback repositories: it maintains
// the incremental rating aggregates on items and answers "path with user
// progress" reads. Every code path that mutates feedback must run through
// SubmitFeedback; writing feedback any other way silently corrupts the
// per-item counters.
type ProgressService struct {
	paths    ports.PathRepository
	feedback ports.FeedbackRepository
	logger   *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	paths ports.PathRepository,
	feedback ports.FeedbackRepository,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		paths:    paths,
		feedback: feedback,
		logger:   logger,
	}
}

// ListPathSummaries returns all paths as (id, name) pairs sorted by name
func (s *ProgressService) ListPathSummaries(ctx context.Context) ([]ports.PathSummary, error) {
	return s.paths.ListSummaries(ctx)
}

// LoadPath fetches a path tree without any user context
func (s *ProgressService) LoadPath(ctx context.Context, pathID int64) (*entities.LearningPath, error) {
	return s.paths.Load(ctx, pathID)
}

// StorePath creates or updates a path and all included sections and items
// via a full subtree replace
func (s *ProgressService) StorePath(ctx context.Context, path *entities.LearningPath) error {
	return s.paths.ReplaceTree(ctx, path)
}

// LoadItem fetches a single item by key
func (s *ProgressService) LoadItem(ctx context.Context, itemID int64) (*entities.LearningItem, error) {
	return s.paths.LoadItem(ctx, itemID)
}

// SubmitFeedback records a user's rating and completion mark on an item and
// folds the rating into the item's running aggregates in O(1):
//
//	first feedback for (user, item):  ratingCount+1, ratingTotal+rating
//	repeat feedback:                  count unchanged, total += new - previous
//
// The updated item is persisted and returned. A failure after the feedback
// record is written surfaces as a partial write; retrying would double-count
// the delta, so callers must not blindly retry.
func (s *ProgressService) SubmitFeedback(
	ctx context.Context,
	pathID, itemID int64,
	userID string,
	rating int64,
	completed bool,
) (*entities.LearningItem, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id is required")
	}
	if rating < entities.RatingMin || rating > entities.RatingMax {
		return nil, errors.NewValidationError(
			fmt.Sprintf("rating must be between %d and %d", entities.RatingMin, entities.RatingMax))
	}

	item, err := s.paths.LoadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	existing, err := s.feedback.Find(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	var countDelta, ratingDelta int64
	var fb *entities.ItemFeedback
	if existing == nil {
		countDelta = 1
		ratingDelta = rating
		// The section owner id comes from the loaded item, not the caller
		fb = entities.NewItemFeedback(pathID, item.SectionID, itemID, userID, rating, completed)
	} else {
		countDelta = 0
		ratingDelta = rating - existing.Rating
		existing.Rating = rating
		existing.Completed = completed
		fb = existing
	}

	stored, err := s.feedback.Upsert(ctx, fb)
	if err != nil {
		return nil, err
	}

	item.ApplyRatingDelta(countDelta, ratingDelta)
	if err := s.paths.SaveItem(ctx, item); err != nil {
		// Feedback is persisted but the aggregates are not. Not idempotent:
		// a retry of the whole submission would apply a zero delta revision,
		// leaving the counters permanently short.
		return nil, errors.NewPartialWriteError("submit feedback", err)
	}

	s.logger.Info("Feedback submitted",
		zap.Int64("pathID", pathID),
		zap.Int64("itemID", itemID),
		zap.String("userID", userID),
		zap.Int64("rating", rating),
		zap.Bool("completed", completed),
		zap.Int64("feedbackID", stored.ID),
		zap.Bool("revision", existing != nil),
	)
	return item, nil
}

// LoadForUser fetches a path tree with the user's feedback attached to each
// item and completion ratios computed per section and for the whole path.
// Completion is recomputed on every read and never persisted.
func (s *ProgressService) LoadForUser(ctx context.Context, pathID int64, userID string) (*entities.LearningPath, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id is required")
	}

	path, err := s.paths.Load(ctx, pathID)
	if err != nil {
		return nil, err
	}

	var ratioSum float64
	var scored int
	for _, section := range path.Sections {
		if err := s.attachSectionProgress(ctx, userID, section); err != nil {
			return nil, err
		}
		if section.Completion != nil {
			ratioSum += *section.Completion
			scored++
		}
	}

	// The path mean weighs every scorable section equally, regardless of
	// item count. Sections with no items carry no completion signal and are
	// left out rather than forced to zero.
	if scored > 0 {
		completion := ratioSum / float64(scored)
		path.Completion = &completion
	}

	return path, nil
}

// attachSectionProgress loads the user's feedback for one section, attaches
// rating/completed to the matching items and computes the completion ratio.
// Items with no feedback keep no user state.
func (s *ProgressService) attachSectionProgress(ctx context.Context, userID string, section *entities.LearningSection) error {
	feedbacks, err := s.feedback.ListByUserAndSection(ctx, userID, section.ID)
	if err != nil {
		return err
	}

	completedCount := 0
	for _, fb := range feedbacks {
		item, ok := section.ItemByID(fb.ItemID)
		if !ok {
			// Feedback referencing an item no longer in the section; weak
			// references are never cleaned up by content edits.
			s.logger.Debug("Feedback references missing item",
				zap.Int64("sectionID", section.ID),
				zap.Int64("itemID", fb.ItemID),
				zap.String("userID", userID),
			)
			continue
		}
		item.SetUserValues(fb)
		if fb.Completed {
			completedCount++
		}
	}

	if len(section.Items) == 0 {
		// No items means no ratio to compute; left nil as an explicit
		// no-data result.
		return nil
	}

	ratio := float64(completedCount) / float64(len(section.Items))
	section.Completion = &ratio
	return nil
}
