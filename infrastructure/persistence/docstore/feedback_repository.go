package docstore

import (
	"context"

	"learnpath-backend/application/ports"
	"learnpath-backend/domain/core/entities"
	"learnpath-backend/pkg/errors"

	"go.uber.org/zap"
)

// FeedbackRepository implements ports.FeedbackRepository on top of a DocumentStore
type FeedbackRepository struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(store ports.DocumentStore, logger *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		store:  store,
		logger: logger,
	}
}

// Find returns the user's feedback for an item, or nil when none exists.
// The at-most-one invariant is assumed to hold, so the first match wins.
func (r *FeedbackRepository) Find(ctx context.Context, userID string, itemID int64) (*entities.ItemFeedback, error) {
	records, err := r.store.Query(ctx, ports.Query{
		Kind: ports.KindItemFeedback,
		Filters: []ports.Filter{
			{Field: propUserID, Value: userID},
			{Field: propLearningItem, Value: itemID},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "find feedback")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return feedbackFromRecord(records[0])
}

// ListByUserAndSection returns the user's feedback across a section's items
func (r *FeedbackRepository) ListByUserAndSection(ctx context.Context, userID string, sectionID int64) ([]*entities.ItemFeedback, error) {
	records, err := r.store.Query(ctx, ports.Query{
		Kind: ports.KindItemFeedback,
		Filters: []ports.Filter{
			{Field: propUserID, Value: userID},
			{Field: propLearningSection, Value: sectionID},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list feedback by user and section")
	}
	return r.mapRecords(records)
}

// ListByPath returns all feedback referencing a path, sorted by id
func (r *FeedbackRepository) ListByPath(ctx context.Context, pathID int64) ([]*entities.ItemFeedback, error) {
	records, err := r.store.Query(ctx, ports.Query{
		Kind:      ports.KindItemFeedback,
		SortField: "id",
		Filters:   []ports.Filter{{Field: propLearningPath, Value: pathID}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list feedback by path")
	}
	return r.mapRecords(records)
}

// ListByItem returns all users' feedback for one item
func (r *FeedbackRepository) ListByItem(ctx context.Context, itemID int64) ([]*entities.ItemFeedback, error) {
	records, err := r.store.Query(ctx, ports.Query{
		Kind:    ports.KindItemFeedback,
		Filters: []ports.Filter{{Field: propLearningItem, Value: itemID}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list feedback by item")
	}
	return r.mapRecords(records)
}

// GetByID fetches a single feedback record by key
func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*entities.ItemFeedback, error) {
	props, err := r.store.Get(ctx, ports.KindItemFeedback, id)
	if err != nil {
		return nil, err
	}
	return feedbackFromRecord(ports.Record{ID: id, Props: props})
}

// Upsert inserts new feedback under a store-generated id, or overwrites
// every field of the existing (userID, itemID) record under its id so
// identity is preserved across edits. Uniqueness is lookup-before-insert;
// the store itself enforces nothing.
func (r *FeedbackRepository) Upsert(ctx context.Context, feedback *entities.ItemFeedback) (*entities.ItemFeedback, error) {
	existing, err := r.Find(ctx, feedback.UserID, feedback.ItemID)
	if err != nil {
		return nil, err
	}

	id := int64(0)
	if existing != nil {
		id = existing.ID
	}

	assigned, err := r.store.Put(ctx, ports.KindItemFeedback, id, feedbackToProps(feedback))
	if err != nil {
		return nil, errors.Wrap(err, "store feedback record")
	}
	feedback.ID = assigned

	r.logger.Debug("Feedback stored",
		zap.Int64("feedbackID", assigned),
		zap.String("userID", feedback.UserID),
		zap.Int64("itemID", feedback.ItemID),
		zap.Bool("updated", existing != nil),
	)
	return feedback, nil
}

func (r *FeedbackRepository) mapRecords(records []ports.Record) ([]*entities.ItemFeedback, error) {
	feedbacks := make([]*entities.ItemFeedback, 0, len(records))
	for _, rec := range records {
		fb, err := feedbackFromRecord(rec)
		if err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, fb)
	}
	return feedbacks, nil
}
