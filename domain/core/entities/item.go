package entities

// LearningItem is a single unit of content (a lesson, article, video).
// SectionID and PathID are denormalized owner ids kept for query efficiency;
// only the tree repository may write them.
//
// RatingCount and RatingTotal are running aggregates maintained
// incrementally on feedback submission, never recomputed from a scan.
type LearningItem struct {
	ID          int64
	SectionID   int64
	PathID      int64
	Name        string
	Description string
	Sequence    int64
	URL         string
	RatingCount int64
	RatingTotal int64

	// User-scoped fields, populated only when the item is loaded in a user
	// context. Never persisted on the item record.
	UserRating *int64
	Completed  *bool
}

// AverageRating returns RatingTotal/RatingCount. The second return value is
// false when no rating has ever been submitted.
func (i *LearningItem) AverageRating() (float64, bool) {
	if i.RatingCount == 0 {
		return 0, false
	}
	return float64(i.RatingTotal) / float64(i.RatingCount), true
}

// ApplyRatingDelta adjusts the running aggregates. countDelta is 1 for a
// user's first feedback on this item and 0 for a revision; ratingDelta is
// the new rating minus the previous one (or the full rating when first).
func (i *LearningItem) ApplyRatingDelta(countDelta, ratingDelta int64) {
	i.RatingCount += countDelta
	i.RatingTotal += ratingDelta
}

// SetUserValues attaches one user's feedback to the item for display
func (i *LearningItem) SetUserValues(fb *ItemFeedback) {
	rating := fb.Rating
	completed := fb.Completed
	i.UserRating = &rating
	i.Completed = &completed
}

// IsCompletedBy reports whether attached user state marks the item completed
func (i *LearningItem) IsCompletedBy() bool {
	return i.Completed != nil && *i.Completed
}
