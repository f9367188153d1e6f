package entities

// RatingMin and RatingMax bound the accepted rating range.
const (
	RatingMin = 1
	RatingMax = 5
)

// ItemFeedback is one user's rating and completion mark on one item.
// At most one record exists per (UserID, ItemID) pair; the application
// enforces this with a lookup before every insert, since the store has no
// uniqueness constraints.
//
// PathID, SectionID and ItemID are weak references to content: feedback is
// filtered by them but never deleted when content is restructured.
type ItemFeedback struct {
	ID        int64
	PathID    int64
	SectionID int64
	ItemID    int64
	UserID    string
	Rating    int64
	Completed bool
}

// NewItemFeedback creates feedback pending id allocation by the store
func NewItemFeedback(pathID, sectionID, itemID int64, userID string, rating int64, completed bool) *ItemFeedback {
	return &ItemFeedback{
		PathID:    pathID,
		SectionID: sectionID,
		ItemID:    itemID,
		UserID:    userID,
		Rating:    rating,
		Completed: completed,
	}
}
