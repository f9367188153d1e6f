package ports

import "context"

// Entity kinds persisted in the document store. The kind names and the
// property names written under them are the de facto schema; they must not
// change if the deployment shares a store instance with older writers.
const (
	KindLearningPath    = "LearningPath"
	KindLearningSection = "LearningSection"
	KindLearningItem    = "LearningItem"
	KindItemFeedback    = "ItemFeedback"
)

// Properties is the schemaless property bag of one stored record. Values
// are strings, int64s and bools; absent or mistyped fields surface only at
// mapping time.
type Properties map[string]interface{}

// Record is one stored record with its key
type Record struct {
	ID    int64
	Props Properties
}

// Filter is an equality predicate on a single property
type Filter struct {
	Field string
	Value interface{}
}

// Query selects records of one kind by equality filters, optionally sorted
// ascending by one field. No pagination: result sets at this dataset size
// are assumed to fit a single response.
type Query struct {
	Kind      string
	SortField string
	Filters   []Filter
}

// DocumentStore is the key-addressed entity storage contract all four kinds
// share. Implementations are injected so repositories can run against an
// in-memory store in tests.
type DocumentStore interface {
	// Put upserts a record. When id is zero the store allocates a new
	// database-unique id; the assigned id is returned either way.
	Put(ctx context.Context, kind string, id int64, props Properties) (int64, error)

	// Get fetches a record by key, returning a NotFound error when absent
	Get(ctx context.Context, kind string, id int64) (Properties, error)

	// Delete removes a record by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, kind string, id int64) error

	// Query returns all records matching q, sorted by q.SortField when set
	Query(ctx context.Context, q Query) ([]Record, error)
}
