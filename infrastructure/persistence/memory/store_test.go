package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpath-backend/application/ports"
	"learnpath-backend/pkg/errors"
)

func TestStore_PutAllocatesIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first, err := store.Put(ctx, ports.KindItemFeedback, 0, ports.Properties{"userId": "u1"})
	require.NoError(t, err)
	second, err := store.Put(ctx, ports.KindItemFeedback, 0, ports.Properties{"userId": "u2"})
	require.NoError(t, err)

	assert.NotZero(t, first)
	assert.Greater(t, second, first)
}

func TestStore_PutDoesNotReuseExplicitIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Put(ctx, ports.KindLearningPath, 50, ports.Properties{"name": "p"})
	require.NoError(t, err)

	allocated, err := store.Put(ctx, ports.KindLearningPath, 0, ports.Properties{"name": "q"})
	require.NoError(t, err)
	assert.Greater(t, allocated, int64(50))
}

func TestStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Get(ctx, ports.KindLearningPath, 404)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestStore_DeleteAbsentKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	assert.NoError(t, store.Delete(ctx, ports.KindLearningItem, 7))
}

func TestStore_QueryFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Put(ctx, ports.KindLearningSection, 1, ports.Properties{"learningPath": int64(1), "sequence": int64(3)})
	require.NoError(t, err)
	_, err = store.Put(ctx, ports.KindLearningSection, 2, ports.Properties{"learningPath": int64(1), "sequence": int64(1)})
	require.NoError(t, err)
	_, err = store.Put(ctx, ports.KindLearningSection, 3, ports.Properties{"learningPath": int64(2), "sequence": int64(2)})
	require.NoError(t, err)

	records, err := store.Query(ctx, ports.Query{
		Kind:      ports.KindLearningSection,
		SortField: "sequence",
		Filters:   []ports.Filter{{Field: "learningPath", Value: int64(1)}},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID, "sequence 1 first")
	assert.Equal(t, int64(1), records[1].ID)
}

func TestStore_QueryMultipleFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Put(ctx, ports.KindItemFeedback, 0, ports.Properties{"userId": "u1", "learningItem": int64(7)})
	require.NoError(t, err)
	_, err = store.Put(ctx, ports.KindItemFeedback, 0, ports.Properties{"userId": "u1", "learningItem": int64(8)})
	require.NoError(t, err)
	_, err = store.Put(ctx, ports.KindItemFeedback, 0, ports.Properties{"userId": "u2", "learningItem": int64(7)})
	require.NoError(t, err)

	records, err := store.Query(ctx, ports.Query{
		Kind: ports.KindItemFeedback,
		Filters: []ports.Filter{
			{Field: "userId", Value: "u1"},
			{Field: "learningItem", Value: int64(7)},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].Props["userId"])
}

func TestStore_PutCopiesProperties(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	props := ports.Properties{"name": "before"}
	id, err := store.Put(ctx, ports.KindLearningPath, 0, props)
	require.NoError(t, err)

	// Mutating the caller's map must not reach the stored record
	props["name"] = "after"

	stored, err := store.Get(ctx, ports.KindLearningPath, id)
	require.NoError(t, err)
	assert.Equal(t, "before", stored["name"])
}
