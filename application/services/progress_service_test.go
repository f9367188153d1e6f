package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnpath-backend/application/ports"
	"learnpath-backend/domain/core/entities"
	"learnpath-backend/infrastructure/persistence/docstore"
	"learnpath-backend/infrastructure/persistence/memory"
	"learnpath-backend/pkg/errors"
)

// flakyStore passes through to the wrapped store but fails writes of one
// kind on demand, to exercise failures between the two writes of a feedback
// submission.
type flakyStore struct {
	ports.DocumentStore
	failPutKind string
}

func (s *flakyStore) Put(ctx context.Context, kind string, id int64, props ports.Properties) (int64, error) {
	if s.failPutKind != "" && kind == s.failPutKind {
		return 0, stderrors.New("store unavailable")
	}
	return s.DocumentStore.Put(ctx, kind, id, props)
}

func newService(t *testing.T) (*ProgressService, *flakyStore) {
	t.Helper()
	store := &flakyStore{DocumentStore: memory.NewStore()}
	logger := zap.NewNop()
	return NewProgressService(
		docstore.NewPathRepository(store, logger),
		docstore.NewFeedbackRepository(store, logger),
		logger,
	), store
}

// seedPath stores path 1 with a four-item and a two-item section
func seedPath(t *testing.T, svc *ProgressService) {
	t.Helper()

	path := entities.NewLearningPath(1, "Go from scratch", "An introduction to Go")

	basics := entities.NewLearningSection(10, 1, "Basics", "", 1)
	for i := int64(0); i < 4; i++ {
		basics.Items = append(basics.Items, &entities.LearningItem{
			ID: 100 + i, Name: "Lesson", Sequence: i + 1,
		})
	}

	concurrency := entities.NewLearningSection(11, 1, "Concurrency", "", 2)
	concurrency.Items = []*entities.LearningItem{
		{ID: 110, Name: "Goroutines", Sequence: 1},
		{ID: 111, Name: "Channels", Sequence: 2},
	}

	path.Sections = []*entities.LearningSection{basics, concurrency}
	require.NoError(t, svc.StorePath(context.Background(), path))
}

func TestSubmitFeedback_FirstSubmissionPerUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	item, err := svc.SubmitFeedback(ctx, 1, 100, "alice", 4, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.RatingCount)
	assert.Equal(t, int64(4), item.RatingTotal)

	avg, ok := item.AverageRating()
	require.True(t, ok)
	assert.InDelta(t, 4.0, avg, 1e-9)
}

func TestSubmitFeedback_RepeatsBySameUserCountOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	for _, rating := range []int64{2, 4, 5} {
		_, err := svc.SubmitFeedback(ctx, 1, 100, "alice", rating, false)
		require.NoError(t, err)
	}

	item, err := svc.LoadItem(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.RatingCount)
	assert.Equal(t, int64(5), item.RatingTotal, "total reflects only the latest rating")
}

func TestSubmitFeedback_DistinctUsersAccumulate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	ratings := map[string]int64{"alice": 3, "bob": 4, "carol": 5}
	for user, rating := range ratings {
		_, err := svc.SubmitFeedback(ctx, 1, 100, user, rating, true)
		require.NoError(t, err)
	}

	item, err := svc.LoadItem(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), item.RatingCount)
	assert.Equal(t, int64(12), item.RatingTotal)

	avg, ok := item.AverageRating()
	require.True(t, ok)
	assert.InDelta(t, 4.0, avg, 1e-9)
}

func TestSubmitFeedback_RatingOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	for _, rating := range []int64{0, 6, -1} {
		_, err := svc.SubmitFeedback(ctx, 1, 100, "alice", rating, false)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestSubmitFeedback_RequiresUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	_, err := svc.SubmitFeedback(ctx, 1, 100, "", 3, false)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSubmitFeedback_ItemNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	_, err := svc.SubmitFeedback(ctx, 1, 404, "alice", 3, false)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSubmitFeedback_PartialWriteWhenItemSaveFails(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	seedPath(t, svc)

	store.failPutKind = ports.KindLearningItem

	_, err := svc.SubmitFeedback(ctx, 1, 100, "alice", 4, true)
	require.Error(t, err)
	assert.True(t, errors.IsPartialWrite(err))

	// The feedback record landed even though the aggregates did not
	store.failPutKind = ""
	path, err := svc.LoadForUser(ctx, 1, "alice")
	require.NoError(t, err)
	item, ok := path.Sections[0].ItemByID(100)
	require.True(t, ok)
	require.NotNil(t, item.UserRating)
	assert.Equal(t, int64(4), *item.UserRating)
	assert.Equal(t, int64(0), item.RatingCount)
}

func TestLoadForUser_CompletionRatios(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	// 3 of 4 completed in Basics, 1 of 2 in Concurrency
	for _, itemID := range []int64{100, 101, 102} {
		_, err := svc.SubmitFeedback(ctx, 1, itemID, "alice", 4, true)
		require.NoError(t, err)
	}
	_, err := svc.SubmitFeedback(ctx, 1, 103, "alice", 2, false)
	require.NoError(t, err)
	_, err = svc.SubmitFeedback(ctx, 1, 110, "alice", 5, true)
	require.NoError(t, err)

	path, err := svc.LoadForUser(ctx, 1, "alice")
	require.NoError(t, err)

	require.NotNil(t, path.Sections[0].Completion)
	assert.InDelta(t, 0.75, *path.Sections[0].Completion, 1e-9)
	require.NotNil(t, path.Sections[1].Completion)
	assert.InDelta(t, 0.5, *path.Sections[1].Completion, 1e-9)
	require.NotNil(t, path.Completion)
	assert.InDelta(t, 0.625, *path.Completion, 1e-9)

	// User values are attached only where feedback exists
	rated, ok := path.Sections[0].ItemByID(103)
	require.True(t, ok)
	require.NotNil(t, rated.UserRating)
	assert.Equal(t, int64(2), *rated.UserRating)
	require.NotNil(t, rated.Completed)
	assert.False(t, *rated.Completed)

	unrated, ok := path.Sections[1].ItemByID(111)
	require.True(t, ok)
	assert.Nil(t, unrated.UserRating)
	assert.Nil(t, unrated.Completed)
}

func TestLoadForUser_OtherUsersFeedbackInvisible(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	_, err := svc.SubmitFeedback(ctx, 1, 100, "bob", 5, true)
	require.NoError(t, err)

	path, err := svc.LoadForUser(ctx, 1, "alice")
	require.NoError(t, err)

	item, ok := path.Sections[0].ItemByID(100)
	require.True(t, ok)
	assert.Nil(t, item.UserRating)
	require.NotNil(t, path.Sections[0].Completion)
	assert.Zero(t, *path.Sections[0].Completion)
	// Aggregates are shared across users
	assert.Equal(t, int64(1), item.RatingCount)
}

func TestLoadForUser_EmptySectionHasNoCompletion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	path := entities.NewLearningPath(1, "Go from scratch", "")
	withItems := entities.NewLearningSection(10, 1, "Basics", "", 1)
	withItems.Items = []*entities.LearningItem{
		{ID: 100, Name: "Hello world", Sequence: 1},
		{ID: 101, Name: "Types", Sequence: 2},
	}
	empty := entities.NewLearningSection(11, 1, "Placeholder", "", 2)
	path.Sections = []*entities.LearningSection{withItems, empty}
	require.NoError(t, svc.StorePath(ctx, path))

	_, err := svc.SubmitFeedback(ctx, 1, 100, "alice", 3, true)
	require.NoError(t, err)

	loaded, err := svc.LoadForUser(ctx, 1, "alice")
	require.NoError(t, err)

	assert.Nil(t, loaded.Sections[1].Completion, "empty section carries no signal")
	require.NotNil(t, loaded.Completion)
	assert.InDelta(t, 0.5, *loaded.Completion, 1e-9, "path mean covers scorable sections only")
}

func TestLoadForUser_NoScorableSections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	path := entities.NewLearningPath(1, "Go from scratch", "")
	path.Sections = []*entities.LearningSection{
		entities.NewLearningSection(10, 1, "Placeholder", "", 1),
	}
	require.NoError(t, svc.StorePath(ctx, path))

	loaded, err := svc.LoadForUser(ctx, 1, "alice")
	require.NoError(t, err)
	assert.Nil(t, loaded.Sections[0].Completion)
	assert.Nil(t, loaded.Completion)
}

func TestLoadForUser_OrphanedFeedbackIgnored(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	_, err := svc.SubmitFeedback(ctx, 1, 101, "alice", 4, true)
	require.NoError(t, err)

	// Restructure: Basics keeps only item 100, so alice's feedback on 101
	// now dangles
	edited := entities.NewLearningPath(1, "Go from scratch", "")
	basics := entities.NewLearningSection(10, 1, "Basics", "", 1)
	basics.Items = []*entities.LearningItem{{ID: 100, Name: "Hello world", Sequence: 1}}
	edited.Sections = []*entities.LearningSection{basics}
	require.NoError(t, svc.StorePath(ctx, edited))

	path, err := svc.LoadForUser(ctx, 1, "alice")
	require.NoError(t, err)
	require.NotNil(t, path.Sections[0].Completion)
	assert.Zero(t, *path.Sections[0].Completion, "dangling feedback does not count")
}

func TestLoadForUser_RequiresUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedPath(t, svc)

	_, err := svc.LoadForUser(ctx, 1, "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
