package todoitems

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/cache"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo is an in-memory Repository that counts reads.
type countingRepo struct {
	items  map[int64]models.TodoItem
	nextID int64
	lists  int
	gets   int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{items: map[int64]models.TodoItem{}}
}

func (r *countingRepo) List(_ context.Context, userID int64) ([]models.TodoItem, error) {
	r.lists++
	out := []models.TodoItem{}
	for id := int64(1); id <= r.nextID; id++ {
		if it, ok := r.items[id]; ok && it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *countingRepo) Get(_ context.Context, id, userID int64) (*models.TodoItem, error) {
	r.gets++
	it, ok := r.items[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &it, nil
}

func (r *countingRepo) Create(_ context.Context, item *models.TodoItem) (*models.TodoItem, error) {
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = *item
	return item, nil
}

func (r *countingRepo) Update(_ context.Context, item *models.TodoItem) error {
	it, ok := r.items[item.ID]
	if !ok || it.UserID != item.UserID {
		return common.ErrorNotFound
	}
	r.items[item.ID] = *item
	return nil
}

func (r *countingRepo) Delete(_ context.Context, id, userID int64) error {
	it, ok := r.items[id]
	if !ok || it.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}

func newCached(t *testing.T) (*CachedRepository, *countingRepo) {
	t.Helper()
	inner := newCountingRepo()
	return NewCachedRepository(inner, cache.NewMemoryCache(time.Minute), time.Minute, logging.Discard()), inner
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	r, inner := newCached(t)
	ctx := context.Background()

	_, err := r.Create(ctx, &models.TodoItem{Name: "milk", UserID: 1})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		items, err := r.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)

		it, err := r.Get(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "milk", it.Name)
	}
	assert.Equal(t, 1, inner.lists)
	assert.Equal(t, 1, inner.gets)
}

func TestCachedRepository_ItemsAreScopedByUser(t *testing.T) {
	r, _ := newCached(t)
	ctx := context.Background()

	_, err := r.Create(ctx, &models.TodoItem{Name: "secret", UserID: 1})
	require.NoError(t, err)

	_, err = r.Get(ctx, 1, 1)
	require.NoError(t, err)

	_, err = r.Get(ctx, 1, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCachedRepository_WritesInvalidate(t *testing.T) {
	r, inner := newCached(t)
	ctx := context.Background()

	_, err := r.Create(ctx, &models.TodoItem{Name: "milk", UserID: 1})
	require.NoError(t, err)
	_, err = r.List(ctx, 1)
	require.NoError(t, err)
	_, err = r.Get(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, r.Update(ctx, &models.TodoItem{ID: 1, Name: "oat milk", IsComplete: true, UserID: 1}))
	it, err := r.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "oat milk", it.Name)
	assert.True(t, it.IsComplete)

	_, err = r.Create(ctx, &models.TodoItem{Name: "eggs", UserID: 1})
	require.NoError(t, err)
	items, err := r.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, r.Delete(ctx, 1, 1))
	_, err = r.Get(ctx, 1, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	items, err = r.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.Equal(t, 3, inner.lists)
}

func TestCachedRepository_FailedWritesPassThrough(t *testing.T) {
	r, _ := newCached(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.Update(ctx, &models.TodoItem{ID: 5, UserID: 1}), common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 5, 1), common.ErrorNotFound)
}
