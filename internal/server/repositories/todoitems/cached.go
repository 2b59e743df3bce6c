package todoitems

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/cache"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

// CachedRepository is a read-through decorator. Reads are served from the
// cache for ttl; writes go to the wrapped repository and drop the affected
// keys.
type CachedRepository struct {
	next   Repository
	cache  cache.Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedRepository(next Repository, c cache.Cache, ttl time.Duration, logger logging.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &CachedRepository{next: next, cache: c, ttl: ttl, logger: logger}
}

func listKey(userID int64) string {
	return fmt.Sprintf("todoItems_by_user-%d", userID)
}

func itemKey(id, userID int64) string {
	return fmt.Sprintf("todoItems-%d-%d", userID, id)
}

func (r *CachedRepository) List(ctx context.Context, userID int64) ([]models.TodoItem, error) {
	return cache.GetOrSet(ctx, r.cache, listKey(userID), r.ttl, func(ctx context.Context) ([]models.TodoItem, error) {
		return r.next.List(ctx, userID)
	})
}

func (r *CachedRepository) Get(ctx context.Context, id, userID int64) (*models.TodoItem, error) {
	return cache.GetOrSet(ctx, r.cache, itemKey(id, userID), r.ttl, func(ctx context.Context) (*models.TodoItem, error) {
		return r.next.Get(ctx, id, userID)
	})
}

func (r *CachedRepository) Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, listKey(item.UserID))
	return created, nil
}

func (r *CachedRepository) Update(ctx context.Context, item *models.TodoItem) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, listKey(item.UserID), itemKey(item.ID, item.UserID))
	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, id, userID int64) error {
	if err := r.next.Delete(ctx, id, userID); err != nil {
		return err
	}
	r.invalidate(ctx, listKey(userID), itemKey(id, userID))
	return nil
}

// invalidate is best effort; a stale entry expires within ttl anyway.
func (r *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
