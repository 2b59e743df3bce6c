// Package todoitems stores to-do items. Every operation is scoped by the
// owning user id; a row belonging to someone else behaves as absent.
package todoitems

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID int64) ([]models.TodoItem, error)
	// Get returns common.ErrorNotFound when no item id is owned by userID.
	Get(ctx context.Context, id, userID int64) (*models.TodoItem, error)
	Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error)
	// Update and Delete return common.ErrorNotFound when nothing matched.
	Update(ctx context.Context, item *models.TodoItem) error
	Delete(ctx context.Context, id, userID int64) error
}
