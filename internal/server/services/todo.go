package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/todoitems"
)

// ErrEmptyName rejects to-do items without a name.
var ErrEmptyName = errors.New("name is required")

// TodoService is the per-user to-do CRUD. The userID always comes from the
// caller's verified access token.
type TodoService struct {
	repo todoitems.Repository
}

func NewTodoService(repo todoitems.Repository) *TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) List(ctx context.Context, userID int64) ([]models.TodoItem, error) {
	return s.repo.List(ctx, userID)
}

func (s *TodoService) Get(ctx context.Context, userID, id int64) (*models.TodoItem, error) {
	return s.repo.Get(ctx, id, userID)
}

func (s *TodoService) Create(ctx context.Context, userID int64, name string, isComplete bool) (*models.TodoItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	return s.repo.Create(ctx, &models.TodoItem{Name: name, IsComplete: isComplete, UserID: userID})
}

func (s *TodoService) Update(ctx context.Context, userID, id int64, name string, isComplete bool) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return s.repo.Update(ctx, &models.TodoItem{ID: id, Name: name, IsComplete: isComplete, UserID: userID})
}

func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, id, userID)
}
