// Package users declares the storage contract for registered accounts and
// its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

type Repository interface {
	// Exists reports whether an account with userName is stored.
	Exists(ctx context.Context, userName string) (bool, error)
	// Create inserts user and fills in ID and CreatedAt. A duplicate
	// username yields a *common.UsernameTakenError.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound when no account matches.
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
