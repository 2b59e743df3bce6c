// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores rt and fills in its ID and CreatedAt.
	Create(ctx context.Context, rt *models.RefreshToken) error

	// FindByToken looks up a refresh token by its exact token string, with the
	// owning user joined. Returns common.ErrorNotFound when absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks the token revoked if it was not already. It reports whether
	// this call performed the transition.
	Revoke(ctx context.Context, id int64) (bool, error)

	// DeleteExpiredBefore removes tokens that expired before cutoff and
	// returns the number of rows deleted.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
