package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/refreshtokens"
)

// DefaultRefreshTokenTTL is how long a refresh token stays usable.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

// RefreshTokenRepositories vends a refresh-token repository bound to a
// connection or transaction. repomanager.RepositoryManager satisfies it.
type RefreshTokenRepositories interface {
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

// RefreshTokenManager generates, stores, validates and revokes opaque
// refresh tokens. Every storage method takes the DBTX to run on so the
// caller decides the transactional scope.
type RefreshTokenManager struct {
	repos RefreshTokenRepositories
	ttl   time.Duration
	now   func() time.Time
}

func NewRefreshTokenManager(repos RefreshTokenRepositories, ttl time.Duration) *RefreshTokenManager {
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}
	return &RefreshTokenManager{repos: repos, ttl: ttl, now: time.Now}
}

// Generate returns 256 bits from crypto/rand, base64 encoded.
func (m *RefreshTokenManager) Generate() (string, error) {
	return common.RandBase64String(common.RefreshTokenSize)
}

// IssueAndPersist stores a fresh unrevoked token for user and returns it.
func (m *RefreshTokenManager) IssueAndPersist(ctx context.Context, db dbx.DBTX, user *models.User) (string, error) {
	token, err := m.Generate()
	if err != nil {
		return "", err
	}
	rt := &models.RefreshToken{
		Token:          token,
		UserID:         user.ID,
		ExpirationDate: m.now().Add(m.ttl),
	}
	if err := m.repos.RefreshTokens(db).Create(ctx, rt); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup returns the stored token with its owner, or nil when no row matches.
func (m *RefreshTokenManager) Lookup(ctx context.Context, db dbx.DBTX, token string) (*models.RefreshToken, error) {
	rt, err := m.repos.RefreshTokens(db).FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rt, nil
}

// IsValid reports whether rt has not yet expired. Revocation is checked
// separately.
func (m *RefreshTokenManager) IsValid(rt *models.RefreshToken) bool {
	return rt.ExpirationDate.After(m.now())
}

// Revoke marks rt revoked. It reports true only for the call that moved the
// row from unrevoked to revoked; revoking again is a no-op returning false.
func (m *RefreshTokenManager) Revoke(ctx context.Context, db dbx.DBTX, rt *models.RefreshToken) (bool, error) {
	ok, err := m.repos.RefreshTokens(db).Revoke(ctx, rt.ID)
	if err != nil {
		return false, err
	}
	rt.IsRevoked = true
	return ok, nil
}
