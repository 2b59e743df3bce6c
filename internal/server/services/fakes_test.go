package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/todoitems"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/users"
)

// store is an in-memory stand-in for the users and refresh_tokens tables.
type store struct {
	mu      sync.Mutex
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	lastUID int64
	lastTID int64

	// hooks for failure injection
	existsErr      error
	hideExisting   bool
	createTokenErr error
	beforeRevoke   func(id int64)
}

func newStore() *store {
	return &store{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

type fakeUsers struct{ s *store }

func (f fakeUsers) Exists(_ context.Context, name string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.existsErr != nil {
		return false, f.s.existsErr
	}
	if f.s.hideExisting {
		return false, nil
	}
	_, ok := f.s.users[name]
	return ok, nil
}

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[u.UserName]; ok {
		return nil, &common.UsernameTakenError{Username: u.UserName}
	}
	f.s.lastUID++
	u.ID = f.s.lastUID
	u.CreatedAt = time.Now()
	cp := *u
	f.s.users[u.UserName] = &cp
	return u, nil
}

func (f fakeUsers) GetUserByLogin(_ context.Context, name string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeTokens struct{ s *store }

func (f fakeTokens) Create(_ context.Context, rt *models.RefreshToken) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.createTokenErr != nil {
		return f.s.createTokenErr
	}
	f.s.lastTID++
	rt.ID = f.s.lastTID
	cp := *rt
	f.s.tokens[rt.Token] = &cp
	return nil
}

func (f fakeTokens) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rt, ok := f.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	for _, u := range f.s.users {
		if u.ID == rt.UserID {
			uc := *u
			cp.User = &uc
		}
	}
	return &cp, nil
}

func (f fakeTokens) Revoke(_ context.Context, id int64) (bool, error) {
	if f.s.beforeRevoke != nil {
		f.s.beforeRevoke(id)
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, rt := range f.s.tokens {
		if rt.ID == id && !rt.IsRevoked {
			rt.IsRevoked = true
			return true, nil
		}
	}
	return false, nil
}

func (f fakeTokens) DeleteExpiredBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeRepoManager struct{ s *store }

func (m fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return fakeUsers{m.s} }
func (m fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeTokens{m.s} }
func (m fakeRepoManager) TodoItems(dbx.DBTX) todoitems.Repository         { return nil }
