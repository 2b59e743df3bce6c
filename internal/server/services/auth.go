package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisteredUser struct {
	ID       int64  `json:"id"`
	UserName string `json:"username"`
}

// errTokenConsumed aborts a rotation whose token was revoked by a
// concurrent caller between lookup and revoke.
var errTokenConsumed = errors.New("refresh token already consumed")

// AuthService implements registration, login and refresh-token rotation.
// It keeps no state of its own; every decision reads the database.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	signer      *auth.TokenSigner
	refresh     *auth.RefreshTokenManager
	logger      logging.Logger
	now         func() time.Time

	decoyOnce sync.Once
	decoy     string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	signer *auth.TokenSigner, refresh *auth.RefreshTokenManager, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		signer:      signer,
		refresh:     refresh,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates an account. A taken username yields an error matching
// common.ErrUsernameTaken, whether the pre-check or the unique constraint
// caught it.
func (s *AuthService) Register(ctx context.Context, userName, password string) (*RegisteredUser, error) {
	repo := s.repomanager.Users(s.db)

	exists, err := repo.Exists(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if exists {
		return nil, &common.UsernameTakenError{Username: userName}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return &RegisteredUser{ID: user.ID, UserName: user.UserName}, nil
}

// Login checks credentials and issues a new token pair. Unknown users and
// wrong passwords both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(s.decoyHash(), password)
			s.logger.Debug(ctx, "login failed: unknown user")
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.logger.Debug(ctx, "login failed: wrong password", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, s.db, user)
}

// RefreshTokens exchanges a refresh token for a new pair. Unknown, expired,
// revoked and concurrently consumed tokens all yield (nil, nil).
//
// Revoking the presented token and storing its replacement happen in one
// transaction, and new tokens are handed out only if this call won the
// conditional revoke. The transaction ignores cancellation of ctx.
func (s *AuthService) RefreshTokens(ctx context.Context, token string) (*TokenPair, error) {
	rt, err := s.refresh.Lookup(ctx, s.db, token)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if rt == nil {
		s.logger.Debug(ctx, "refresh rejected: unknown token")
		return nil, nil
	}
	if rt.IsRevoked {
		s.logger.Warn(ctx, "refresh rejected: token reuse", "user_id", rt.UserID, "token_id", rt.ID)
		return nil, nil
	}
	if !s.refresh.IsValid(rt) {
		s.logger.Debug(ctx, "refresh rejected: expired", "user_id", rt.UserID, "token_id", rt.ID)
		return nil, nil
	}
	if rt.User == nil {
		return nil, fmt.Errorf("refresh token %d loaded without owner", rt.ID)
	}

	var pair *TokenPair
	err = dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		revoked, err := s.refresh.Revoke(ctx, tx, rt)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if !revoked {
			return errTokenConsumed
		}

		pair, err = s.issueTokenPair(ctx, tx, rt.User)
		return err
	})
	if err != nil {
		if errors.Is(err, errTokenConsumed) {
			s.logger.Warn(ctx, "refresh rejected: lost rotation race", "user_id", rt.UserID, "token_id", rt.ID)
			return nil, nil
		}
		return nil, err
	}

	return pair, nil
}

// decoyHash is verified against on logins for unknown users so they cost
// the same hashing work as a wrong password.
func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("todoapi-decoy-password")
		if err != nil {
			s.logger.Error(context.Background(), "decoy hash failed", "error", err)
			return
		}
		s.decoy = h
	})
	return s.decoy
}

func (s *AuthService) issueTokenPair(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenPair, error) {
	access, err := s.signer.Issue(user, s.now())
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}

	refresh, err := s.refresh.IssueAndPersist(ctx, db, user)
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
