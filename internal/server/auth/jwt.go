package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// MinSigningKeyLength is the shortest HMAC key NewTokenSigner accepts.
const MinSigningKeyLength = 32

// TokenConfig is everything needed to issue and verify access tokens.
// Issuer, audience and key must match on both sides.
type TokenConfig struct {
	SigningKey     []byte
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
}

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	Name           string `json:"name"`
	NameIdentifier string `json:"nameidentifier"`
	jwt.RegisteredClaims
}

// UserID parses the nameidentifier claim.
func (c *AccessClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.NameIdentifier, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// TokenSigner issues and verifies HS512 access tokens.
type TokenSigner struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenSigner(cfg TokenConfig) (*TokenSigner, error) {
	if len(cfg.SigningKey) < MinSigningKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	return &TokenSigner{cfg: cfg, now: time.Now}, nil
}

// Issue signs an access token for user valid from now for the configured TTL.
func (s *TokenSigner) Issue(user *models.User, now time.Time) (string, error) {
	claims := AccessClaims{
		Name:           user.UserName,
		NameIdentifier: strconv.FormatInt(user.ID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.cfg.SigningKey)
}

// Parse verifies signature, algorithm, issuer, audience and expiry with no
// clock-skew allowance. An expired token yields common.ErrTokenExpired; any
// other failure yields common.ErrInvalidToken.
func (s *TokenSigner) Parse(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.cfg.SigningKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
