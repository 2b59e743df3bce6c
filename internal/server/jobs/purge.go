// Package jobs holds the server's periodic maintenance work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/refreshtokens"
	"github.com/go-co-op/gocron"
)

// TokenPurger deletes refresh tokens that expired more than retention ago.
// Revoked but unexpired tokens are kept, so reuse of a rotated token is
// still recognised until it would have expired anyway.
type TokenPurger struct {
	repo      refreshtokens.Repository
	retention time.Duration
	interval  time.Duration
	logger    logging.Logger
	now       func() time.Time
}

func NewTokenPurger(repo refreshtokens.Repository, retention, interval time.Duration, l logging.Logger) *TokenPurger {
	return &TokenPurger{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    l.With("module", "token_purger"),
		now:       time.Now,
	}
}

// Purge runs one cleanup pass.
func (p *TokenPurger) Purge(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	n, err := p.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return n, nil
}

// Run schedules Purge every interval until ctx is cancelled. A zero
// retention or interval disables the job.
func (p *TokenPurger) Run(ctx context.Context) error {
	if p.retention <= 0 || p.interval <= 0 {
		p.logger.Info(ctx, "refresh token purge disabled")
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if _, err := s.Every(p.interval).Do(p.runOnce, ctx); err != nil {
		return fmt.Errorf("schedule purge: %w", err)
	}

	p.logger.Info(ctx, "Starting refresh token purge", "interval", p.interval.String(), "retention", p.retention.String())
	s.StartAsync()

	<-ctx.Done()
	s.Stop()
	p.logger.Info(ctx, "Stopped refresh token purge")
	return nil
}

func (p *TokenPurger) runOnce(ctx context.Context) {
	n, err := p.Purge(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error(ctx, "refresh token purge failed", "error", err)
		}
		return
	}
	p.logger.Info(ctx, "purged expired refresh tokens", "deleted", n)
}
