package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/models"
	"github.com/charlesng35/agm-registration/internal/services"
	"github.com/charlesng35/agm-registration/pkg/logger"
)

const (
	defaultTokenSweepSpec     = "0 * * * *"
	defaultOutboxDispatchSpec = "* * * * *"
)

// Cleaner coordinates background maintenance: purging expired confirmation
// tokens and dispatching queued outbox emails.
type Cleaner struct {
	db     *gorm.DB
	outbox *services.OutboxService
	cron   *cron.Cron
	now    func() time.Time
	log    *zap.Logger

	tokenSweepSchedule     string
	outboxDispatchSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithTokenSweepSchedule overrides the cron specification for token cleanup.
func WithTokenSweepSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSweepSchedule = spec
		}
	}
}

// WithOutboxDispatchSchedule overrides the cron specification for outbox dispatch.
func WithOutboxDispatchSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.outboxDispatchSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil outbox service
// results in the dispatch job being skipped.
func NewCleaner(db *gorm.DB, outbox *services.OutboxService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                     db,
		outbox:                 outbox,
		now:                    time.Now,
		tokenSweepSchedule:     defaultTokenSweepSpec,
		outboxDispatchSchedule: defaultOutboxDispatchSpec,
		log:                    logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the maintenance jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db != nil {
		if _, err := c.cron.AddFunc(c.tokenSweepSchedule, func() {
			ctx := context.Background()
			if _, err := SweepExpiredTokens(ctx, c.db, c.now()); err != nil {
				c.log.Warn("token sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.outbox != nil {
		if _, err := c.cron.AddFunc(c.outboxDispatchSchedule, func() {
			ctx := context.Background()
			if _, err := c.outbox.DispatchPending(ctx); err != nil {
				c.log.Warn("outbox dispatch failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all maintenance routines sequentially. Primarily used in
// tests and during graceful shutdown to drain pending work.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.db != nil {
		if _, err := SweepExpiredTokens(ctx, c.db, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.outbox != nil {
		if _, err := c.outbox.DispatchPending(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// SweepExpiredTokens removes confirmation tokens whose expiry has passed.
// Tokens are also rejected lazily at confirmation time, so the sweep only
// bounds table growth.
func SweepExpiredTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("sweep tokens: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.VerificationToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("sweep tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}
