// Package scheduler runs the background jobs of the journal process.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"trading-journal-go/internal/session"
)

// Runner wraps a seconds-precision cron whose jobs share one base context.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(baseCtx context.Context, logger *zap.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.Named("scheduler"),
		baseCtx: baseCtx,
	}
}

// Add schedules job on a six-field cron spec.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

func (r *Runner) Start() {
	r.logger.Info("Scheduler started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop waits for running jobs to return.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Scheduler stopped")
}

// Refresher rotates session tokens.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshJob returns a job that refreshes the session, bounded by timeout.
// Having no session is not an error.
func RefreshJob(refresher Refresher, timeout time.Duration, logger *zap.Logger) func(context.Context) {
	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := refresher.Refresh(ctx)
		switch {
		case err == nil:
			logger.Debug("Session refreshed by schedule")
		case errors.Is(err, session.ErrNotAuthenticated):
		default:
			logger.Warn("Scheduled session refresh failed", zap.Error(err))
		}
	}
}
