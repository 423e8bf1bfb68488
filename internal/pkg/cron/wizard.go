package cron

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper removes wizard sessions past their TTL
type SessionSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// WizardJobs contains wizard session cron jobs
type WizardJobs struct {
	sweeper  SessionSweeper
	interval time.Duration
	now      func() time.Time
}

// NewWizardJobs creates wizard session cron jobs
func NewWizardJobs(sweeper SessionSweeper, interval time.Duration) *WizardJobs {
	return &WizardJobs{
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
	}
}

// RegisterJobs registers all wizard-related cron jobs
func (j *WizardJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(
		"sweep_expired_wizard_sessions",
		j.interval,
		j.SweepExpiredSessions,
	)
}

// SweepExpiredSessions deletes abandoned wizard sessions
func (j *WizardJobs) SweepExpiredSessions(ctx context.Context) error {
	removed, err := j.sweeper.SweepExpired(ctx, j.now())
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Expired wizard sessions removed", "count", removed)
	}
	return nil
}
