package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls   atomic.Int32
	removed int
	err     error
	lastNow time.Time
}

func (f *fakeSweeper) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	f.lastNow = now
	return f.removed, f.err
}

func TestWizardJobs_Register(t *testing.T) {
	scheduler := NewScheduler()
	NewWizardJobs(&fakeSweeper{}, time.Minute).RegisterJobs(scheduler)

	jobs := scheduler.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "sweep_expired_wizard_sessions", jobs[0].Name)
	assert.Equal(t, time.Minute, jobs[0].Interval)
}

func TestWizardJobs_SweepExpiredSessions(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("passes the clock through", func(t *testing.T) {
		sweeper := &fakeSweeper{removed: 2}
		jobs := NewWizardJobs(sweeper, time.Minute)
		jobs.now = func() time.Time { return fixed }

		require.NoError(t, jobs.SweepExpiredSessions(context.Background()))
		assert.Equal(t, fixed, sweeper.lastNow)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		boom := errors.New("redis down")
		jobs := NewWizardJobs(&fakeSweeper{err: boom}, time.Minute)

		assert.ErrorIs(t, jobs.SweepExpiredSessions(context.Background()), boom)
	})
}

func TestScheduler_RunOnce(t *testing.T) {
	sweeper := &fakeSweeper{}
	scheduler := NewScheduler()
	NewWizardJobs(sweeper, time.Hour).RegisterJobs(scheduler)

	scheduler.RunOnce(context.Background())

	assert.EqualValues(t, 1, sweeper.calls.Load())
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	sweeper := &fakeSweeper{}
	scheduler := NewScheduler()
	NewWizardJobs(sweeper, time.Hour).RegisterJobs(scheduler)

	scheduler.Start(context.Background())
	assert.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	scheduler.Stop()
	scheduler.Stop()
	assert.EqualValues(t, 1, sweeper.calls.Load())
}
