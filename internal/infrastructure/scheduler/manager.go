// Package scheduler provides scheduled job management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"gitgate/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager manages the scheduled jobs with a single gocron instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterAccessSyncJobs registers the periodic access refresh. Singleton
// mode: a sweep that outlives its interval reschedules instead of stacking.
func (m *SchedulerManager) RegisterAccessSyncJobs(refreshJob BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runAccessRefresh(ctx, refreshJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("integration", "access-sync"),
		gocron.WithName("access-refresh"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered access sync jobs", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runAccessRefresh(ctx context.Context, refreshJob BatchJob) {
	startTime := time.Now().UTC()

	count, err := refreshJob.Execute(ctx)
	if err != nil {
		m.logger.Errorw("access refresh sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("access refresh sweep completed",
			"pairs", count,
			"duration", time.Since(startTime),
		)
	}
}

// Start begins executing registered jobs. Idempotent.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started")
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (m *SchedulerManager) Shutdown() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	if err := m.scheduler.Shutdown(); err != nil {
		return err
	}

	m.started = false
	m.logger.Infow("scheduler stopped")
	return nil
}
