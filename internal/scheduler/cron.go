package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper runs one watchlist sweep
type Sweeper interface {
	Sweep(ctx context.Context) (*models.Summary, error)
}

// LastRun describes the most recent scheduled or manual sweep
type LastRun struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Summary    *models.Summary `json:"summary,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Scheduler manages scheduled sweeps
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	lock     *utils.RunLock
	schedule string
	logger   *logrus.Logger

	mu   sync.RWMutex
	last *LastRun

	initial sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(sweeper Sweeper, lock *utils.RunLock, schedule string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sweeper:  sweeper,
		lock:     lock,
		schedule: schedule,
		logger:   logger,
	}
}

// Start starts the scheduler and runs an initial sweep in the background
func (s *Scheduler) Start() error {
	s.logger.WithField("schedule", s.schedule).Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runSweep()
	}()

	return nil
}

// Stop stops the scheduler and waits for running sweeps to finish,
// including the initial one
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.initial.Wait()
}

// LastRun returns the most recent sweep, or nil before the first one
func (s *Scheduler) LastRun() *LastRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	last := *s.last
	return &last
}

// RunSweep runs one sweep under the run lock and records it.
// Returns utils.ErrLocked when another sweep holds the lock.
func (s *Scheduler) RunSweep(ctx context.Context) (*models.Summary, error) {
	if s.lock != nil {
		if err := s.lock.TryLock(); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.WithError(err).Warn("Failed to release run lock")
			}
		}()
	}

	run := &LastRun{StartedAt: time.Now()}
	summary, err := s.sweeper.Sweep(ctx)
	run.FinishedAt = time.Now()
	run.Summary = summary
	if err != nil {
		run.Error = err.Error()
	}

	s.mu.Lock()
	s.last = run
	s.mu.Unlock()

	return summary, err
}

// runSweep executes the sweep job
func (s *Scheduler) runSweep() {
	s.logger.Info("Running scheduled sweep")

	_, err := s.RunSweep(context.Background())
	switch {
	case errors.Is(err, utils.ErrLocked):
		s.logger.Warn("Previous sweep still running, skipping")
	case err != nil:
		s.logger.WithError(err).Error("Sweep job failed")
	default:
		s.logger.Info("Sweep job completed successfully")
	}
}
