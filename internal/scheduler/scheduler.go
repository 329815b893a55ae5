// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package scheduler triggers the yearly review job on a fixed interval.
//
// Every tick runs the job with default arguments. The job itself decides
// whether the review is due (enabled, in season, not yet published), so the
// scheduler only provides the cadence and guarantees that ticks never overlap.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/yearlyreview/internal/metrics"
	"github.com/tomtom215/yearlyreview/internal/review"
)

// Tick results recorded in metrics.
const (
	TickRan        = "ran"
	TickFailed     = "failed"
	TickOverlapped = "overlapped"
)

// Runner runs one review pass. Satisfied by *review.Job.
type Runner interface {
	Run(ctx context.Context, args review.RunArgs) (*review.Result, error)
}

// Config holds scheduler settings.
type Config struct {
	// CheckInterval is how often the job is triggered (default: 1 hour).
	CheckInterval time.Duration
	// RunTimeout bounds one run (default: 10 minutes).
	RunTimeout time.Duration
	Enabled    bool
}

// Scheduler triggers the review job periodically.
type Scheduler struct {
	runner Runner
	logger zerolog.Logger
	config Config

	// runMu is held for the duration of a run; a tick that cannot take it
	// is dropped.
	runMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a scheduler.
func New(runner Runner, logger *zerolog.Logger, config Config) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Hour
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 10 * time.Minute
	}
	return &Scheduler{
		runner: runner,
		logger: logger.With().Str("component", "review-scheduler").Logger(),
		config: config,
	}
}

// Start begins the scheduler loop. The first run happens immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info().Msg("Review scheduler disabled")
		go func() {
			defer close(s.doneCh)
			<-s.stopCh
		}()
		return nil
	}

	s.logger.Info().
		Dur("check_interval", s.config.CheckInterval).
		Dur("run_timeout", s.config.RunTimeout).
		Msg("Starting review scheduler")

	go s.loop(ctx)
	return nil
}

// Stop ends the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	s.logger.Info().Msg("Review scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	s.Tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs the job once unless a previous run is still in progress. It
// returns the tick result.
func (s *Scheduler) Tick(ctx context.Context) string {
	if !s.runMu.TryLock() {
		s.logger.Warn().Msg("Previous review run still in progress, skipping tick")
		metrics.RecordSchedulerTick(TickOverlapped)
		return TickOverlapped
	}
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	res, err := s.runner.Run(runCtx, review.RunArgs{})
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled review run failed")
		metrics.RecordSchedulerTick(TickFailed)
		return TickFailed
	}

	s.logger.Debug().Str("outcome", string(res.Outcome)).Int("review_year", res.Year).Msg("Scheduled review run complete")
	metrics.RecordSchedulerTick(TickRan)
	return TickRan
}
