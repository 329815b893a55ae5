// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package services

import (
	"context"
	"fmt"
)

// SchedulerManager is the Start/Stop lifecycle of *scheduler.Scheduler.
type SchedulerManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// ReviewSchedulerService runs the review scheduler under supervision.
type ReviewSchedulerService struct {
	manager SchedulerManager
	name    string
}

// NewReviewSchedulerService wraps manager.
func NewReviewSchedulerService(manager SchedulerManager) *ReviewSchedulerService {
	return &ReviewSchedulerService{
		manager: manager,
		name:    "review-scheduler",
	}
}

// Serve implements suture.Service: Start, wait for cancellation, Stop.
// A failed Start is returned so suture restarts the service with backoff.
func (s *ReviewSchedulerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("review scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("review scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *ReviewSchedulerService) String() string {
	return s.name
}
