// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/database"
	"github.com/tomtom215/yearlyreview/internal/logging"
	"github.com/tomtom215/yearlyreview/internal/ops"
	"github.com/tomtom215/yearlyreview/internal/review"
	"github.com/tomtom215/yearlyreview/internal/scheduler"
	"github.com/tomtom215/yearlyreview/internal/supervisor"
	"github.com/tomtom215/yearlyreview/internal/supervisor/services"
)

// serve runs the supervisor tree until ctx is canceled.
func serve(ctx context.Context, cfg *config.Config, db *database.DB, job *review.Job, logger *zerolog.Logger) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	sched := scheduler.New(job, logger, scheduler.Config{
		CheckInterval: cfg.Scheduler.CheckInterval,
		RunTimeout:    cfg.Scheduler.RunTimeout,
		Enabled:       cfg.Scheduler.Enabled,
	})
	tree.AddJobService(services.NewReviewSchedulerService(sched))

	if cfg.Server.Enabled {
		server := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           ops.NewHandler(db, logger).Router(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		}
		tree.AddOpsService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", cfg.Server.Addr).Msg("Ops server enabled")
	}

	logging.Info().
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Dur("check_interval", cfg.Scheduler.CheckInterval).
		Str("publisher", cfg.Publisher.Mode).
		Msg("Starting yearlyreview service")

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
