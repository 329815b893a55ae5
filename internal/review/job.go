// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

/*
Package review compiles and publishes the community year in review.

A run resolves the review window, gathers leaderboards, the visit
distribution, featured content per category and the badge spotlight from the
activity Gateway, assembles the non-empty sections in a fixed order, renders
them and hands the document to a Publisher. Publication happens at most once
per review year: the resolver checks the record store up front, the job
re-checks it right before publishing, and the publishers themselves reject a
second record for the same year.

Ranking is deterministic. Every list is ordered by value descending with ties
broken by ascending ID, capped, and (for featured content) filtered by an
inclusive threshold after the cap.
*/
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/database"
	"github.com/tomtom215/yearlyreview/internal/logging"
	"github.com/tomtom215/yearlyreview/internal/metrics"
	"github.com/tomtom215/yearlyreview/internal/models"
)

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomePublished           Outcome = "published"
	OutcomeSkipped             Outcome = "skipped"
	OutcomePublicationConflict Outcome = "conflict"
	OutcomeEmpty               Outcome = "empty"
	OutcomeDryRun              Outcome = "dry_run"
	OutcomeFailed              Outcome = "failed"
)

// Result describes one run.
type Result struct {
	Outcome  Outcome
	Year     int
	Reason   SkipReason
	Sections []models.ReportSection
	Document *models.ReviewDocument
	Record   *models.PublicationRecord
	Duration time.Duration

	err error
}

// Err maps non-published outcomes to their sentinel error. It returns nil
// for published and dry runs.
func (r *Result) Err() error {
	switch r.Outcome {
	case OutcomeSkipped:
		return fmt.Errorf("%w: %s", ErrSkipNotEligible, r.Reason)
	case OutcomePublicationConflict:
		return ErrPublicationConflict
	case OutcomeEmpty:
		return ErrEmptyReport
	case OutcomeFailed:
		return r.err
	default:
		return nil
	}
}

// Option configures a Job.
type Option func(*Job)

// WithClock replaces time.Now for season and default-year decisions.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// Job runs the review pipeline.
type Job struct {
	cfg       *config.ReviewConfig
	gateway   Gateway
	store     RecordStore
	renderer  Renderer
	publisher Publisher
	resolver  *Resolver
	logger    zerolog.Logger
	now       func() time.Time
}

// NewJob wires a job. cfg must already be validated.
func NewJob(
	cfg *config.ReviewConfig,
	gateway Gateway,
	store RecordStore,
	renderer Renderer,
	publisher Publisher,
	logger *zerolog.Logger,
	opts ...Option,
) (*Job, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	j := &Job{
		cfg:       cfg,
		gateway:   gateway,
		store:     store,
		renderer:  renderer,
		publisher: publisher,
		logger:    logger.With().Str("component", "review-job").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.resolver = NewResolver(cfg, store, loc, j.now)
	return j, nil
}

func (j *Job) parallelism() int {
	if j.cfg.QueryParallelism < 1 {
		return 1
	}
	return j.cfg.QueryParallelism
}

// Filters returns the activity filters derived from configuration.
func (j *Job) Filters() models.ActivityFilters {
	return models.ActivityFilters{
		ExcludeStaff:      j.cfg.ExcludeStaff,
		ExcludeRestricted: !j.cfg.IncludePrivateCategories,
		MemberFloor:       j.cfg.SentinelFloor,
		MinReadMillis:     models.DefaultMinReadMillis,
	}
}

// Run executes one review run. Skips, conflicts and empty reports return a
// nil error; see Result.Outcome.
func (j *Job) Run(ctx context.Context, args RunArgs) (*Result, error) {
	start := time.Now()
	ctx = logging.ContextWithLogger(ctx, j.logger)
	ctx = logging.ContextWithNewCorrelationID(ctx)

	res, err := j.run(ctx, args)
	res.Duration = time.Since(start)
	res.err = err
	metrics.RecordRun(string(res.Outcome), res.Duration)

	log := logging.Ctx(logging.ContextWithReviewYear(ctx, res.Year))
	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Str("outcome", string(res.Outcome)).
		Str("reason", string(res.Reason)).
		Int("sections", len(res.Sections)).
		Dur("duration", res.Duration).
		Msg("Yearly review run finished")

	return res, err
}

func (j *Job) run(ctx context.Context, args RunArgs) (*Result, error) {
	resolution, err := j.resolver.Resolve(ctx, args)
	if err != nil {
		return &Result{Outcome: OutcomeFailed}, err
	}

	window := resolution.Window
	res := &Result{Year: window.Year}
	if !resolution.ShouldRun {
		res.Outcome = OutcomeSkipped
		res.Reason = resolution.Reason
		return res, nil
	}

	ctx = logging.ContextWithReviewYear(ctx, window.Year)
	logging.Ctx(ctx).Info().
		Bool("force", args.Force).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Msg("Compiling yearly review")

	gathered, err := j.gather(ctx, window)
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	res.Sections = Assemble(gathered)
	if len(res.Sections) == 0 {
		res.Outcome = OutcomeEmpty
		logging.Ctx(ctx).Warn().Msg("No activity for review year, publication suppressed")
		return res, nil
	}

	doc, err := j.renderer.Render(window, res.Sections)
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("render review %d: %w", window.Year, err)
	}
	res.Document = doc

	if args.DryRun {
		res.Outcome = OutcomeDryRun
		return res, nil
	}

	if !args.Force {
		exists, err := j.store.PublicationExists(ctx, window.Year)
		if err != nil {
			res.Outcome = OutcomeFailed
			return res, fmt.Errorf("%w: rechecking publication record: %w", ErrDataUnavailable, err)
		}
		if exists {
			res.Outcome = OutcomePublicationConflict
			return res, nil
		}
	}

	rec, err := j.publisher.Publish(ctx, doc)
	if err != nil {
		if errors.Is(err, database.ErrPublicationExists) || errors.Is(err, ErrPublicationConflict) {
			metrics.RecordPublish(j.publisher.Name(), "conflict")
			res.Outcome = OutcomePublicationConflict
			return res, nil
		}
		metrics.RecordPublish(j.publisher.Name(), "error")
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("%w: %s: %w", ErrPublishFailed, j.publisher.Name(), err)
	}

	metrics.RecordPublish(j.publisher.Name(), "success")
	metrics.SetLastPublishedYear(window.Year)
	res.Record = &rec
	res.Outcome = OutcomePublished
	return res, nil
}

// gather runs the independent section queries concurrently. The first
// failure cancels the rest.
func (j *Job) gather(ctx context.Context, window models.ReviewWindow) (Gathered, error) {
	filters := j.Filters()
	var out Gathered

	g, gctx := errgroup.WithContext(ctx)
	if j.cfg.IncludeUserStats {
		g.Go(func() error {
			sections, err := j.BuildLeaderboards(gctx, window, filters)
			out.Leaderboards = sections
			return err
		})
	}
	if j.cfg.IncludeVisitDistribution {
		g.Go(func() error {
			section, err := j.BuildVisitDistribution(gctx, window, filters)
			out.Visits = section
			return err
		})
	}
	g.Go(func() error {
		sections, err := j.BuildFeaturedContent(gctx, window, filters)
		out.Featured = sections
		return err
	})
	g.Go(func() error {
		section, err := j.BuildBadgeSpotlight(gctx, window, filters)
		out.Badge = section
		return err
	})

	if err := g.Wait(); err != nil {
		return Gathered{}, err
	}
	return out, nil
}
