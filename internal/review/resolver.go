// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/models"
)

// minReviewYear is the earliest year an explicit run may target.
const minReviewYear = 1970

// SkipReason explains why a run did not proceed.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipDisabled         SkipReason = "disabled"
	SkipOutOfSeason      SkipReason = "out_of_season"
	SkipAlreadyPublished SkipReason = "already_published"
)

// RunArgs are the per-invocation inputs of a review run.
type RunArgs struct {
	// ReviewYear overrides the default of last calendar year.
	ReviewYear *int
	// Force bypasses the enabled, season and already-published checks.
	Force bool
	// DryRun stops after rendering and publishes nothing.
	DryRun bool
}

// Resolution is the outcome of window resolution.
type Resolution struct {
	Window    models.ReviewWindow
	ShouldRun bool
	Reason    SkipReason
}

// Resolver decides which year to review and whether this run may publish.
type Resolver struct {
	cfg   *config.ReviewConfig
	store RecordStore
	loc   *time.Location
	now   func() time.Time
}

// NewResolver creates a resolver. A nil now uses time.Now.
func NewResolver(cfg *config.ReviewConfig, store RecordStore, loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{cfg: cfg, store: store, loc: loc, now: now}
}

// Resolve computes the review window and the eligibility of this run.
func (r *Resolver) Resolve(ctx context.Context, args RunArgs) (Resolution, error) {
	now := r.now().In(r.loc)

	year := now.Year() - 1
	if args.ReviewYear != nil {
		year = *args.ReviewYear
		if year < minReviewYear || year > now.Year() {
			return Resolution{}, fmt.Errorf("%w: %d outside %d..%d",
				ErrInvalidReviewYear, year, minReviewYear, now.Year())
		}
	}

	res := Resolution{Window: models.NewReviewWindow(year, r.loc)}

	if args.Force {
		res.ShouldRun = true
		return res, nil
	}

	if !r.cfg.Enabled {
		res.Reason = SkipDisabled
		return res, nil
	}
	if !r.inSeason(now) {
		res.Reason = SkipOutOfSeason
		return res, nil
	}

	exists, err := r.store.PublicationExists(ctx, year)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: checking publication record for %d: %w", ErrDataUnavailable, year, err)
	}
	if exists {
		res.Reason = SkipAlreadyPublished
		return res, nil
	}

	res.ShouldRun = true
	return res, nil
}

// inSeason reports whether now falls in the first SeasonDays days of January.
func (r *Resolver) inSeason(now time.Time) bool {
	return now.Month() == time.January && now.Day() <= r.cfg.SeasonDays
}
