// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/yearlyreview/internal/models"
)

const millisPerHour = 60 * 60 * 1000

// msToHours converts milliseconds to hours rounded to two decimals.
func msToHours(ms float64) float64 {
	return round2(ms / millisPerHour)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// normalizeMetric converts raw gateway values into display units.
func normalizeMetric(metric models.MetricKey, v float64) float64 {
	if metric == models.MetricTimeRead {
		return msToHours(v)
	}
	return v
}

// Leaderboard ranks candidate rows for one metric: rows with a non-positive
// value are dropped, the rest are ordered by value descending then user ID
// ascending, truncated to limit and ranked from 1.
func Leaderboard(metric models.MetricKey, rows []models.MetricRow, limit int) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		v := normalizeMetric(metric, row.Value)
		if v <= 0 {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{User: row.User, Value: v})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].User.ID < entries[j].User.ID
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// VisitBuckets orders visit buckets by days descending and keeps the first
// limit non-empty ones.
func VisitBuckets(buckets []models.VisitBucket, limit int) []models.VisitBucket {
	out := make([]models.VisitBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Days > 0 && b.Users > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Days > out[j].Days })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BuildLeaderboards queries every metric and returns one section per
// non-empty leaderboard, in report order. Any query failure fails the batch.
func (j *Job) BuildLeaderboards(ctx context.Context, window models.ReviewWindow, filters models.ActivityFilters) ([]models.ReportSection, error) {
	keys := models.AllMetricKeys()
	boards := make([][]models.LeaderboardEntry, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.parallelism())
	for i, key := range keys {
		g.Go(func() error {
			rows, err := j.gateway.MetricCandidates(gctx, key, window, filters)
			if err != nil {
				return fmt.Errorf("leaderboard %s: %w", key, err)
			}
			boards[i] = Leaderboard(key, rows, j.cfg.MaxUsers)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sections := make([]models.ReportSection, 0, len(keys))
	for i, key := range keys {
		section := models.NewLeaderboardSection(key, boards[i])
		if section.IsEmpty() {
			continue
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// BuildVisitDistribution returns the visit distribution section, or nil when
// there were no visits.
func (j *Job) BuildVisitDistribution(ctx context.Context, window models.ReviewWindow, filters models.ActivityFilters) (*models.ReportSection, error) {
	buckets, err := j.gateway.VisitDistribution(ctx, window, filters)
	if err != nil {
		return nil, fmt.Errorf("visit distribution: %w", err)
	}
	section := models.NewVisitsSection(VisitBuckets(buckets, j.cfg.MaxVisitBuckets))
	if section.IsEmpty() {
		return nil, nil
	}
	return &section, nil
}
