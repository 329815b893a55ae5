// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/models"
)

// SelectCategories picks the categories that get a featured content section.
//
// With an allow-list only listed categories are considered; without one,
// every category is. Restricted categories are dropped unless private
// categories are included. The result is ordered by yearly topic activity
// descending, then ID ascending, and capped.
func SelectCategories(all []models.Category, cfg *config.ReviewConfig) models.CategorySelection {
	allowed := make(map[int64]struct{}, len(cfg.Categories))
	for _, id := range cfg.Categories {
		allowed[id] = struct{}{}
	}

	selected := make([]models.Category, 0, len(all))
	for _, c := range all {
		if len(allowed) > 0 {
			if _, ok := allowed[c.ID]; !ok {
				continue
			}
		}
		if c.ReadRestricted && !cfg.IncludePrivateCategories {
			continue
		}
		selected = append(selected, c)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].TopicsYear != selected[j].TopicsYear {
			return selected[i].TopicsYear > selected[j].TopicsYear
		}
		return selected[i].ID < selected[j].ID
	})

	if cfg.MaxCategories > 0 && len(selected) > cfg.MaxCategories {
		selected = selected[:cfg.MaxCategories]
	}
	return models.CategorySelection{Categories: selected}
}

// Threshold returns the minimum value a topic needs for criterion.
func Threshold(criterion models.ContentCriterion, t config.ThresholdConfig) float64 {
	switch criterion {
	case models.CriterionMostRead:
		return t.ReadHours
	case models.CriterionMostLiked:
		return t.Likes
	case models.CriterionMostRepliedTo:
		return t.Replies
	case models.CriterionMostPopular:
		return t.PopularScore
	case models.CriterionMostBookmarked:
		return t.Bookmarks
	default:
		return 0
	}
}

func normalizeContent(criterion models.ContentCriterion, v float64) float64 {
	switch criterion {
	case models.CriterionMostRead:
		return msToHours(v)
	case models.CriterionMostPopular:
		return round2(v)
	default:
		return v
	}
}

// RankContent orders topics by value descending then topic ID ascending,
// keeps the first limit and then drops those below threshold. The cap is
// applied before the threshold, so fewer than limit entries may remain.
func RankContent(rows []models.ContentRow, criterion models.ContentCriterion, categoryID int64, limit int, threshold float64) []models.FeaturedContentEntry {
	entries := make([]models.FeaturedContentEntry, 0, len(rows))
	for _, row := range rows {
		v := normalizeContent(criterion, row.Value)
		if v <= 0 {
			continue
		}
		entries = append(entries, models.FeaturedContentEntry{
			ContentID:  row.TopicID,
			Title:      row.Title,
			Slug:       row.Slug,
			CategoryID: categoryID,
			Author:     row.Author,
			Value:      v,
			Criterion:  criterion,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].ContentID < entries[j].ContentID
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Value >= threshold {
			e.Rank = len(kept) + 1
			kept = append(kept, e)
		}
	}
	return kept
}

// BuildFeaturedContent returns one section per selected category that has at
// least one qualifying topic, in category order.
func (j *Job) BuildFeaturedContent(ctx context.Context, window models.ReviewWindow, filters models.ActivityFilters) ([]models.ReportSection, error) {
	all, err := j.gateway.Categories(ctx, j.cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	selection := SelectCategories(all, j.cfg)

	// Content respects the category choice above, so restricted categories
	// that were explicitly allowed must not be filtered out again.
	contentFilters := filters
	contentFilters.ExcludeRestricted = false

	criteria := models.AllContentCriteria()
	grid := make([][][]models.FeaturedContentEntry, len(selection.Categories))
	for i := range grid {
		grid[i] = make([][]models.FeaturedContentEntry, len(criteria))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.parallelism())
	for ci, category := range selection.Categories {
		for ki, criterion := range criteria {
			g.Go(func() error {
				rows, err := j.gateway.ContentCandidates(gctx, criterion, category.ID, window, contentFilters)
				if err != nil {
					return fmt.Errorf("featured %s in category %d: %w", criterion, category.ID, err)
				}
				grid[ci][ki] = RankContent(rows, criterion, category.ID, j.cfg.TopicsPerCriterion,
					Threshold(criterion, j.cfg.Thresholds))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sections := make([]models.ReportSection, 0, len(selection.Categories))
	for ci, category := range selection.Categories {
		groups := make([]models.CriterionGroup, 0, len(criteria))
		for ki, criterion := range criteria {
			if len(grid[ci][ki]) == 0 {
				continue
			}
			groups = append(groups, models.CriterionGroup{Criterion: criterion, Entries: grid[ci][ki]})
		}
		section := models.NewFeaturedSection(category, groups)
		if section.IsEmpty() {
			continue
		}
		sections = append(sections, section)
	}
	return sections, nil
}
