// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/yearlyreview/internal/models"
)

// SelectBadgeUsers keeps the earliest grant per user, orders recipients by
// user ID ascending and caps the list at limit. Total counts every matching
// grant, so OverflowCount is max(0, grants-limit). It returns nil when there
// are no grants.
func SelectBadgeUsers(grants []models.BadgeGrantRow, limit int) *models.BadgeSpotlight {
	if len(grants) == 0 {
		return nil
	}

	first := make(map[int64]models.BadgeGrantRow, len(grants))
	for _, g := range grants {
		prev, seen := first[g.User.ID]
		if !seen || g.GrantedAt.Before(prev.GrantedAt) {
			first[g.User.ID] = g
		}
	}

	entries := make([]models.BadgeSpotlightEntry, 0, len(first))
	for _, g := range first {
		entries = append(entries, models.BadgeSpotlightEntry{
			User:      g.User,
			BadgeID:   g.BadgeID,
			BadgeName: g.BadgeName,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].User.ID < entries[j].User.ID })

	spotlight := &models.BadgeSpotlight{
		BadgeID:   grants[0].BadgeID,
		BadgeName: grants[0].BadgeName,
		Total:     len(grants),
	}
	if limit >= 0 {
		if len(entries) > limit {
			entries = entries[:limit]
		}
		spotlight.OverflowCount = max(0, spotlight.Total-limit)
	}
	spotlight.Entries = entries
	return spotlight
}

// BuildBadgeSpotlight returns the badge section, or nil when no featured
// badge is configured or nobody earned it in the window.
func (j *Job) BuildBadgeSpotlight(ctx context.Context, window models.ReviewWindow, filters models.ActivityFilters) (*models.ReportSection, error) {
	badge := strings.TrimSpace(j.cfg.FeaturedBadge)
	if badge == "" {
		return nil, nil
	}

	grants, err := j.gateway.BadgeGrants(ctx, badge, window, filters)
	if err != nil {
		return nil, fmt.Errorf("badge %q: %w", badge, err)
	}

	section := models.NewBadgeSection(SelectBadgeUsers(grants, j.cfg.MaxBadgeUsers))
	if section.IsEmpty() {
		return nil, nil
	}
	return &section, nil
}
