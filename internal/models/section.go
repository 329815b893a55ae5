// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

import "strconv"

// SectionKind identifies what a ReportSection carries.
type SectionKind string

// Section kinds, in report order.
const (
	SectionLeaderboard     SectionKind = "leaderboard"
	SectionVisits          SectionKind = "visits"
	SectionFeaturedContent SectionKind = "featured"
	SectionBadgeSpotlight  SectionKind = "badge"
)

// ReportSection is one block of the assembled report. Exactly one payload
// field is populated, matching Kind.
type ReportSection struct {
	Key  string      `json:"key"`
	Kind SectionKind `json:"kind"`

	Metric      MetricKey          `json:"metric,omitempty"`
	Leaderboard []LeaderboardEntry `json:"leaderboard,omitempty"`

	Visits []VisitBucket `json:"visits,omitempty"`

	Category *Category        `json:"category,omitempty"`
	Featured []CriterionGroup `json:"featured,omitempty"`

	Badge *BadgeSpotlight `json:"badge,omitempty"`
}

// Section keys that are not derived from a metric or category.
const (
	VisitsSectionKey = "daily_visits"
	BadgeSectionKey  = "featured_badge"
)

// NewLeaderboardSection builds a leaderboard section keyed by metric.
func NewLeaderboardSection(metric MetricKey, entries []LeaderboardEntry) ReportSection {
	return ReportSection{Key: string(metric), Kind: SectionLeaderboard, Metric: metric, Leaderboard: entries}
}

// NewVisitsSection builds the visit distribution section.
func NewVisitsSection(buckets []VisitBucket) ReportSection {
	return ReportSection{Key: VisitsSectionKey, Kind: SectionVisits, Visits: buckets}
}

// NewFeaturedSection builds the featured content section for one category.
func NewFeaturedSection(category Category, groups []CriterionGroup) ReportSection {
	return ReportSection{
		Key:      "category_" + strconv.FormatInt(category.ID, 10),
		Kind:     SectionFeaturedContent,
		Category: &category,
		Featured: groups,
	}
}

// NewBadgeSection builds the badge spotlight section.
func NewBadgeSection(spotlight *BadgeSpotlight) ReportSection {
	return ReportSection{Key: BadgeSectionKey, Kind: SectionBadgeSpotlight, Badge: spotlight}
}

// IsEmpty reports whether the section has no rows to show.
func (s *ReportSection) IsEmpty() bool {
	switch s.Kind {
	case SectionLeaderboard:
		return len(s.Leaderboard) == 0
	case SectionVisits:
		return len(s.Visits) == 0
	case SectionFeaturedContent:
		for i := range s.Featured {
			if len(s.Featured[i].Entries) > 0 {
				return false
			}
		}
		return true
	case SectionBadgeSpotlight:
		return s.Badge == nil || len(s.Badge.Entries) == 0
	default:
		return true
	}
}
