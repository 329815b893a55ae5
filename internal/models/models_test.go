// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

import (
	"testing"
	"time"
)

func TestNewReviewWindow(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		berlin = time.FixedZone("CET", 3600)
	}

	tests := []struct {
		name string
		year int
		loc  *time.Location
	}{
		{"utc", 2025, time.UTC},
		{"nil location", 2024, nil},
		{"leap year", 2024, time.UTC},
		{"offset zone", 2023, berlin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewReviewWindow(tt.year, tt.loc)

			if w.Year != tt.year {
				t.Errorf("Year = %d, want %d", w.Year, tt.year)
			}
			if w.Start.Year() != tt.year || w.End.Year() != tt.year {
				t.Errorf("Start.Year() = %d, End.Year() = %d, want both %d", w.Start.Year(), w.End.Year(), tt.year)
			}
			if w.Start.After(w.End) {
				t.Errorf("Start %v is after End %v", w.Start, w.End)
			}
			if w.Start.Month() != time.January || w.Start.Day() != 1 || w.Start.Hour() != 0 {
				t.Errorf("Start = %v, want Jan 1 00:00", w.Start)
			}
			if w.End.Month() != time.December || w.End.Day() != 31 || w.End.Hour() != 23 {
				t.Errorf("End = %v, want Dec 31 23:59:59", w.End)
			}
		})
	}
}

func TestReviewWindow_Contains(t *testing.T) {
	w := NewReviewWindow(2025, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"mid year", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), true},
		{"last microsecond", time.Date(2025, 12, 31, 23, 59, 59, 999999000, time.UTC), true},
		{"next year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"previous year", time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), false},
	}

	for _, tt := range tests {
		if got := w.Contains(tt.at); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMetricKey_Valid(t *testing.T) {
	for _, k := range AllMetricKeys() {
		if !k.Valid() {
			t.Errorf("%q.Valid() = false, want true", k)
		}
	}
	if MetricKey("posts_read").Valid() {
		t.Error(`"posts_read".Valid() = true, want false`)
	}
	if got := len(AllMetricKeys()); got != 7 {
		t.Errorf("len(AllMetricKeys()) = %d, want 7", got)
	}
}

func TestReportSection_IsEmpty(t *testing.T) {
	general := Category{ID: 4, Name: "General", Slug: "general"}

	tests := []struct {
		name    string
		section ReportSection
		want    bool
	}{
		{"empty leaderboard", NewLeaderboardSection(MetricVisits, nil), true},
		{"leaderboard with row", NewLeaderboardSection(MetricVisits, []LeaderboardEntry{{Value: 3, Rank: 1}}), false},
		{"empty visits", NewVisitsSection(nil), true},
		{"featured with only empty groups", NewFeaturedSection(general, []CriterionGroup{{Criterion: CriterionMostLiked}}), true},
		{"featured with a row", NewFeaturedSection(general, []CriterionGroup{
			{Criterion: CriterionMostLiked},
			{Criterion: CriterionMostRead, Entries: []FeaturedContentEntry{{ContentID: 1}}},
		}), false},
		{"nil badge", NewBadgeSection(nil), true},
		{"badge without entries", NewBadgeSection(&BadgeSpotlight{BadgeName: "Great Topic"}), true},
		{"unknown kind", ReportSection{Kind: "other"}, true},
	}

	for _, tt := range tests {
		if got := tt.section.IsEmpty(); got != tt.want {
			t.Errorf("%s: IsEmpty() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReviewDocument_Tags(t *testing.T) {
	doc := ReviewDocument{Year: 2025}

	if got := doc.CustomFields()[CustomFieldName]; got != "2025" {
		t.Errorf("CustomFields()[%q] = %q, want 2025", CustomFieldName, got)
	}
	if got := doc.IdempotencyKey(); got != "yearly-review-2025" {
		t.Errorf("IdempotencyKey() = %q, want yearly-review-2025", got)
	}
}

func TestUserRef_DisplayName(t *testing.T) {
	if got := (UserRef{Username: "sam", Name: "Sam Lee"}).DisplayName(); got != "Sam Lee" {
		t.Errorf("DisplayName() = %q, want Sam Lee", got)
	}
	if got := (UserRef{Username: "sam"}).DisplayName(); got != "sam" {
		t.Errorf("DisplayName() = %q, want sam", got)
	}
}
