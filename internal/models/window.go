// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package models holds the data structures shared by the review engine,
// the activity store, the renderer and the publishers.
package models

import (
	"time"
)

// ReviewWindow is the calendar year a report covers. Start and End are
// inclusive and always fall in Year.
type ReviewWindow struct {
	Year  int       `json:"year"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewReviewWindow returns the window covering year in loc (UTC when nil).
func NewReviewWindow(year int, loc *time.Location) ReviewWindow {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	// Microsecond precision matches the activity store's TIMESTAMP resolution.
	end := start.AddDate(1, 0, 0).Add(-time.Microsecond)
	return ReviewWindow{Year: year, Start: start, End: end}
}

// Contains reports whether t falls inside the window.
func (w ReviewWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
