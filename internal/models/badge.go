// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

import "time"

// BadgeGrantRow is a single grant of the featured badge returned by the store.
type BadgeGrantRow struct {
	User      UserRef
	BadgeID   int64
	BadgeName string
	GrantedAt time.Time
}

// BadgeSpotlightEntry is one recipient shown in the spotlight.
type BadgeSpotlightEntry struct {
	User      UserRef `json:"user"`
	BadgeID   int64   `json:"badge_id"`
	BadgeName string  `json:"badge_name"`
}

// BadgeSpotlight is the capped list of recipients of the featured badge.
type BadgeSpotlight struct {
	BadgeID   int64                 `json:"badge_id"`
	BadgeName string                `json:"badge_name"`
	Entries   []BadgeSpotlightEntry `json:"entries"`
	// Total counts every matching grant, repeat grants included.
	Total int `json:"total"`
	// OverflowCount is max(0, Total - cap).
	OverflowCount int `json:"overflow_count"`
}
