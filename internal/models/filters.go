// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

// ActivityFilters are the exclusion predicates applied by every activity query.
type ActivityFilters struct {
	// ExcludeStaff drops admins and moderators.
	ExcludeStaff bool
	// ExcludeRestricted drops activity in privacy-restricted categories.
	ExcludeRestricted bool
	// MemberFloor is the lowest user ID treated as a real member.
	MemberFloor int64
	// MinReadMillis is the per-topic read time a view needs before it counts.
	MinReadMillis int64
}

// DefaultMinReadMillis filters out topic views of a minute or less.
const DefaultMinReadMillis int64 = 60 * 1000
