// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import (
	"github.com/tomtom215/yearlyreview/internal/metrics"
	"github.com/tomtom215/yearlyreview/internal/models"
)

// Gathered holds the section candidates produced by one run.
type Gathered struct {
	Leaderboards []models.ReportSection
	Visits       *models.ReportSection
	Featured     []models.ReportSection
	Badge        *models.ReportSection
}

// Assemble orders sections as leaderboards, visit distribution, featured
// content and badge spotlight, skipping empty ones.
func Assemble(g Gathered) []models.ReportSection {
	ordered := make([]models.ReportSection, 0, len(g.Leaderboards)+len(g.Featured)+2)
	ordered = append(ordered, g.Leaderboards...)
	if g.Visits != nil {
		ordered = append(ordered, *g.Visits)
	}
	ordered = append(ordered, g.Featured...)
	if g.Badge != nil {
		ordered = append(ordered, *g.Badge)
	}

	sections := ordered[:0]
	for i := range ordered {
		if ordered[i].IsEmpty() {
			continue
		}
		metrics.RecordSection(string(ordered[i].Kind))
		sections = append(sections, ordered[i])
	}
	return sections
}
