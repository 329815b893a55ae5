// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

import "time"

// ContentCriterion identifies how featured topics are ranked inside a category.
type ContentCriterion string

// Content criteria, in report order.
const (
	CriterionMostRead       ContentCriterion = "most_read"
	CriterionMostLiked      ContentCriterion = "most_liked"
	CriterionMostRepliedTo  ContentCriterion = "most_replied_to"
	CriterionMostPopular    ContentCriterion = "most_popular"
	CriterionMostBookmarked ContentCriterion = "most_bookmarked"
)

// AllContentCriteria returns every criterion in report order.
func AllContentCriteria() []ContentCriterion {
	return []ContentCriterion{
		CriterionMostRead,
		CriterionMostLiked,
		CriterionMostRepliedTo,
		CriterionMostPopular,
		CriterionMostBookmarked,
	}
}

// Category is a community category as stored in the activity store.
type Category struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	ParentSlug     string `json:"parent_slug,omitempty"`
	ReadRestricted bool   `json:"read_restricted"`
	// TopicsYear is the stored yearly activity score used to pick categories.
	TopicsYear int64 `json:"topics_year"`
}

// CategorySelection is the ordered set of categories featured in a report.
type CategorySelection struct {
	Categories []Category `json:"categories"`
}

// IDs returns the selected category IDs in order.
func (s CategorySelection) IDs() []int64 {
	ids := make([]int64, len(s.Categories))
	for i := range s.Categories {
		ids[i] = s.Categories[i].ID
	}
	return ids
}

// ContentRow is an unranked candidate topic for a criterion.
type ContentRow struct {
	TopicID   int64
	Title     string
	Slug      string
	CreatedAt time.Time
	Author    UserRef
	Value     float64
}

// FeaturedContentEntry is one surviving topic under a (category, criterion) pair.
type FeaturedContentEntry struct {
	ContentID  int64            `json:"content_id"`
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	CategoryID int64            `json:"category_id"`
	Author     UserRef          `json:"author"`
	Value      float64          `json:"value"`
	Criterion  ContentCriterion `json:"criterion"`
	Rank       int              `json:"rank"`
}

// CriterionGroup holds the featured topics of one criterion.
type CriterionGroup struct {
	Criterion ContentCriterion       `json:"criterion"`
	Entries   []FeaturedContentEntry `json:"entries"`
}
