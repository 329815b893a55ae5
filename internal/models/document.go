// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

import (
	"strconv"
	"time"
)

// CustomFieldName is the custom field that tags a published review with its year.
const CustomFieldName = "yearly_review"

// Author is the account a review is published as.
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ReviewDocument is a rendered review ready for publication. Replies hold the
// per-category posts that follow the opening post.
type ReviewDocument struct {
	Year     int      `json:"year"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category string   `json:"category,omitempty"`
	Author   Author   `json:"author"`
	Replies  []string `json:"replies,omitempty"`
}

// CustomFields returns the tag attached to the published document.
func (d *ReviewDocument) CustomFields() map[string]string {
	return map[string]string{CustomFieldName: strconv.Itoa(d.Year)}
}

// IdempotencyKey identifies the review for its year across retries.
func (d *ReviewDocument) IdempotencyKey() string {
	return "yearly-review-" + strconv.Itoa(d.Year)
}

// PublicationRecord marks that the review for Year has been published.
type PublicationRecord struct {
	Year        int       `json:"year"`
	DocumentID  string    `json:"document_id"`
	Publisher   string    `json:"publisher"`
	PublishedAt time.Time `json:"published_at"`
}
