// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import (
	"context"

	"github.com/tomtom215/yearlyreview/internal/models"
)

// Gateway is the read-only activity store. Implementations return unordered,
// unlimited candidate rows; ranking happens here.
type Gateway interface {
	MetricCandidates(ctx context.Context, metric models.MetricKey, window models.ReviewWindow, filters models.ActivityFilters) ([]models.MetricRow, error)
	VisitDistribution(ctx context.Context, window models.ReviewWindow, filters models.ActivityFilters) ([]models.VisitBucket, error)
	Categories(ctx context.Context, ids []int64) ([]models.Category, error)
	ContentCandidates(ctx context.Context, criterion models.ContentCriterion, categoryID int64, window models.ReviewWindow, filters models.ActivityFilters) ([]models.ContentRow, error)
	BadgeGrants(ctx context.Context, badgeName string, window models.ReviewWindow, filters models.ActivityFilters) ([]models.BadgeGrantRow, error)
}

// RecordStore answers whether a year has already been published.
type RecordStore interface {
	PublicationExists(ctx context.Context, year int) (bool, error)
}

// Renderer turns assembled sections into a publishable document. It must be
// pure: the same inputs always produce the same document.
type Renderer interface {
	Render(window models.ReviewWindow, sections []models.ReportSection) (*models.ReviewDocument, error)
}

// Publisher delivers a rendered document and tags it with its review year.
// Implementations make create and tag atomic, or idempotent on the year.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, doc *models.ReviewDocument) (models.PublicationRecord, error)
}
