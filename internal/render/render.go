// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package render turns assembled review sections into markdown documents.
//
// Rendering is stateless: output depends only on the window, the sections
// and the options fixed at construction. The main body carries the member
// leaderboards, the visit distribution and the badge spotlight; each featured
// category becomes its own reply.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/models"
)

const mainTemplate = `Here is a look back at the community in {{.Year}}.
{{range .Leaderboards}}
### {{metricTitle .Metric}}

{{tableRow "" "User" (metricUnit .Metric)}}
|---|---|---|
{{range .Leaderboard}}{{tableRow (avatar .User) (userLink .User) (formatNumber .Value)}}
{{end}}{{end}}
{{- if .Visits}}
### Days Visited

{{tableRow "Days" "Members"}}
|---|---|
{{range .Visits}}{{tableRow (formatNumber (float .Days)) (formatNumber (float .Users))}}
{{end}}{{end}}
{{- with .Badge}}
### {{escape .BadgeName}}

{{range .Entries}}{{avatar .User}} {{userLink .User}}
{{end}}{{if gt .OverflowCount 0}}{{badgeLink .}}
{{end}}{{end}}
{{- if .HasReplies}}
Top topics for each category follow below.
{{end}}`

const categoryTemplate = `## {{categoryLink .Category}}
{{range .Featured}}
### {{criterionTitle .Criterion}}

{{range .Entries}}- {{topicLink .}} by {{userLink .Author}} ({{formatNumber .Value}} {{criterionUnit .Criterion}})
{{end}}{{end}}`

type mainData struct {
	Year         int
	Leaderboards []models.ReportSection
	Visits       []models.VisitBucket
	Badge        *models.BadgeSpotlight
	HasReplies   bool
}

// Renderer renders review documents.
type Renderer struct {
	cfg      *config.ReviewConfig
	main     *template.Template
	category *template.Template
}

// New parses the report templates once.
func New(cfg *config.ReviewConfig) (*Renderer, error) {
	funcs := newLinker(cfg.BaseURL).funcMap()
	funcs["float"] = func(n int) float64 { return float64(n) }

	main, err := template.New("main").Funcs(funcs).Parse(mainTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse main template: %w", err)
	}
	category, err := template.New("category").Funcs(funcs).Parse(categoryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category template: %w", err)
	}

	return &Renderer{cfg: cfg, main: main, category: category}, nil
}

// Render builds the document for window from sections.
func (r *Renderer) Render(window models.ReviewWindow, sections []models.ReportSection) (*models.ReviewDocument, error) {
	data := mainData{Year: window.Year}
	var featured []models.ReportSection

	for i := range sections {
		s := sections[i]
		if s.IsEmpty() {
			continue
		}
		switch s.Kind {
		case models.SectionLeaderboard:
			data.Leaderboards = append(data.Leaderboards, s)
		case models.SectionVisits:
			data.Visits = s.Visits
		case models.SectionFeaturedContent:
			featured = append(featured, s)
		case models.SectionBadgeSpotlight:
			data.Badge = s.Badge
		default:
			return nil, fmt.Errorf("unknown section kind %q", s.Kind)
		}
	}
	data.HasReplies = len(featured) > 0

	body, err := execute(r.main, data)
	if err != nil {
		return nil, err
	}

	replies := make([]string, 0, len(featured))
	for i := range featured {
		reply, err := execute(r.category, featured[i])
		if err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}

	return &models.ReviewDocument{
		Year:     window.Year,
		Title:    r.cfg.Title(window.Year),
		Body:     body,
		Category: r.cfg.PublishCategory,
		Author:   models.Author{ID: r.cfg.AuthorID, Username: r.cfg.AuthorUsername},
		Replies:  replies,
	}, nil
}

func execute(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}
