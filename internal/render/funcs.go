// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package render

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"text/template"

	"github.com/tomtom215/yearlyreview/internal/models"
)

// avatarSize is the pixel size requested from the avatar service. Images are
// displayed at half size.
const avatarSize = 50

var metricTitles = map[models.MetricKey]string{
	models.MetricTimeRead:       "Most Time Spent Reading",
	models.MetricTopicsCreated:  "Most Topics Created",
	models.MetricRepliesCreated: "Most Replies",
	models.MetricMostRepliedTo:  "Most Replied To",
	models.MetricLikesGiven:     "Most Likes Given",
	models.MetricLikesReceived:  "Most Likes Received",
	models.MetricVisits:         "Most Days Visited",
}

var metricUnits = map[models.MetricKey]string{
	models.MetricTimeRead:       "Hours",
	models.MetricTopicsCreated:  "Topics",
	models.MetricRepliesCreated: "Replies",
	models.MetricMostRepliedTo:  "Replies Received",
	models.MetricLikesGiven:     "Likes",
	models.MetricLikesReceived:  "Likes",
	models.MetricVisits:         "Days",
}

var criterionTitles = map[models.ContentCriterion]string{
	models.CriterionMostRead:       "Most Read",
	models.CriterionMostLiked:      "Most Liked",
	models.CriterionMostRepliedTo:  "Most Replied To",
	models.CriterionMostPopular:    "Most Popular",
	models.CriterionMostBookmarked: "Most Bookmarked",
}

var criterionUnits = map[models.ContentCriterion]string{
	models.CriterionMostRead:       "hours",
	models.CriterionMostLiked:      "likes",
	models.CriterionMostRepliedTo:  "replies",
	models.CriterionMostPopular:    "score",
	models.CriterionMostBookmarked: "bookmarks",
}

// linker builds absolute forum links from a base URL.
type linker struct {
	base string
	host string
}

func newLinker(baseURL string) linker {
	base := strings.TrimRight(baseURL, "/")
	host := "localhost"
	if u, err := url.Parse(base); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return linker{base: base, host: host}
}

// avatar renders a half-size avatar image for u.
func (l linker) avatar(u models.UserRef) string {
	name := strings.ToLower(u.Username)
	var path string
	if u.UploadedAvatarID > 0 {
		path = fmt.Sprintf("/user_avatar/%s/%s/%d/%d_2.png", l.host, name, avatarSize, u.UploadedAvatarID)
	} else {
		path = fmt.Sprintf("/letter_avatar/%s/%d.png", name, avatarSize)
	}
	return fmt.Sprintf("![avatar\\|25x25](%s%s)", l.base, path)
}

func (l linker) topicLink(e models.FeaturedContentEntry) string {
	return fmt.Sprintf("[%s](%s/t/%s/%d)", escapeLinkText(e.Title), l.base, e.Slug, e.ContentID)
}

func (l linker) categoryURL(c *models.Category) string {
	if c.ParentSlug != "" {
		return fmt.Sprintf("%s/c/%s/%s/l/top", l.base, c.ParentSlug, c.Slug)
	}
	return fmt.Sprintf("%s/c/%s/l/top", l.base, c.Slug)
}

func (l linker) categoryLink(c *models.Category) string {
	return fmt.Sprintf("[Top topics in %s](%s)", escapeLinkText(c.Name), l.categoryURL(c))
}

// badgeLink renders the "and N more" link to the badge page.
func (l linker) badgeLink(b *models.BadgeSpotlight) string {
	return fmt.Sprintf("[and %d more](%s/badges/%d/%s)", b.OverflowCount, l.base, b.BadgeID, slugFromName(b.BadgeName))
}

func userLink(u models.UserRef) string {
	return "@" + u.Username
}

func slugFromName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// escapeLinkText keeps titles from breaking table cells and link syntax.
func escapeLinkText(s string) string {
	return strings.NewReplacer("|", "\\|", "[", "\\[", "]", "\\]").Replace(s)
}

func tableRow(values ...string) string {
	return "|" + strings.Join(values, "|") + "|"
}

// formatNumber renders v with three significant digits, using a "k" suffix
// for thousands: 5 -> "5", 1.5 -> "1.5", 1234 -> "1.23k", 15000 -> "15k".
func formatNumber(v float64) string {
	unit := ""
	if math.Abs(v) >= 1000 {
		v /= 1000
		unit = "k"
	}
	return significant(v, 3) + unit
}

func significant(v float64, digits int) string {
	if v == 0 {
		return "0"
	}
	intDigits := int(math.Floor(math.Log10(math.Abs(v)))) + 1
	decimals := digits - intDigits
	if decimals <= 0 {
		p := math.Pow10(-decimals)
		return strconv.FormatFloat(math.Round(v/p)*p, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func (l linker) funcMap() template.FuncMap {
	return template.FuncMap{
		"avatar":       l.avatar,
		"userLink":     userLink,
		"topicLink":    l.topicLink,
		"categoryLink": l.categoryLink,
		"badgeLink":    l.badgeLink,
		"formatNumber": formatNumber,
		"tableRow":     tableRow,
		"escape":       escapeLinkText,
		"metricTitle": func(k models.MetricKey) string {
			return metricTitles[k]
		},
		"metricUnit": func(k models.MetricKey) string {
			return metricUnits[k]
		},
		"criterionTitle": func(c models.ContentCriterion) string {
			return criterionTitles[c]
		},
		"criterionUnit": func(c models.ContentCriterion) string {
			return criterionUnits[c]
		},
	}
}
