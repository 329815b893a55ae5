// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package models

// MetricKey identifies a per-user leaderboard.
type MetricKey string

// Metric keys, ranked descending by value.
const (
	MetricTimeRead       MetricKey = "time_read"
	MetricTopicsCreated  MetricKey = "topics_created"
	MetricRepliesCreated MetricKey = "replies_created"
	MetricMostRepliedTo  MetricKey = "most_replied_to"
	MetricLikesGiven     MetricKey = "likes_given"
	MetricLikesReceived  MetricKey = "likes_received"
	MetricVisits         MetricKey = "visits"
)

// AllMetricKeys returns every metric in report order.
func AllMetricKeys() []MetricKey {
	return []MetricKey{
		MetricTimeRead,
		MetricTopicsCreated,
		MetricRepliesCreated,
		MetricMostRepliedTo,
		MetricLikesGiven,
		MetricLikesReceived,
		MetricVisits,
	}
}

// Valid reports whether k is a known metric.
func (k MetricKey) Valid() bool {
	for _, known := range AllMetricKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// UserRef is the identity of a community member as shown in a report.
type UserRef struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Name             string `json:"name,omitempty"`
	UploadedAvatarID int64  `json:"uploaded_avatar_id,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u UserRef) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// MetricRow is an unranked candidate returned by the activity store.
type MetricRow struct {
	User  UserRef
	Value float64
}

// LeaderboardEntry is one ranked row of a metric leaderboard.
type LeaderboardEntry struct {
	User  UserRef `json:"user"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"` // 1-based
}

// VisitBucket counts members who visited on exactly Days distinct days.
type VisitBucket struct {
	Days  int `json:"days"`
	Users int `json:"users"`
}
