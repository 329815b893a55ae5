// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package database

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/tomtom215/yearlyreview/internal/models"
)

var (
	window2025 = models.NewReviewWindow(2025, time.UTC)
	inWindow   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastYear   = time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	nextYear   = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
)

func defaultFilters() models.ActivityFilters {
	return models.ActivityFilters{
		ExcludeStaff:      true,
		ExcludeRestricted: true,
		MemberFloor:       1,
	}
}

// valuesByUser maps username to value for order-independent assertions.
func valuesByUser(rows []models.MetricRow) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.User.Username] = r.Value
	}
	return out
}

func TestMetricCandidates_TopicsCreated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice")
	seedUser(t, db, 2, "bob")
	seedUser(t, db, -1, "system")
	seedStaff(t, db, 3, "admin")
	seedCategory(t, db, 10, "general", false, 100)
	seedCategory(t, db, 11, "staff-lounge", true, 50)

	// alice: 5 in window, 1 the year before, 1 deleted
	for i := int64(0); i < 5; i++ {
		seedTopic(t, db, 100+i, 1, 10, inWindow)
	}
	seedTopic(t, db, 110, 1, 10, lastYear)
	seedTopic(t, db, 111, 1, 10, inWindow)
	mustExec(t, db, `UPDATE topics SET deleted_at = ? WHERE id = 111`, inWindow)

	// bob: 1 in window, 1 in a restricted category, 1 the year after
	seedTopic(t, db, 200, 2, 10, inWindow)
	seedTopic(t, db, 201, 2, 11, inWindow)
	seedTopic(t, db, 202, 2, 10, nextYear)

	// excluded members
	seedTopic(t, db, 300, -1, 10, inWindow)
	seedTopic(t, db, 301, 3, 10, inWindow)

	rows, err := db.MetricCandidates(ctx, models.MetricTopicsCreated, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("MetricCandidates() error = %v", err)
	}

	got := valuesByUser(rows)
	want := map[string]float64{"alice": 5, "bob": 1}
	if len(got) != len(want) {
		t.Fatalf("MetricCandidates() = %v, want %v", got, want)
	}
	for user, v := range want {
		if got[user] != v {
			t.Errorf("%s = %v, want %v", user, got[user], v)
		}
	}

	t.Run("staff and private included when filters are off", func(t *testing.T) {
		rows, err := db.MetricCandidates(ctx, models.MetricTopicsCreated, window2025, models.ActivityFilters{MemberFloor: 1})
		if err != nil {
			t.Fatalf("MetricCandidates() error = %v", err)
		}
		got := valuesByUser(rows)
		if got["bob"] != 2 {
			t.Errorf("bob = %v, want 2", got["bob"])
		}
		if got["admin"] != 1 {
			t.Errorf("admin = %v, want 1", got["admin"])
		}
		if _, ok := got["system"]; ok {
			t.Error("system user should stay below the member floor")
		}
	})
}

func TestMetricCandidates_Likes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice")
	seedUser(t, db, 2, "bob")
	seedCategory(t, db, 10, "general", false, 0)
	seedTopic(t, db, 100, 1, 10, inWindow)

	// bob likes alice three times
	for i := 0; i < 3; i++ {
		mustExec(t, db, `INSERT INTO user_actions (action_type, user_id, acting_user_id, target_topic_id, created_at) VALUES (?, ?, ?, ?, ?)`,
			userActionLike, 1, 2, 100, inWindow)
	}
	// another action type is ignored
	mustExec(t, db, `INSERT INTO user_actions (action_type, user_id, acting_user_id, target_topic_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		5, 1, 2, 100, inWindow)

	given, err := db.MetricCandidates(ctx, models.MetricLikesGiven, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("likes_given error = %v", err)
	}
	if got := valuesByUser(given); len(got) != 1 || got["bob"] != 3 {
		t.Errorf("likes_given = %v, want bob:3", got)
	}

	received, err := db.MetricCandidates(ctx, models.MetricLikesReceived, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("likes_received error = %v", err)
	}
	if got := valuesByUser(received); len(got) != 1 || got["alice"] != 3 {
		t.Errorf("likes_received = %v, want alice:3", got)
	}
}

func TestMetricCandidates_TimeReadAndVisits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice")
	seedUser(t, db, 2, "bob")
	seedCategory(t, db, 10, "general", false, 0)
	seedTopic(t, db, 100, 1, 10, inWindow)
	seedTopic(t, db, 101, 1, 10, inWindow)

	mustExec(t, db, `INSERT INTO topic_users (user_id, topic_id, total_msecs_viewed) VALUES (1, 100, 3600000), (1, 101, 1800000), (2, 100, 30000)`)

	read, err := db.MetricCandidates(ctx, models.MetricTimeRead, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("time_read error = %v", err)
	}
	got := valuesByUser(read)
	if got["alice"] != 5400000 {
		t.Errorf("alice time_read = %v, want 5400000 ms", got["alice"])
	}
	if _, ok := got["bob"]; ok {
		t.Error("bob read under a minute and should not appear")
	}

	mustExec(t, db, `INSERT INTO user_visits (user_id, visited_at) VALUES
		(1, DATE '2025-01-01'), (1, DATE '2025-12-31'), (1, DATE '2024-12-31'),
		(2, DATE '2025-03-03')`)

	visits, err := db.MetricCandidates(ctx, models.MetricVisits, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("visits error = %v", err)
	}
	if got := valuesByUser(visits); got["alice"] != 2 || got["bob"] != 1 {
		t.Errorf("visits = %v, want alice:2 bob:1", got)
	}

	buckets, err := db.VisitDistribution(ctx, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("VisitDistribution() error = %v", err)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Days > buckets[j].Days })
	want := []models.VisitBucket{{Days: 2, Users: 1}, {Days: 1, Users: 1}}
	if len(buckets) != len(want) {
		t.Fatalf("VisitDistribution() = %v, want %v", buckets, want)
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Errorf("bucket[%d] = %v, want %v", i, buckets[i], want[i])
		}
	}
}

func TestMetricCandidates_StaffAndRestrictedFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice")
	seedUser(t, db, 2, "bob")
	seedStaff(t, db, 3, "admin")
	seedCategory(t, db, 10, "general", false, 0)
	seedCategory(t, db, 11, "staff-lounge", true, 0)

	seedTopic(t, db, 100, 1, 10, inWindow)
	seedTopic(t, db, 101, 1, 11, inWindow)
	seedTopic(t, db, 102, 3, 10, inWindow)

	// opening posts with replies, one per category plus one by staff
	seedPost(t, db, 1000, 100, 1, 1, inWindow)
	seedPost(t, db, 1001, 101, 1, 1, inWindow)
	seedPost(t, db, 1002, 102, 3, 1, inWindow)
	mustExec(t, db, `UPDATE posts SET reply_count = 2 WHERE id = 1000`)
	mustExec(t, db, `UPDATE posts SET reply_count = 4 WHERE id = 1001`)
	mustExec(t, db, `UPDATE posts SET reply_count = 3 WHERE id = 1002`)

	// replies: bob in public and restricted, admin in public
	seedPost(t, db, 1010, 100, 2, 2, inWindow)
	seedPost(t, db, 1011, 101, 2, 2, inWindow)
	seedPost(t, db, 1012, 100, 3, 2, inWindow)

	for _, like := range []struct{ receiver, actor, topic int64 }{
		{1, 2, 100}, // bob likes alice
		{1, 2, 101}, // same, restricted
		{1, 3, 100}, // admin likes alice
		{3, 2, 102}, // bob likes admin
	} {
		mustExec(t, db, `INSERT INTO user_actions (action_type, user_id, acting_user_id, target_topic_id, created_at) VALUES (?, ?, ?, ?, ?)`,
			userActionLike, like.receiver, like.actor, like.topic, inWindow)
	}

	mustExec(t, db, `INSERT INTO topic_users (user_id, topic_id, total_msecs_viewed) VALUES (2, 100, 120000), (2, 101, 120000), (3, 100, 120000)`)

	tests := []struct {
		metric       models.MetricKey
		wantFiltered map[string]float64
		wantAll      map[string]float64
	}{
		{models.MetricRepliesCreated, map[string]float64{"bob": 1}, map[string]float64{"bob": 2, "admin": 1}},
		{models.MetricLikesGiven, map[string]float64{"bob": 2}, map[string]float64{"bob": 3, "admin": 1}},
		{models.MetricLikesReceived, map[string]float64{"alice": 2}, map[string]float64{"alice": 3, "admin": 1}},
		{models.MetricTimeRead, map[string]float64{"bob": 120000}, map[string]float64{"bob": 240000, "admin": 120000}},
		{models.MetricMostRepliedTo, map[string]float64{"alice": 2}, map[string]float64{"alice": 6, "admin": 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			for _, run := range []struct {
				name    string
				filters models.ActivityFilters
				want    map[string]float64
			}{
				{"filtered", defaultFilters(), tt.wantFiltered},
				{"unfiltered", models.ActivityFilters{MemberFloor: 1}, tt.wantAll},
			} {
				rows, err := db.MetricCandidates(ctx, tt.metric, window2025, run.filters)
				if err != nil {
					t.Fatalf("%s: MetricCandidates() error = %v", run.name, err)
				}
				got := valuesByUser(rows)
				if len(got) != len(run.want) {
					t.Errorf("%s: MetricCandidates() = %v, want %v", run.name, got, run.want)
					continue
				}
				for user, v := range run.want {
					if got[user] != v {
						t.Errorf("%s: %s = %v, want %v", run.name, user, got[user], v)
					}
				}
			}
		})
	}
}

func TestMetricCandidates_UnknownMetric(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.MetricCandidates(context.Background(), "posts_read", window2025, defaultFilters()); err == nil {
		t.Error("MetricCandidates(unknown) error = nil, want error")
	}
}

func TestContentCandidates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice")
	seedUser(t, db, 2, "bob")
	seedCategory(t, db, 10, "general", false, 0)
	seedCategory(t, db, 11, "other", false, 0)

	seedTopic(t, db, 100, 1, 10, inWindow)
	seedTopic(t, db, 101, 2, 10, inWindow)
	seedTopic(t, db, 102, 2, 11, inWindow)
	seedPost(t, db, 1000, 100, 1, 1, inWindow)
	seedPost(t, db, 1010, 101, 2, 1, inWindow)
	seedPost(t, db, 1020, 102, 2, 1, inWindow)

	like := func(postID, userID int64) {
		mustExec(t, db, `INSERT INTO post_actions (post_id, user_id, post_action_type_id, created_at) VALUES (?, ?, ?, ?)`,
			postID, userID, postActionLike, inWindow)
	}
	for i := int64(0); i < 11; i++ {
		like(1000, 50+i)
	}
	for i := int64(0); i < 9; i++ {
		like(1010, 50+i)
	}
	like(1020, 50)

	rows, err := db.ContentCandidates(ctx, models.CriterionMostLiked, 10, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("ContentCandidates() error = %v", err)
	}
	got := make(map[int64]float64)
	for _, r := range rows {
		got[r.TopicID] = r.Value
		if r.TopicID == 100 && r.Author.Username != "alice" {
			t.Errorf("topic 100 author = %q, want alice", r.Author.Username)
		}
	}
	if len(got) != 2 || got[100] != 11 || got[101] != 9 {
		t.Errorf("most_liked = %v, want 100:11 101:9", got)
	}

	mustExec(t, db, `INSERT INTO bookmarks (user_id, post_id, created_at) VALUES (2, 1000, ?), (1, 1000, ?)`, inWindow, inWindow)
	bookmarked, err := db.ContentCandidates(ctx, models.CriterionMostBookmarked, 10, window2025, defaultFilters())
	if err != nil {
		t.Fatalf("most_bookmarked error = %v", err)
	}
	if len(bookmarked) != 1 || bookmarked[0].Value != 2 {
		t.Errorf("most_bookmarked = %+v, want topic 100 with 2", bookmarked)
	}
}

func TestCategories(t *testing.T) {
	db := setupTestDB(t)

	seedCategory(t, db, 10, "general", false, 40)
	mustExec(t, db, `INSERT INTO categories (id, name, slug, parent_category_id, read_restricted, topics_year) VALUES (11, 'Help', 'help', 10, false, 7)`)

	seedCategory(t, db, 12, "staff", true, 90)

	cats, err := db.Categories(context.Background(), nil)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("len(Categories()) = %d, want 3", len(cats))
	}
	for _, c := range cats {
		if c.ID == 11 && c.ParentSlug != "general" {
			t.Errorf("help ParentSlug = %q, want general", c.ParentSlug)
		}
		if c.ID == 10 && (c.ParentSlug != "" || c.TopicsYear != 40) {
			t.Errorf("general = %+v", c)
		}
		if c.ID == 12 && !c.ReadRestricted {
			t.Errorf("staff ReadRestricted = false, want true")
		}
	}

	listed, err := db.Categories(context.Background(), []int64{11, 12, 99})
	if err != nil {
		t.Fatalf("Categories(allow-list) error = %v", err)
	}
	got := map[int64]bool{}
	for _, c := range listed {
		got[c.ID] = true
	}
	if len(listed) != 2 || !got[11] || !got[12] {
		t.Errorf("Categories(11, 12, 99) = %+v, want categories 11 and 12", listed)
	}
}

func TestBadgeGrants(t *testing.T) {
	db := setupTestDB(t)

	seedUser(t, db, 1, "alice")
	seedUser(t, db, 2, "bob")
	mustExec(t, db, `INSERT INTO badges (id, name) VALUES (7, 'Great Topic'), (8, 'Welcome')`)
	mustExec(t, db, `INSERT INTO user_badges (badge_id, user_id, granted_at) VALUES
		(7, 1, ?), (7, 1, ?), (7, 2, ?), (8, 2, ?), (7, 2, ?)`,
		inWindow, inWindow, inWindow, inWindow, lastYear)

	grants, err := db.BadgeGrants(context.Background(), "Great Topic", window2025, defaultFilters())
	if err != nil {
		t.Fatalf("BadgeGrants() error = %v", err)
	}
	if len(grants) != 3 {
		t.Fatalf("len(BadgeGrants()) = %d, want 3 (duplicates are kept for the selector)", len(grants))
	}
	for _, g := range grants {
		if g.BadgeID != 7 || g.BadgeName != "Great Topic" {
			t.Errorf("grant = %+v, want badge 7", g)
		}
	}
}
