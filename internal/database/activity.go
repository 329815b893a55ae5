// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/yearlyreview/internal/database/query"
	"github.com/tomtom215/yearlyreview/internal/models"
)

// aggregateSpec describes one grouped activity query. The member being ranked
// (or the topic author, for content queries) is always aliased u and the
// topic's category c.
type aggregateSpec struct {
	from       string
	value      string
	window     string
	notDeleted []string
	// restricted reports whether the category privacy predicate applies.
	restricted bool
	where      func(wb *query.WhereBuilder, f models.ActivityFilters)
}

const (
	topicJoins = `JOIN topics t ON t.id = p.topic_id
			JOIN categories c ON c.id = t.category_id`
)

var metricSpecs = map[models.MetricKey]aggregateSpec{
	models.MetricTopicsCreated: {
		from: `topics t
			JOIN users u ON u.id = t.user_id
			JOIN categories c ON c.id = t.category_id`,
		value:      "COUNT(*)",
		window:     "t.created_at",
		notDeleted: []string{"t"},
		restricted: true,
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("t.archetype = ?", topicArchetypeRegular)
		},
	},
	models.MetricRepliesCreated: {
		from: `posts p
			` + topicJoins + `
			JOIN users u ON u.id = p.user_id`,
		value:      "COUNT(*)",
		window:     "p.created_at",
		notDeleted: []string{"p", "t"},
		restricted: true,
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("t.archetype = ?", topicArchetypeRegular).
				AddClause("p.post_number > 1").
				AddClause("p.post_type = ?", postTypeRegular)
		},
	},
	models.MetricLikesGiven: {
		from: `user_actions ua
			JOIN topics t ON t.id = ua.target_topic_id
			JOIN categories c ON c.id = t.category_id
			JOIN users u ON u.id = ua.acting_user_id`,
		value:      "COUNT(*)",
		window:     "ua.created_at",
		notDeleted: []string{"t"},
		restricted: true,
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("t.archetype = ?", topicArchetypeRegular).
				AddClause("ua.action_type = ?", userActionLike)
		},
	},
	models.MetricLikesReceived: {
		from: `user_actions ua
			JOIN topics t ON t.id = ua.target_topic_id
			JOIN categories c ON c.id = t.category_id
			JOIN users u ON u.id = ua.user_id`,
		value:      "COUNT(*)",
		window:     "ua.created_at",
		notDeleted: []string{"t"},
		restricted: true,
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("t.archetype = ?", topicArchetypeRegular).
				AddClause("ua.action_type = ?", userActionLike)
		},
	},
	models.MetricVisits: {
		from: `user_visits uv
			JOIN users u ON u.id = uv.user_id`,
		value:  "COUNT(*)",
		window: "CAST(uv.visited_at AS TIMESTAMP)",
	},
	models.MetricTimeRead: {
		from: `topic_users tu
			JOIN topics t ON t.id = tu.topic_id
			JOIN categories c ON c.id = t.category_id
			JOIN users u ON u.id = tu.user_id`,
		value:      "SUM(tu.total_msecs_viewed)",
		window:     "t.created_at",
		notDeleted: []string{"t"},
		restricted: true,
		where: func(wb *query.WhereBuilder, f models.ActivityFilters) {
			minRead := f.MinReadMillis
			if minRead <= 0 {
				minRead = models.DefaultMinReadMillis
			}
			wb.AddClause("t.archetype = ?", topicArchetypeRegular).
				AddClause("tu.total_msecs_viewed > ?", minRead)
		},
	},
	models.MetricMostRepliedTo: {
		from: `posts p
			` + topicJoins + `
			JOIN users u ON u.id = p.user_id`,
		value:      "SUM(p.reply_count)",
		window:     "p.created_at",
		notDeleted: []string{"p", "t"},
		restricted: true,
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("t.archetype = ?", topicArchetypeRegular).
				AddClause("p.reply_count > 0").
				AddClause("p.post_type = ?", postTypeRegular)
		},
	},
}

var contentSpecs = map[models.ContentCriterion]aggregateSpec{
	models.CriterionMostRead: {
		from: `topics t
			JOIN categories c ON c.id = t.category_id
			JOIN users u ON u.id = t.user_id
			JOIN topic_users tu ON tu.topic_id = t.id`,
		value:      "SUM(tu.total_msecs_viewed)",
		window:     "t.created_at",
		notDeleted: []string{"t"},
	},
	models.CriterionMostLiked: {
		from: `post_actions pa
			JOIN posts p ON p.id = pa.post_id
			` + topicJoins + `
			JOIN users u ON u.id = t.user_id`,
		value:      "COUNT(*)",
		window:     "pa.created_at",
		notDeleted: []string{"pa", "p", "t"},
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("pa.post_action_type_id = ?", postActionLike).
				AddClause("p.post_number = 1")
		},
	},
	models.CriterionMostRepliedTo: {
		from: `posts p
			` + topicJoins + `
			JOIN users u ON u.id = t.user_id`,
		value:      "COUNT(*)",
		window:     "p.created_at",
		notDeleted: []string{"p", "t"},
		where: func(wb *query.WhereBuilder, _ models.ActivityFilters) {
			wb.AddClause("p.post_type = ?", postTypeRegular).
				AddClause("p.post_number > 1").
				AddClause("t.posts_count > 1")
		},
	},
	models.CriterionMostPopular: {
		from: `top_topics tt
			JOIN topics t ON t.id = tt.topic_id
			JOIN categories c ON c.id = t.category_id
			JOIN users u ON u.id = t.user_id`,
		value:      "MAX(tt.yearly_score)",
		window:     "t.created_at",
		notDeleted: []string{"t"},
	},
	models.CriterionMostBookmarked: {
		from: `bookmarks b
			JOIN posts p ON p.id = b.post_id
			` + topicJoins + `
			JOIN users u ON u.id = t.user_id`,
		value:      "COUNT(*)",
		window:     "b.created_at",
		notDeleted: []string{"p", "t"},
	},
}

// memberPredicates adds the predicates every activity query shares.
func memberPredicates(wb *query.WhereBuilder, f models.ActivityFilters) {
	floor := f.MemberFloor
	if floor < 1 {
		floor = 1
	}
	wb.AddNotDeleted("u").
		AddMemberFloor("u.id", floor).
		AddExcludeStaff(f.ExcludeStaff, "u")
}

// MetricCandidates returns one unranked row per member with a value for metric
// inside window.
func (db *DB) MetricCandidates(ctx context.Context, metric models.MetricKey, window models.ReviewWindow, filters models.ActivityFilters) ([]models.MetricRow, error) {
	spec, ok := metricSpecs[metric]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	wb := query.NewWhereBuilder().AddBetween(spec.window, window.Start, window.End)
	if spec.where != nil {
		spec.where(wb, filters)
	}
	wb.AddNotDeleted(spec.notDeleted...)
	memberPredicates(wb, filters)
	if spec.restricted {
		wb.AddExcludeRestricted(filters.ExcludeRestricted, "c")
	}
	whereClause, args := wb.Build()

	q := fmt.Sprintf(`
		SELECT
			u.id,
			u.username,
			COALESCE(u.name, ''),
			COALESCE(u.uploaded_avatar_id, 0),
			CAST(%s AS DOUBLE) AS value
		FROM %s
		WHERE %s
		GROUP BY u.id, u.username, u.name, u.uploaded_avatar_id
	`, spec.value, spec.from, whereClause)

	rows, err := timedQuery(ctx, db, "metric_"+string(metric), q, args, func(rows *sql.Rows) (models.MetricRow, error) {
		var r models.MetricRow
		err := rows.Scan(&r.User.ID, &r.User.Username, &r.User.Name, &r.User.UploadedAvatarID, &r.Value)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s candidates: %w", metric, err)
	}
	return rows, nil
}

// ContentCandidates returns one unranked row per topic in categoryID with a
// value for criterion inside window.
func (db *DB) ContentCandidates(ctx context.Context, criterion models.ContentCriterion, categoryID int64, window models.ReviewWindow, filters models.ActivityFilters) ([]models.ContentRow, error) {
	spec, ok := contentSpecs[criterion]
	if !ok {
		return nil, fmt.Errorf("unknown content criterion %q", criterion)
	}

	wb := query.NewWhereBuilder().
		AddClause("c.id = ?", categoryID).
		AddBetween(spec.window, window.Start, window.End).
		AddClause("t.visible = true")
	if spec.where != nil {
		spec.where(wb, filters)
	}
	wb.AddNotDeleted(spec.notDeleted...)
	memberPredicates(wb, filters)
	wb.AddExcludeRestricted(filters.ExcludeRestricted, "c")
	whereClause, args := wb.Build()

	q := fmt.Sprintf(`
		SELECT
			t.id,
			t.title,
			t.slug,
			t.created_at,
			u.id,
			u.username,
			COALESCE(u.name, ''),
			COALESCE(u.uploaded_avatar_id, 0),
			CAST(%s AS DOUBLE) AS value
		FROM %s
		WHERE %s
		GROUP BY t.id, t.title, t.slug, t.created_at, u.id, u.username, u.name, u.uploaded_avatar_id
	`, spec.value, spec.from, whereClause)

	rows, err := timedQuery(ctx, db, "content_"+string(criterion), q, args, func(rows *sql.Rows) (models.ContentRow, error) {
		var r models.ContentRow
		err := rows.Scan(&r.TopicID, &r.Title, &r.Slug, &r.CreatedAt,
			&r.Author.ID, &r.Author.Username, &r.Author.Name, &r.Author.UploadedAvatarID, &r.Value)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s topics for category %d: %w", criterion, categoryID, err)
	}
	return rows, nil
}

// VisitDistribution groups members by the number of days they visited inside
// window. Buckets are unordered.
func (db *DB) VisitDistribution(ctx context.Context, window models.ReviewWindow, filters models.ActivityFilters) ([]models.VisitBucket, error) {
	wb := query.NewWhereBuilder().AddBetween("CAST(uv.visited_at AS TIMESTAMP)", window.Start, window.End)
	memberPredicates(wb, filters)
	whereClause, args := wb.Build()

	q := fmt.Sprintf(`
		WITH visits AS (
			SELECT uv.user_id, COUNT(*) AS days
			FROM user_visits uv
			JOIN users u ON u.id = uv.user_id
			WHERE %s
			GROUP BY uv.user_id
		)
		SELECT days, COUNT(*) AS users
		FROM visits
		GROUP BY days
	`, whereClause)

	buckets, err := timedQuery(ctx, db, "visit_distribution", q, args, func(rows *sql.Rows) (models.VisitBucket, error) {
		var days, users int64
		if err := rows.Scan(&days, &users); err != nil {
			return models.VisitBucket{}, err
		}
		return models.VisitBucket{Days: int(days), Users: int(users)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query visit distribution: %w", err)
	}
	return buckets, nil
}

// Categories returns categories with their parent slug. A non-empty ids list
// limits the result to those categories.
func (db *DB) Categories(ctx context.Context, ids []int64) ([]models.Category, error) {
	whereClause, args := query.NewWhereBuilder().AddInt64In("c.id", ids).BuildWithPrefix()

	q := fmt.Sprintf(`
		SELECT c.id, c.name, c.slug, COALESCE(parent.slug, ''), c.read_restricted, c.topics_year
		FROM categories c
		LEFT JOIN categories parent ON parent.id = c.parent_category_id
		%s
	`, whereClause)

	categories, err := timedQuery(ctx, db, "categories", q, args, func(rows *sql.Rows) (models.Category, error) {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentSlug, &c.ReadRestricted, &c.TopicsYear)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return categories, nil
}

// BadgeGrants returns every grant of the named badge inside window.
func (db *DB) BadgeGrants(ctx context.Context, badgeName string, window models.ReviewWindow, filters models.ActivityFilters) ([]models.BadgeGrantRow, error) {
	wb := query.NewWhereBuilder().
		AddClause("b.name = ?", badgeName).
		AddBetween("ub.granted_at", window.Start, window.End)
	memberPredicates(wb, filters)
	whereClause, args := wb.Build()

	q := fmt.Sprintf(`
		SELECT
			u.id,
			u.username,
			COALESCE(u.name, ''),
			COALESCE(u.uploaded_avatar_id, 0),
			b.id,
			b.name,
			ub.granted_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		JOIN users u ON u.id = ub.user_id
		WHERE %s
	`, whereClause)

	grants, err := timedQuery(ctx, db, "badge_grants", q, args, func(rows *sql.Rows) (models.BadgeGrantRow, error) {
		var g models.BadgeGrantRow
		err := rows.Scan(&g.User.ID, &g.User.Username, &g.User.Name, &g.User.UploadedAvatarID,
			&g.BadgeID, &g.BadgeName, &g.GrantedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query grants of badge %q: %w", badgeName, err)
	}
	return grants, nil
}
