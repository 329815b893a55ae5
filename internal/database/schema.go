// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package database

import (
	"context"
	"fmt"
	"time"
)

// Activity type constants as stored by the community platform.
const (
	userActionLike        = 2
	postActionLike        = 2
	postTypeRegular       = 1
	topicArchetypeRegular = "regular"
)

// createTables creates the activity and publication tables.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the schema. Activity tables mirror the
// community platform; review_* and publication_records are owned here.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL,
			name TEXT,
			uploaded_avatar_id BIGINT,
			admin BOOLEAN NOT NULL DEFAULT false,
			moderator BOOLEAN NOT NULL DEFAULT false,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			parent_category_id BIGINT,
			read_restricted BOOLEAN NOT NULL DEFAULT false,
			topics_year BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			archetype TEXT NOT NULL DEFAULT 'regular',
			visible BOOLEAN NOT NULL DEFAULT true,
			posts_count INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY,
			topic_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			post_number INTEGER NOT NULL,
			post_type INTEGER NOT NULL DEFAULT 1,
			reply_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		)`,
		// action_type 2 = like; user_id is the liked member, acting_user_id the liker.
		`CREATE TABLE IF NOT EXISTS user_actions (
			action_type INTEGER NOT NULL,
			user_id BIGINT NOT NULL,
			acting_user_id BIGINT NOT NULL,
			target_topic_id BIGINT,
			target_post_id BIGINT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS post_actions (
			post_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			post_action_type_id INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			user_id BIGINT NOT NULL,
			post_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS topic_users (
			user_id BIGINT NOT NULL,
			topic_id BIGINT NOT NULL,
			total_msecs_viewed BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, topic_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_visits (
			user_id BIGINT NOT NULL,
			visited_at DATE NOT NULL,
			PRIMARY KEY (user_id, visited_at)
		)`,
		`CREATE TABLE IF NOT EXISTS top_topics (
			topic_id BIGINT PRIMARY KEY,
			yearly_score DOUBLE NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS badges (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS user_badges (
			badge_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			granted_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS review_documents (
			id TEXT PRIMARY KEY,
			year INTEGER NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			category TEXT,
			author_id BIGINT NOT NULL,
			author_username TEXT NOT NULL,
			custom_fields TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS review_replies (
			document_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			body TEXT NOT NULL,
			PRIMARY KEY (document_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS publication_records (
			year INTEGER PRIMARY KEY,
			document_id TEXT NOT NULL,
			publisher TEXT NOT NULL,
			published_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_category_created ON topics(category_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_topic ON posts(topic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_actions_created ON user_actions(created_at)`,
	}
}
