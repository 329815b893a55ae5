// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

/*
Package config loads and validates yearlyreview configuration.

Configuration is layered with koanf:

 1. Defaults: built-in values from defaultConfig()
 2. Config file: optional YAML file (CONFIG_PATH, config.yaml, /etc/yearlyreview/config.yaml)
 3. Environment variables: explicit mappings in envTransformFunc

The review section is the configuration surface consumed by the review engine.
Every value there is validated before the engine sees it, so the engine treats
them as trusted primitives.
*/
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Server    ServerConfig    `koanf:"server"`
	Review    ReviewConfig    `koanf:"review"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Publisher PublisherConfig `koanf:"publisher"`
}

// DatabaseConfig holds DuckDB settings for the activity store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = NumCPU
	// QueryTimeout bounds a single gateway query when the caller set no deadline.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=1s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ServerConfig holds the ops HTTP server settings (/health and /metrics).
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

// ReviewConfig is the configuration surface of the review engine.
type ReviewConfig struct {
	Enabled bool `koanf:"enabled"`

	// SeasonDays is how many days into January an unforced run may publish.
	SeasonDays int    `koanf:"season_days" validate:"min=1,max=31"`
	Timezone   string `koanf:"timezone" validate:"required,timezone"`

	PublishCategory string `koanf:"publish_category"`

	// Categories is an explicit allow-list of category IDs for featured content.
	// Empty means "most active public categories".
	Categories               []int64 `koanf:"categories" validate:"dive,gt=0"`
	IncludePrivateCategories bool    `koanf:"include_private_categories"`
	ExcludeStaff             bool    `koanf:"exclude_staff"`
	FeaturedBadge            string  `koanf:"featured_badge" validate:"max=100"`

	IncludeUserStats         bool `koanf:"include_user_stats"`
	IncludeVisitDistribution bool `koanf:"include_visit_distribution"`

	MaxUsers           int `koanf:"max_users" validate:"min=1,max=100"`
	MaxBadgeUsers      int `koanf:"max_badge_users" validate:"min=1,max=100"`
	MaxCategories      int `koanf:"max_categories" validate:"min=1,max=20"`
	TopicsPerCriterion int `koanf:"topics_per_criterion" validate:"min=1,max=20"`
	MaxVisitBuckets    int `koanf:"max_visit_buckets" validate:"min=1,max=31"`

	Thresholds ThresholdConfig `koanf:"thresholds"`

	AuthorID       int64  `koanf:"author_id"`
	AuthorUsername string `koanf:"author_username" validate:"required"`
	BaseURL        string `koanf:"base_url" validate:"omitempty,url"`
	TitleFormat    string `koanf:"title_format" validate:"required,contains=%d"`

	QueryParallelism int `koanf:"query_parallelism" validate:"min=1,max=16"`
	// SentinelFloor is the lowest user ID that counts as a real member.
	// System and bot accounts live below it.
	SentinelFloor int64 `koanf:"sentinel_floor" validate:"gte=1"`
}

// ThresholdConfig holds the minimum value a featured topic needs per criterion.
type ThresholdConfig struct {
	ReadHours    float64 `koanf:"read_hours" validate:"gte=0"`
	Likes        float64 `koanf:"likes" validate:"gte=0"`
	Replies      float64 `koanf:"replies" validate:"gte=0"`
	PopularScore float64 `koanf:"popular_score" validate:"gte=0"`
	Bookmarks    float64 `koanf:"bookmarks" validate:"gte=0"`
}

// SchedulerConfig holds the recurring trigger settings.
type SchedulerConfig struct {
	Enabled       bool          `koanf:"enabled"`
	CheckInterval time.Duration `koanf:"check_interval" validate:"min=1m"`
	RunTimeout    time.Duration `koanf:"run_timeout" validate:"min=1s"`
}

// PublisherConfig selects where finished reviews are published.
type PublisherConfig struct {
	Mode    string        `koanf:"mode" validate:"oneof=store webhook nats"`
	Webhook WebhookConfig `koanf:"webhook"`
	NATS    NATSConfig    `koanf:"nats"`
}

// WebhookConfig configures the HTTP posting API.
type WebhookConfig struct {
	URL        string        `koanf:"url" validate:"omitempty,url"`
	Token      string        `koanf:"token"`
	Timeout    time.Duration `koanf:"timeout" validate:"min=1s"`
	MaxRetries int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay"`
	// RequestsPerSecond throttles requests to the forum API. 0 = unlimited.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
}

// NATSConfig configures the message bus publisher.
type NATSConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// Location resolves the review time zone.
func (r *ReviewConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid review timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

// Title formats the review title for year.
func (r *ReviewConfig) Title(year int) string {
	return fmt.Sprintf(r.TitleFormat, year)
}
