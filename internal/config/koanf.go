// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/yearlyreview/config.yaml",
	"/etc/yearlyreview/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied before file and env layers.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/community.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			QueryTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Enabled:         true,
			Addr:            ":9464",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Review: ReviewConfig{
			Enabled:                  false,
			SeasonDays:               7,
			Timezone:                 "UTC",
			IncludePrivateCategories: false,
			ExcludeStaff:             true,
			IncludeUserStats:         true,
			IncludeVisitDistribution: true,
			MaxUsers:                 10,
			MaxBadgeUsers:            15,
			MaxCategories:            5,
			TopicsPerCriterion:       5,
			MaxVisitBuckets:          10,
			Thresholds: ThresholdConfig{
				ReadHours:    5,
				Likes:        10,
				Replies:      10,
				PopularScore: 10,
				Bookmarks:    5,
			},
			AuthorID:         -4,
			AuthorUsername:   "reviewbot",
			TitleFormat:      "%d: The Year in Review",
			QueryParallelism: 4,
			SentinelFloor:    1,
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			CheckInterval: 24 * time.Hour,
			RunTimeout:    10 * time.Minute,
		},
		Publisher: PublisherConfig{
			Mode: "store",
			Webhook: WebhookConfig{
				Timeout:    30 * time.Second,
				MaxRetries: 3,
				BaseDelay:  time.Second,
				MaxDelay:   30 * time.Second,
				// Forum APIs commonly allow about one write per second.
				RequestsPerSecond: 1,
			},
			NATS: NATSConfig{
				URL:     "nats://127.0.0.1:4222",
				Subject: "yearly_review_published",
			},
		},
	}
}

// Load loads configuration using the layered approach:
//
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// YEARLY_REVIEW_MAX_USERS -> review.max_users
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma or pipe separated env strings.
var sliceConfigPaths = []string{
	"review.categories",
}

// processSliceFields splits string values of known slice fields.
// Env vars arrive as strings; YAML lists are left as they are.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.FieldsFunc(strVal, func(r rune) bool { return r == ',' || r == '|' })
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"duckdb_query_timeout": "database.query_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"ops_server_enabled": "server.enabled",
	"ops_server_addr":    "server.addr",

	"yearly_review_enabled":                    "review.enabled",
	"yearly_review_season_days":                "review.season_days",
	"yearly_review_timezone":                   "review.timezone",
	"yearly_review_publish_category":           "review.publish_category",
	"yearly_review_categories":                 "review.categories",
	"yearly_review_include_private_categories": "review.include_private_categories",
	"yearly_review_exclude_staff":              "review.exclude_staff",
	"yearly_review_featured_badge":             "review.featured_badge",
	"yearly_review_include_user_stats":         "review.include_user_stats",
	"yearly_review_include_visit_distribution": "review.include_visit_distribution",
	"yearly_review_max_users":                  "review.max_users",
	"yearly_review_max_badge_users":            "review.max_badge_users",
	"yearly_review_max_categories":             "review.max_categories",
	"yearly_review_topics_per_criterion":       "review.topics_per_criterion",
	"yearly_review_author_id":                  "review.author_id",
	"yearly_review_author_username":            "review.author_username",
	"yearly_review_base_url":                   "review.base_url",
	"yearly_review_title_format":               "review.title_format",
	"yearly_review_query_parallelism":          "review.query_parallelism",

	"yearly_review_threshold_read_hours":    "review.thresholds.read_hours",
	"yearly_review_threshold_likes":         "review.thresholds.likes",
	"yearly_review_threshold_replies":       "review.thresholds.replies",
	"yearly_review_threshold_popular_score": "review.thresholds.popular_score",
	"yearly_review_threshold_bookmarks":     "review.thresholds.bookmarks",

	"scheduler_enabled":        "scheduler.enabled",
	"scheduler_check_interval": "scheduler.check_interval",
	"scheduler_run_timeout":    "scheduler.run_timeout",

	"publisher_mode":                "publisher.mode",
	"publisher_webhook_url":         "publisher.webhook.url",
	"publisher_webhook_token":       "publisher.webhook.token",
	"publisher_webhook_timeout":     "publisher.webhook.timeout",
	"publisher_webhook_max_retries": "publisher.webhook.max_retries",
	"publisher_webhook_rps":         "publisher.webhook.requests_per_second",
	"nats_url":                      "publisher.nats.url",
	"nats_subject":                  "publisher.nats.subject",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
