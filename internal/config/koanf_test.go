// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// useConfigFile points CONFIG_PATH at a temp file holding content.
func useConfigFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Review.Enabled {
		t.Error("Review.Enabled should be false by default")
	}
	if cfg.Review.SeasonDays != 7 {
		t.Errorf("Review.SeasonDays = %d, want 7", cfg.Review.SeasonDays)
	}
	if cfg.Review.MaxUsers != 10 {
		t.Errorf("Review.MaxUsers = %d, want 10", cfg.Review.MaxUsers)
	}
	if cfg.Review.MaxBadgeUsers != 15 {
		t.Errorf("Review.MaxBadgeUsers = %d, want 15", cfg.Review.MaxBadgeUsers)
	}
	if cfg.Review.MaxCategories != 5 {
		t.Errorf("Review.MaxCategories = %d, want 5", cfg.Review.MaxCategories)
	}
	if cfg.Review.Thresholds.Likes != 10 || cfg.Review.Thresholds.Bookmarks != 5 || cfg.Review.Thresholds.ReadHours != 5 {
		t.Errorf("Review.Thresholds = %+v, want likes 10, bookmarks 5, read 5", cfg.Review.Thresholds)
	}
	if cfg.Scheduler.CheckInterval != 24*time.Hour {
		t.Errorf("Scheduler.CheckInterval = %v, want 24h", cfg.Scheduler.CheckInterval)
	}
	if cfg.Publisher.Mode != "store" {
		t.Errorf("Publisher.Mode = %q, want store", cfg.Publisher.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"YEARLY_REVIEW_ENABLED", "review.enabled"},
		{"YEARLY_REVIEW_THRESHOLD_LIKES", "review.thresholds.likes"},
		{"DUCKDB_PATH", "database.path"},
		{"PUBLISHER_WEBHOOK_URL", "publisher.webhook.url"},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoad_EnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("YEARLY_REVIEW_ENABLED", "true")
	t.Setenv("YEARLY_REVIEW_SEASON_DAYS", "31")
	t.Setenv("YEARLY_REVIEW_CATEGORIES", "4|9, 12")
	t.Setenv("YEARLY_REVIEW_FEATURED_BADGE", "Great Topic")
	t.Setenv("SCHEDULER_CHECK_INTERVAL", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Review.Enabled {
		t.Error("Review.Enabled = false, want true")
	}
	if cfg.Review.SeasonDays != 31 {
		t.Errorf("Review.SeasonDays = %d, want 31", cfg.Review.SeasonDays)
	}
	if want := []int64{4, 9, 12}; !reflect.DeepEqual(cfg.Review.Categories, want) {
		t.Errorf("Review.Categories = %v, want %v", cfg.Review.Categories, want)
	}
	if cfg.Review.FeaturedBadge != "Great Topic" {
		t.Errorf("Review.FeaturedBadge = %q, want Great Topic", cfg.Review.FeaturedBadge)
	}
	if cfg.Scheduler.CheckInterval != 12*time.Hour {
		t.Errorf("Scheduler.CheckInterval = %v, want 12h", cfg.Scheduler.CheckInterval)
	}
}

func TestLoad_ConfigFileAndEnvOverride(t *testing.T) {
	useConfigFile(t, `
review:
  enabled: true
  max_users: 15
  categories: [3, 5]
  thresholds:
    likes: 20
publisher:
  mode: webhook
  webhook:
    url: "https://forum.example.com/posts.json"
logging:
  level: warn
`)
	t.Setenv("YEARLY_REVIEW_MAX_USERS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Review.MaxUsers != 12 {
		t.Errorf("Review.MaxUsers = %d, want 12 (env overrides file)", cfg.Review.MaxUsers)
	}
	if want := []int64{3, 5}; !reflect.DeepEqual(cfg.Review.Categories, want) {
		t.Errorf("Review.Categories = %v, want %v", cfg.Review.Categories, want)
	}
	if cfg.Review.Thresholds.Likes != 20 {
		t.Errorf("Thresholds.Likes = %v, want 20", cfg.Review.Thresholds.Likes)
	}
	if cfg.Review.Thresholds.Bookmarks != 5 {
		t.Errorf("Thresholds.Bookmarks = %v, want 5 (default)", cfg.Review.Thresholds.Bookmarks)
	}
	if cfg.Publisher.Mode != "webhook" {
		t.Errorf("Publisher.Mode = %q, want webhook", cfg.Publisher.Mode)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "season beyond january",
			content: "review:\n  season_days: 40\n",
			wantErr: "season_days",
		},
		{
			name:    "webhook without url",
			content: "publisher:\n  mode: webhook\n",
			wantErr: "publisher.webhook.url is required",
		},
		{
			name:    "unknown publisher mode",
			content: "publisher:\n  mode: email\n",
			wantErr: "mode must be one of",
		},
		{
			name:    "duplicate category",
			content: "review:\n  categories: [3, 3]\n",
			wantErr: "more than once",
		},
		{
			name:    "author inside member range",
			content: "review:\n  author_id: 7\n",
			wantErr: "sentinel_floor",
		},
		{
			name:    "title without year",
			content: "review:\n  title_format: \"Year in Review\"\n",
			wantErr: "title_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfigFile(t, tt.content)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestReviewConfig_TitleAndLocation(t *testing.T) {
	r := defaultConfig().Review

	if got := r.Title(2025); got != "2025: The Year in Review" {
		t.Errorf("Title(2025) = %q", got)
	}

	r.Timezone = "UTC"
	loc, err := r.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}
