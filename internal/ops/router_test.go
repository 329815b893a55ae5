// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/yearlyreview/internal/logging"
	"github.com/tomtom215/yearlyreview/internal/metrics"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name       string
		pinger     Pinger
		path       string
		wantStatus int
		wantBody   string
	}{
		{"live", fakePinger{}, "/health/live", http.StatusOK, `"alive"`},
		{"live with database down", fakePinger{err: down}, "/health/live", http.StatusOK, `"alive"`},
		{"ready", fakePinger{}, "/health/ready", http.StatusOK, `"ready"`},
		{"not ready", fakePinger{err: down}, "/health/ready", http.StatusServiceUnavailable, `"not_ready"`},
		{"not ready without database", nil, "/health/ready", http.StatusServiceUnavailable, `"not_ready"`},
		{"healthy", fakePinger{}, "/health/", http.StatusOK, `"healthy"`},
		{"degraded", fakePinger{err: down}, "/health/", http.StatusOK, `"degraded"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewHandler(tt.pinger, logging.NewNopLogger()), tt.path)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHealth_Body(t *testing.T) {
	rec := serve(t, NewHandler(fakePinger{}, logging.NewNopLogger()), "/health/")

	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !status.DatabaseConnected {
		t.Error("DatabaseConnected = false, want true")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordSchedulerTick("ran")

	rec := serve(t, NewHandler(fakePinger{}, logging.NewNopLogger()), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "yearly_review_scheduler_ticks_total") {
		t.Error("metrics output missing yearly_review_scheduler_ticks_total")
	}
}
