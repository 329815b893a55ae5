// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package ops provides the operations HTTP surface: health probes and
// Prometheus metrics. Reviews themselves have no HTTP API.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// healthRequestsPerMinute allows frequent probes while bounding abuse.
const healthRequestsPerMinute = 1000

// Pinger checks database connectivity. Satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string    `json:"status"`
	DatabaseConnected bool      `json:"database_connected"`
	Uptime            float64   `json:"uptime_seconds"`
	Timestamp         time.Time `json:"timestamp"`
}

// Handler serves the ops endpoints.
type Handler struct {
	db        Pinger
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates an ops handler.
func NewHandler(db Pinger, logger *zerolog.Logger) *Handler {
	return &Handler{
		db:        db,
		logger:    logger.With().Str("component", "ops-http").Logger(),
		startTime: time.Now(),
	}
}

// Router returns the chi router for the ops server.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Route("/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRequestsPerMinute, time.Minute))
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Health reports overall status. A database that does not answer a ping
// makes the service degraded but still returns 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.ping(r.Context())
	status := "healthy"
	if !connected {
		status = "degraded"
	}
	h.writeJSON(w, http.StatusOK, HealthStatus{
		Status:            status,
		DatabaseConnected: connected,
		Uptime:            time.Since(h.startTime).Seconds(),
		Timestamp:         time.Now().UTC(),
	})
}

// HealthLive always answers 200 while the process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady answers 503 until the database responds.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.ping(r.Context()) {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) ping(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx) == nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
