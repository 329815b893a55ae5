// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/database"
	"github.com/tomtom215/yearlyreview/internal/metrics"
	"github.com/tomtom215/yearlyreview/internal/models"
)

const (
	webhookBreakerName = "publish-webhook"
	maxResponseBytes   = 4096
)

// IdempotencyHeader carries the per-year key on webhook requests.
const IdempotencyHeader = "Idempotency-Key"

// StatusError is a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.Code, e.Body)
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// WebhookPublisher posts review documents to the forum API.
type WebhookPublisher struct {
	client  *http.Client
	cfg     config.WebhookConfig
	records Recorder
	cb      *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	logger  zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewWebhookPublisher creates a webhook publisher that records successful
// publications in records.
func NewWebhookPublisher(cfg config.WebhookConfig, records Recorder, logger *zerolog.Logger) *WebhookPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	metrics.CircuitBreakerState.WithLabelValues(webhookBreakerName).Set(0)

	log := logger.With().Str("component", "webhook-publisher").Logger()
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        webhookBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
	})

	return &WebhookPublisher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		records: records,
		cb:      cb,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
		sleep:   sleepContext,
	}
}

func (p *WebhookPublisher) Name() string { return NameWebhook }

// Publish posts doc, retrying transient failures with exponential backoff.
// A 409 from the forum means the year is already published; the local record
// is written anyway and database.ErrPublicationExists is returned.
func (p *WebhookPublisher) Publish(ctx context.Context, doc *models.ReviewDocument) (models.PublicationRecord, error) {
	body, err := encodePayload(doc)
	if err != nil {
		return models.PublicationRecord{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	var (
		id      string
		lastErr error
	)
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt, p.cfg.BaseDelay, p.cfg.MaxDelay)
			p.logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying webhook publish")
			if err := p.sleep(ctx, delay); err != nil {
				return models.PublicationRecord{}, err
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return models.PublicationRecord{}, fmt.Errorf("webhook rate limiter: %w", err)
		}
		id, lastErr = p.cb.Execute(func() (string, error) {
			return p.send(ctx, body, doc.IdempotencyKey())
		})
		if lastErr == nil || !retryable(lastErr) {
			break
		}
	}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) && statusErr.Code == http.StatusConflict {
		// A previous run posted but never recorded. Record it now so later
		// runs stop at the publication check.
		rec := models.PublicationRecord{
			Year:       doc.Year,
			DocumentID: documentID([]byte(statusErr.Body)),
			Publisher:  NameWebhook,
		}
		if err := recordLocally(ctx, p.records, rec, p.logger); err != nil {
			return models.PublicationRecord{}, err
		}
		return models.PublicationRecord{}, fmt.Errorf("year %d: %w", doc.Year, database.ErrPublicationExists)
	}
	if lastErr != nil {
		return models.PublicationRecord{}, lastErr
	}

	rec := models.PublicationRecord{
		Year:        doc.Year,
		DocumentID:  id,
		Publisher:   NameWebhook,
		PublishedAt: time.Now().UTC(),
	}
	if err := recordLocally(ctx, p.records, rec, p.logger); err != nil {
		return rec, err
	}
	return rec, nil
}

// send performs one POST and returns the remote document ID.
func (p *WebhookPublisher) send(ctx context.Context, body []byte, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "YearlyReview/1.0")
	req.Header.Set(IdempotencyHeader, key)
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		respBody = []byte("(failed to read response)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	return documentID(respBody), nil
}

// documentID extracts "id" (or "topic_id") from a response body. Numbers and
// strings are both accepted. An unparseable body yields an empty ID.
func documentID(body []byte) string {
	var resp struct {
		ID      interface{} `json:"id"`
		TopicID interface{} `json:"topic_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	for _, v := range []interface{}{resp.ID, resp.TopicID} {
		switch id := v.(type) {
		case string:
			if id != "" {
				return id
			}
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return ""
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}

// backoff returns base * 2^(attempt-1), capped at maxDelay.
func backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
