// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package publish delivers rendered review documents.
//
// Three publishers are available:
//   - store: writes the document, its replies and the publication record to
//     DuckDB in one transaction
//   - webhook: POSTs the document to the forum with an idempotency key, with
//     retries and a circuit breaker
//   - nats: publishes a message with a year-derived ID so JetStream
//     deduplicates it (requires -tags=nats)
//
// The remote publishers write the local publication record after success.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/database"
	"github.com/tomtom215/yearlyreview/internal/models"
)

// Publisher names, used as the publisher column and metric label.
const (
	NameStore   = "store"
	NameWebhook = "webhook"
	NameNATS    = "nats"
)

// Publisher delivers a review document.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, doc *models.ReviewDocument) (models.PublicationRecord, error)
}

// Recorder stores the local publication record.
type Recorder interface {
	RecordPublication(ctx context.Context, rec models.PublicationRecord) error
}

// DocumentStore stores a document and its record atomically.
type DocumentStore interface {
	PublishDocument(ctx context.Context, doc *models.ReviewDocument, publisher string) (models.PublicationRecord, error)
}

// New builds the publisher selected by cfg.Mode. The returned close function
// releases transport resources and is never nil.
func New(cfg *config.PublisherConfig, db *database.DB, logger *zerolog.Logger) (Publisher, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Mode {
	case "", NameStore:
		return NewStorePublisher(db), noop, nil
	case NameWebhook:
		return NewWebhookPublisher(cfg.Webhook, db, logger), noop, nil
	case NameNATS:
		transport, err := NewNATSTransport(cfg.NATS, logger)
		if err != nil {
			return nil, noop, err
		}
		return NewMessagePublisher(transport, cfg.NATS.Subject, db, logger), transport.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown publisher mode %q", cfg.Mode)
	}
}

// recordLocally writes rec after a remote publish. A record that already
// exists is not an error: the remote side is idempotent on the year.
func recordLocally(ctx context.Context, records Recorder, rec models.PublicationRecord, logger zerolog.Logger) error {
	if rec.PublishedAt.IsZero() {
		rec.PublishedAt = time.Now().UTC()
	}
	err := records.RecordPublication(ctx, rec)
	if errors.Is(err, database.ErrPublicationExists) {
		logger.Debug().Int("review_year", rec.Year).Msg("Publication record already present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("published %s but failed to record it: %w", rec.DocumentID, err)
	}
	return nil
}

// StorePublisher publishes into the local database.
type StorePublisher struct {
	store DocumentStore
}

// NewStorePublisher creates a store publisher.
func NewStorePublisher(store DocumentStore) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Name() string { return NameStore }

// Publish stores doc and its record in one transaction. A second publish for
// the same year returns database.ErrPublicationExists and writes nothing.
func (p *StorePublisher) Publish(ctx context.Context, doc *models.ReviewDocument) (models.PublicationRecord, error) {
	return p.store.PublishDocument(ctx, doc, NameStore)
}
