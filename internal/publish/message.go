// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/yearlyreview/internal/models"
)

// Message metadata keys.
const (
	MetadataReviewYear     = "review_year"
	MetadataIdempotencyKey = "idempotency_key"
)

// MessagePublisher publishes review documents on a message bus. The message
// UUID is derived from the review year, so a broker that deduplicates on
// message ID accepts only the first publish per year.
type MessagePublisher struct {
	publisher message.Publisher
	topic     string
	records   Recorder
	logger    zerolog.Logger
}

// NewMessagePublisher creates a message publisher on topic.
func NewMessagePublisher(publisher message.Publisher, topic string, records Recorder, logger *zerolog.Logger) *MessagePublisher {
	return &MessagePublisher{
		publisher: publisher,
		topic:     topic,
		records:   records,
		logger:    logger.With().Str("component", "message-publisher").Str("topic", topic).Logger(),
	}
}

func (p *MessagePublisher) Name() string { return NameNATS }

// Publish sends doc as one message and records the publication.
func (p *MessagePublisher) Publish(ctx context.Context, doc *models.ReviewDocument) (models.PublicationRecord, error) {
	data, err := encodePayload(doc)
	if err != nil {
		return models.PublicationRecord{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	id := MessageID(doc)
	msg := message.NewMessage(id, data)
	msg.Metadata.Set(MetadataReviewYear, strconv.Itoa(doc.Year))
	msg.Metadata.Set(MetadataIdempotencyKey, doc.IdempotencyKey())
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return models.PublicationRecord{}, fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	p.logger.Info().Str("message_id", id).Int("review_year", doc.Year).Msg("Review published to message bus")

	rec := models.PublicationRecord{
		Year:        doc.Year,
		DocumentID:  id,
		Publisher:   NameNATS,
		PublishedAt: time.Now().UTC(),
	}
	if err := recordLocally(ctx, p.records, rec, p.logger); err != nil {
		return rec, err
	}
	return rec, nil
}

// WatermillLogger adapts zerolog to watermill.LoggerAdapter.
type WatermillLogger struct {
	logger zerolog.Logger
}

// NewWatermillLogger wraps logger for watermill components.
func NewWatermillLogger(logger zerolog.Logger) *WatermillLogger {
	return &WatermillLogger{logger: logger}
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{logger: l.logger.With().Fields(map[string]interface{}(fields)).Logger()}
}
