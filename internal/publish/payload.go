// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package publish

import (
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/yearlyreview/internal/models"
)

// reviewNamespace scopes the name-based message UUIDs.
var reviewNamespace = uuid.MustParse("8b0f5f5e-6a43-4c1f-9d3e-2f3c1a7b9e21")

// Payload is the wire form of a review document.
type Payload struct {
	Title        string            `json:"title"`
	Raw          string            `json:"raw"`
	Category     string            `json:"category,omitempty"`
	Author       models.Author     `json:"author"`
	CustomFields map[string]string `json:"custom_fields"`
	Replies      []string          `json:"replies,omitempty"`
}

func newPayload(doc *models.ReviewDocument) Payload {
	return Payload{
		Title:        doc.Title,
		Raw:          doc.Body,
		Category:     doc.Category,
		Author:       doc.Author,
		CustomFields: doc.CustomFields(),
		Replies:      doc.Replies,
	}
}

func encodePayload(doc *models.ReviewDocument) ([]byte, error) {
	return json.Marshal(newPayload(doc))
}

// MessageID returns the stable message ID for year. Every publish attempt for
// the same year carries the same ID.
func MessageID(doc *models.ReviewDocument) string {
	return uuid.NewSHA1(reviewNamespace, []byte(doc.IdempotencyKey())).String()
}
