// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

//go:build !nats

package publish

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/yearlyreview/internal/config"
)

// NewNATSTransport returns an error when NATS support is not compiled in.
// Build with -tags=nats to enable it.
func NewNATSTransport(_ config.NATSConfig, _ *zerolog.Logger) (message.Publisher, error) {
	return nil, fmt.Errorf("NATS publisher not available: build with -tags=nats")
}
