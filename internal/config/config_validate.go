// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/yearlyreview/internal/validation"
)

// Validate checks struct tags first, then the rules that span sections.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validatePublisher(); err != nil {
		return err
	}

	return c.validateReview()
}

func (c *Config) validatePublisher() error {
	switch c.Publisher.Mode {
	case "webhook":
		if c.Publisher.Webhook.URL == "" {
			return fmt.Errorf("publisher.webhook.url is required when publisher.mode is webhook")
		}
		if c.Publisher.Webhook.MaxDelay > 0 && c.Publisher.Webhook.BaseDelay > c.Publisher.Webhook.MaxDelay {
			return fmt.Errorf("publisher.webhook.base_delay (%s) exceeds max_delay (%s)",
				c.Publisher.Webhook.BaseDelay, c.Publisher.Webhook.MaxDelay)
		}
	case "nats":
		if c.Publisher.NATS.URL == "" {
			return fmt.Errorf("publisher.nats.url is required when publisher.mode is nats")
		}
		if strings.TrimSpace(c.Publisher.NATS.Subject) == "" {
			return fmt.Errorf("publisher.nats.subject is required when publisher.mode is nats")
		}
		// The subject doubles as the JetStream stream name.
		if strings.ContainsAny(c.Publisher.NATS.Subject, ".*> ") {
			return fmt.Errorf("publisher.nats.subject %q must not contain '.', '*', '>' or spaces", c.Publisher.NATS.Subject)
		}
	}
	return nil
}

func (c *Config) validateReview() error {
	if strings.Count(c.Review.TitleFormat, "%") != 1 {
		return fmt.Errorf("review.title_format must contain exactly one %%d verb, got %q", c.Review.TitleFormat)
	}

	seen := make(map[int64]struct{}, len(c.Review.Categories))
	for _, id := range c.Review.Categories {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("review.categories lists category %d more than once", id)
		}
		seen[id] = struct{}{}
	}

	if c.Review.SentinelFloor <= c.Review.AuthorID {
		return fmt.Errorf("review.author_id (%d) must be below review.sentinel_floor (%d) so the review author never ranks",
			c.Review.AuthorID, c.Review.SentinelFloor)
	}
	return nil
}
