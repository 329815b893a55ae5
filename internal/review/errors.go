// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package review

import "errors"

// Sentinel errors for review runs. Skip, conflict and empty are reported as
// outcomes with a nil error; Result.Err maps them back to these values.
var (
	// ErrSkipNotEligible means the run was not eligible (disabled, out of
	// season or already published).
	ErrSkipNotEligible = errors.New("review run not eligible")

	// ErrInvalidReviewYear rejects an explicit year outside 1970..current
	// year. It is a caller error, not a skip.
	ErrInvalidReviewYear = errors.New("invalid review year")

	// ErrDataUnavailable wraps any activity or record store read failure.
	ErrDataUnavailable = errors.New("activity data unavailable")

	// ErrEmptyReport means every section was empty so nothing was published.
	ErrEmptyReport = errors.New("review report is empty")

	// ErrPublicationConflict means another run published the year first.
	ErrPublicationConflict = errors.New("review already published for year")

	// ErrPublishFailed wraps a publisher failure. No record is written.
	ErrPublishFailed = errors.New("review publication failed")
)
