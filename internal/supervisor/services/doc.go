// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package services adapts long-running components to suture.Service.
//
// Each wrapper translates a component's own lifecycle (Start/Stop, or the
// blocking ListenAndServe of an HTTP server) into Serve(ctx) so the
// supervisor tree can restart it.
package services
