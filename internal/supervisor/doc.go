// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

/*
Package supervisor runs the long-lived parts of yearlyreview under suture v4.

In service mode the tree looks like this:

	RootSupervisor ("yearlyreview")
	├── JobsSupervisor ("jobs-layer")
	│   └── ReviewSchedulerService
	└── OpsSupervisor ("ops-layer")
	    └── HTTPServerService (/health, /metrics)

A scheduler crash is restarted with backoff without taking the ops server
down, so health probes and metrics stay available while the job recovers.

Supervisor events are logged through sutureslog using the zerolog-backed
slog adapter from internal/logging.
*/
package supervisor
