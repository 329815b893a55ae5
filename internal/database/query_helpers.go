// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/yearlyreview/internal/metrics"
)

// scanFunc scans a single row into T.
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function.
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// timedQuery runs queryAndScan under the default timeout and records its
// duration under name.
func timedQuery[T any](ctx context.Context, db *DB, name, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	results, err := queryAndScan(ctx, db.conn, query, args, scan)
	metrics.RecordDBQuery(name, time.Since(start), err)
	return results, err
}
