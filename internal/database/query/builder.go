// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package query builds parameterized WHERE clauses for the activity store.
//
// Column and alias names passed to the builder are always compile-time
// constants from the database package. Every value, including review window
// bounds, category IDs and the member ID floor, is bound through a ?
// placeholder.
package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddBetween("t.created_at", start, end)
//	wb.AddMemberFloor("u.id", 1)
//	wb.AddExcludeStaff(true, "u")
//	whereClause, args := wb.Build()
//	// t.created_at BETWEEN ? AND ? AND u.id >= ? AND (u.admin = false AND u.moderator = false)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddBetween restricts column to the inclusive range [start, end].
func (wb *WhereBuilder) AddBetween(column string, start, end time.Time) *WhereBuilder {
	return wb.AddClause(column+" BETWEEN ? AND ?", start, end)
}

// AddNotDeleted excludes soft-deleted rows for each alias.
func (wb *WhereBuilder) AddNotDeleted(aliases ...string) *WhereBuilder {
	for _, alias := range aliases {
		wb.clauses = append(wb.clauses, alias+".deleted_at IS NULL")
	}
	return wb
}

// AddMemberFloor excludes system and bot accounts whose ID is below floor.
func (wb *WhereBuilder) AddMemberFloor(column string, floor int64) *WhereBuilder {
	return wb.AddClause(column+" >= ?", floor)
}

// AddExcludeStaff drops admins and moderators when enabled.
// When disabled no predicate is added at all.
func (wb *WhereBuilder) AddExcludeStaff(enabled bool, userAlias string) *WhereBuilder {
	if !enabled {
		return wb
	}
	return wb.AddClause(fmt.Sprintf("(%[1]s.admin = false AND %[1]s.moderator = false)", userAlias))
}

// AddExcludeRestricted drops privacy-restricted categories when enabled.
func (wb *WhereBuilder) AddExcludeRestricted(enabled bool, categoryAlias string) *WhereBuilder {
	if !enabled {
		return wb
	}
	return wb.AddClause(categoryAlias + ".read_restricted = false")
}

// AddInt64In adds "column IN (?, ...)". An empty list is skipped.
func (wb *WhereBuilder) AddInt64In(column string, values []int64) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// Build joins the clauses with AND. Returns ("1=1", []) if no clauses were added.
//
//	whereClause, args := wb.Build()
//	q := fmt.Sprintf("SELECT ... WHERE %s", whereClause)
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if wb.IsEmpty() {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
