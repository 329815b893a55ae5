// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Build() = %q, want 1=1", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("len(args) = %d, want 0", len(args))
	}
}

func TestWhereBuilder_AddBetween(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	whereClause, args := NewWhereBuilder().AddBetween("t.created_at", start, end).Build()

	if want := "t.created_at BETWEEN ? AND ?"; whereClause != want {
		t.Errorf("Build() = %q, want %q", whereClause, want)
	}
	if len(args) != 2 || args[0] != start || args[1] != end {
		t.Errorf("args = %v, want [%v %v]", args, start, end)
	}
}

func TestWhereBuilder_TogglesWholePredicates(t *testing.T) {
	tests := []struct {
		name         string
		excludeStaff bool
		excludeRestr bool
		want         string
	}{
		{"both off", false, false, "u.id >= ?"},
		{"staff only", true, false, "u.id >= ? AND (u.admin = false AND u.moderator = false)"},
		{"restricted only", false, true, "u.id >= ? AND c.read_restricted = false"},
		{"both on", true, true, "u.id >= ? AND (u.admin = false AND u.moderator = false) AND c.read_restricted = false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder().
				AddMemberFloor("u.id", 1).
				AddExcludeStaff(tt.excludeStaff, "u").
				AddExcludeRestricted(tt.excludeRestr, "c")

			got, args := wb.Build()
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
			if len(args) != 1 || args[0] != int64(1) {
				t.Errorf("args = %v, want [1]", args)
			}
		})
	}
}

func TestWhereBuilder_AddNotDeleted(t *testing.T) {
	got, _ := NewWhereBuilder().AddNotDeleted("t", "p").Build()

	if want := "t.deleted_at IS NULL AND p.deleted_at IS NULL"; got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestWhereBuilder_AddInt64In(t *testing.T) {
	wb := NewWhereBuilder().AddInt64In("c.id", nil)
	if !wb.IsEmpty() {
		t.Error("empty IN list should not add a clause")
	}

	wb.AddInt64In("c.id", []int64{3, 5, 8})
	got, args := wb.BuildWithPrefix()

	if want := "WHERE c.id IN (?, ?, ?)"; got != want {
		t.Errorf("BuildWithPrefix() = %q, want %q", got, want)
	}
	if len(args) != 3 || args[0] != int64(3) || args[2] != int64(8) {
		t.Errorf("args = %v, want [3 5 8]", args)
	}
}
