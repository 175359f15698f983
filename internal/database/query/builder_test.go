// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package query

import (
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}
	if wb.Count() != 0 {
		t.Errorf("Expected count 0, got %d", wb.Count())
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_AddIn(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("member_id", []int64{3, 5, 8})

	whereClause, args := wb.Build()
	expected := "member_id IN (?, ?, ?)"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 3 || args[0] != int64(3) || args[2] != int64(8) {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestWhereBuilder_AddInEmptyMatchesNothing(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("member_id", nil)

	whereClause, args := wb.Build()
	if whereClause != "1=0" {
		t.Errorf("Expected '1=0', got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_GenericAddIn(t *testing.T) {
	wb := NewWhereBuilder()
	AddIn(wb, "recruit_status", []string{"RECRUITING", "ON_CONTACT"})

	whereClause, args := wb.Build()
	if whereClause != "recruit_status IN (?, ?)" {
		t.Errorf("Unexpected clause %q", whereClause)
	}
	if len(args) != 2 || args[1] != "ON_CONTACT" {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestWhereBuilder_Chaining(t *testing.T) {
	wb := NewWhereBuilder().
		AddIn("recruit_post_id", []int64{1}).
		AddClause("recruit_status = ?", "RECRUITING")

	whereClause, args := wb.BuildWithPrefix()
	expected := "WHERE recruit_post_id IN (?) AND recruit_status = ?"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
	if wb.Count() != 2 || wb.IsEmpty() {
		t.Errorf("Count = %d, IsEmpty = %v", wb.Count(), wb.IsEmpty())
	}
}
