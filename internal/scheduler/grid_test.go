/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import "testing"

func TestGridCellsAreZeroBased(t *testing.T) {
	cells := Grid{Banks: 16, Files: 12, Minutes: 30}.Cells()
	if len(cells) != 192 {
		t.Fatalf("len(cells) = %d, want 192", len(cells))
	}
	if first := cells[0].String(); first != "00/00.wav" {
		t.Fatalf("first cell = %s, want 00/00.wav", first)
	}
	if last := cells[len(cells)-1].String(); last != "15/11.wav" {
		t.Fatalf("last cell = %s, want 15/11.wav", last)
	}
	if second := cells[1].String(); second != "00/01.wav" {
		t.Fatalf("cells are not bank-major: second = %s", second)
	}
}

func TestGridTargetSeconds(t *testing.T) {
	if got := (Grid{Banks: 1, Files: 1, Minutes: 30}).TargetSeconds(); got != 1800 {
		t.Fatalf("TargetSeconds = %v, want 1800", got)
	}
}
