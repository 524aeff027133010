/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"fmt"

	"github.com/friendsincode/radiocompose/internal/composer"
)

// Grid is the shape of the output card.
type Grid struct {
	Banks   int
	Files   int
	Minutes int
}

// Validate rejects empty grids.
func (g Grid) Validate() error {
	if g.Banks <= 0 || g.Files <= 0 || g.Minutes <= 0 {
		return fmt.Errorf("invalid grid %dx%d of %d minutes: all dimensions must be positive", g.Banks, g.Files, g.Minutes)
	}
	return nil
}

// Cells enumerates every program, bank by bank.
func (g Grid) Cells() []composer.Cell {
	cells := make([]composer.Cell, 0, g.Banks*g.Files)
	for b := range g.Banks {
		for f := range g.Files {
			cells = append(cells, composer.Cell{Bank: b, File: f})
		}
	}
	return cells
}

// TargetSeconds is the duration budget of each program.
func (g Grid) TargetSeconds() float64 {
	return float64(g.Minutes) * 60
}
