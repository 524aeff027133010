/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/friendsincode/radiocompose/internal/composer"
)

// Status is the final state of one cell.
type Status string

const (
	StatusStored    Status = "stored"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Outcome records what happened to one cell.
type Outcome struct {
	Cell     composer.Cell
	Status   Status
	Path     string
	Err      error
	Duration time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID     string
	Outcomes  []Outcome
	Stored    int
	Skipped   int
	Failed    int
	Cancelled int
	Duration  time.Duration
}

func (r *Report) tally() {
	r.Stored, r.Skipped, r.Failed, r.Cancelled = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusStored:
			r.Stored++
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		case StatusCancelled:
			r.Cancelled++
		}
	}
}

// Err joins the errors of failed cells, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed && o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Cell, o.Err))
		}
	}
	return errors.Join(errs...)
}
