/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package queue holds the catalog sections still unexplored by a run.
package queue

import "context"

// SectionQueue is the capability handed to composition jobs: pop the next
// section or learn that none are left. Pop must be safe for concurrent use
// and each section is returned at most once.
type SectionQueue interface {
	Pop(ctx context.Context) (section string, ok bool, err error)
}

// Loader is the scheduler side of a queue. Fill runs once, before any job
// starts.
type Loader interface {
	SectionQueue
	Fill(ctx context.Context, sections []string) error
	Len(ctx context.Context) (int, error)
}
