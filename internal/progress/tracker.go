/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package progress follows scheduler events and renders them for humans.
package progress

import (
	"sync"
	"time"

	"github.com/friendsincode/radiocompose/internal/events"
)

// Snapshot is the state of a run at one instant.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Total     int       `json:"total"`
	Running   int       `json:"running"`
	Stored    int       `json:"stored"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Cancelled int       `json:"cancelled"`
	Completed bool      `json:"completed"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Done is the number of cells that reached a final state.
func (s Snapshot) Done() int {
	return s.Stored + s.Skipped + s.Failed + s.Cancelled
}

// Tracker aggregates scheduler events into a Snapshot.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Attach makes the tracker observe every event on bus.
func (t *Tracker) Attach(bus *events.Bus) {
	bus.Hook(t.Handle)
}

// Handle folds one event into the snapshot.
func (t *Tracker) Handle(eventType events.EventType, payload events.Payload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch eventType {
	case events.EventRunStarted:
		t.snap = Snapshot{StartedAt: t.now()}
		if id, ok := payload[events.KeyRunID].(string); ok {
			t.snap.RunID = id
		}
		if total, ok := payload[events.KeyTotal].(int); ok {
			t.snap.Total = total
		}
	case events.EventJobStarted:
		t.snap.Running++
	case events.EventJobStored:
		t.snap.Running--
		t.snap.Stored++
	case events.EventJobSkipped:
		t.snap.Running--
		t.snap.Skipped++
	case events.EventJobFailed:
		t.snap.Running--
		t.snap.Failed++
	case events.EventJobCancelled:
		// Cells cancelled before starting never sent job.started.
		if _, started := payload[events.KeyError]; started {
			t.snap.Running--
		}
		t.snap.Cancelled++
	case events.EventRunCompleted:
		t.snap.Running = 0
		t.snap.Completed = true
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
