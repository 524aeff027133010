/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package events is the in-process pubsub the scheduler reports progress on.
package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRunCompleted EventType = "run.completed"
	EventJobStarted   EventType = "job.started"
	EventJobStored    EventType = "job.stored"
	EventJobSkipped   EventType = "job.skipped"
	EventJobFailed    EventType = "job.failed"
	EventJobCancelled EventType = "job.cancelled"
)

// All lists every event type, in lifecycle order.
var All = []EventType{
	EventRunStarted,
	EventJobStarted,
	EventJobStored,
	EventJobSkipped,
	EventJobFailed,
	EventJobCancelled,
	EventRunCompleted,
}

// Payload keys shared by publishers and consumers.
const (
	KeyRunID      = "run_id"
	KeyBank       = "bank"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyError      = "error"
	KeyDurationMS = "duration_ms"
	KeyTotal      = "total"
)

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// HookFunc observes every event synchronously, on the publisher's goroutine.
type HookFunc func(EventType, Payload)

// Bus implements a simple in-process pubsub. Channel subscribers may miss
// events when they fall behind; hooks never do.
type Bus struct {
	mu    sync.RWMutex
	subs  map[EventType][]Subscriber
	hooks []HookFunc
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Hook registers fn for every event type. Hooks must not block for long:
// they run inside Publish.
func (b *Bus) Hook(fn HookFunc) {
	b.mu.Lock()
	b.hooks = append(b.hooks, fn)
	b.mu.Unlock()
}

// Publish sends payload to hooks, then to channel subscribers without
// blocking.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	hooks := append([]HookFunc(nil), b.hooks...)
	b.mu.RUnlock()

	for _, fn := range hooks {
		fn(eventType, payload)
	}

	// Sends happen under the read lock so Unsubscribe cannot close a
	// channel mid-send. They never block.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
	b.subs[eventType] = subs
}
