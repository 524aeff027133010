/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"context"
	"sync"
)

// Memory is an in-process FIFO guarded by a mutex.
type Memory struct {
	mu    sync.Mutex
	items []string
}

// NewMemory creates an empty queue.
func NewMemory() *Memory {
	return &Memory{}
}

// Fill appends sections in the given order.
func (q *Memory) Fill(_ context.Context, sections []string) error {
	q.mu.Lock()
	q.items = append(q.items, sections...)
	q.mu.Unlock()
	return nil
}

// Pop removes and returns the head of the queue. An empty queue is not an error.
func (q *Memory) Pop(_ context.Context) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false, nil
	}
	head := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return head, true, nil
}

// Len returns the number of sections left.
func (q *Memory) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), nil
}
