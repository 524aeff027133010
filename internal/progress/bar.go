/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package progress

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinner = []string{"⠏", "⠛", "⠹", "⢸", "⣰", "⣤", "⣆", "⡇"}

const (
	finishedBlock = "█"
	runningBlock  = "░"
	tickInterval  = 250 * time.Millisecond
	defaultWidth  = 80
)

// Bar redraws a single-line progress bar until stopped.
type Bar struct {
	out     io.Writer
	tracker *Tracker
	width   func() int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewBar creates a bar drawing the tracker's state on out.
func NewBar(out io.Writer, tracker *Tracker) *Bar {
	return &Bar{
		out:     out,
		tracker: tracker,
		width:   func() int { return terminalWidth(out) },
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start draws until ctx is done or Stop is called.
func (b *Bar) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		frame := 0
		for {
			snap := b.tracker.Snapshot()
			io.WriteString(b.out, Render(frame, snap, maxChars(snap.Total, b.width())))
			frame++

			select {
			case <-ctx.Done():
				return
			case <-b.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop erases the bar and prints the completion line.
func (b *Bar) Stop() {
	b.once.Do(func() {
		close(b.stop)
		<-b.done
		snap := b.tracker.Snapshot()
		io.WriteString(b.out, Erase(maxChars(snap.Total, b.width())))
	})
}

// Render draws one frame: spinner, finished blocks, running blocks.
func Render(frame int, snap Snapshot, width int) string {
	var finished, running int
	if snap.Total > 0 {
		finished = width * snap.Done() / snap.Total
		running = width * max(snap.Running, 0) / snap.Total
	}
	return "\r" + spinner[frame%len(spinner)] + " " +
		strings.Repeat(finishedBlock, finished) +
		strings.Repeat(runningBlock, running)
}

// Erase blanks a bar of the given width and writes the completion line.
func Erase(width int) string {
	return "\r" + strings.Repeat(" ", width+2) + "\rProcess completed\n"
}

// maxChars gives each cell one block when the terminal is wide enough; the
// spinner, its space and a trailing space take three columns.
func maxChars(total, termWidth int) int {
	return max(min(total, termWidth-3), 0)
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
