/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/friendsincode/radiocompose/internal/composer"
	"github.com/friendsincode/radiocompose/internal/events"
	"github.com/friendsincode/radiocompose/internal/queue"
	"github.com/friendsincode/radiocompose/internal/storage"
	"github.com/rs/zerolog"
)

type stubCatalog struct {
	sections []string
	sounds   map[string][]string
	err      error
}

func (c *stubCatalog) Sections(context.Context) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]string(nil), c.sections...), nil
}

func (c *stubCatalog) Sounds(_ context.Context, section string) ([]string, error) {
	return append([]string(nil), c.sounds[section]...), nil
}

// stubDownloader writes size bytes; the stub engine reads that as seconds.
type stubDownloader struct{ size int }

func (d stubDownloader) Download(_ context.Context, _ string, dest string) error {
	return os.WriteFile(dest, []byte(strings.Repeat("x", d.size)), 0o644)
}

type stubEngine struct{}

func (stubEngine) MeasureDurations(_ context.Context, paths ...string) ([]float64, error) {
	out := make([]float64, len(paths))
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		out[i] = float64(info.Size())
	}
	return out, nil
}

func (stubEngine) Convert(_ context.Context, input, output string, _ audio.Format) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

func (stubEngine) Splice(_ context.Context, inputs []string, output string, _ []float64, _ float64) error {
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	for _, in := range inputs {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		_, err = io.Copy(out, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func TestRunComposesOneProgramPerBank(t *testing.T) {
	cat := &stubCatalog{
		sections: []string{"s1", "s2"},
		sounds:   map[string][]string{},
	}
	for _, s := range cat.sections {
		for i := 0; i < 5; i++ {
			cat.sounds[s] = append(cat.sounds[s], fmt.Sprintf("https://example.org/%s/%d.mp3", s, i))
		}
	}
	root := t.TempDir()
	comp := composer.NewComposer(cat, stubDownloader{size: 10}, stubEngine{}, storage.NewSafeStore(zerolog.Nop()), composer.Config{
		Root:      root,
		TempDir:   t.TempDir(),
		Fanout:    1,
		MaxSkips:  composer.DefaultMaxSkips,
		Crossfade: 2,
	}, zerolog.Nop())

	s := New(cat, queue.NewMemory(), comp, nil, Config{Workers: 2, Seed: 42}, zerolog.Nop())
	report, err := s.Run(context.Background(), Grid{Banks: 2, Files: 1, Minutes: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Stored != 2 || report.Err() != nil {
		t.Fatalf("report = %+v, err %v", report, report.Err())
	}

	for _, bank := range []string{"00", "01"} {
		info, err := os.Stat(filepath.Join(root, bank, "00.wav"))
		if err != nil {
			t.Fatalf("bank %s: %v", bank, err)
		}
		if info.Size() == 0 {
			t.Fatalf("bank %s: empty program", bank)
		}
	}
}

type recordingQueue struct {
	*queue.Memory
	mu     sync.Mutex
	popped map[string]int
}

func (q *recordingQueue) Pop(ctx context.Context) (string, bool, error) {
	s, ok, err := q.Memory.Pop(ctx)
	if ok {
		q.mu.Lock()
		q.popped[s]++
		q.mu.Unlock()
	}
	return s, ok, err
}

// popComposer pops a fixed number of sections per job and records cells.
type popComposer struct {
	pops int
	fail map[composer.Cell]bool
	mu   sync.Mutex
	runs map[composer.Cell]int
}

func (c *popComposer) Compose(ctx context.Context, q queue.SectionQueue, job composer.Job) (string, error) {
	c.mu.Lock()
	c.runs[job.Cell]++
	c.mu.Unlock()
	for i := 0; i < c.pops; i++ {
		if _, _, err := q.Pop(ctx); err != nil {
			return "", err
		}
	}
	if c.fail[job.Cell] {
		return "", errors.New("sox: boom")
	}
	return "/card/" + job.Cell.String(), nil
}

func TestRunPoolCompletesEveryCellOnce(t *testing.T) {
	var sections []string
	for i := 0; i < 32; i++ {
		sections = append(sections, fmt.Sprintf("section-%02d", i))
	}
	q := &recordingQueue{Memory: queue.NewMemory(), popped: map[string]int{}}
	comp := &popComposer{pops: 2, runs: map[composer.Cell]int{}}

	s := New(&stubCatalog{sections: sections}, q, comp, nil, Config{Workers: 4}, zerolog.Nop())
	report, err := s.Run(context.Background(), Grid{Banks: 4, Files: 4, Minutes: 30})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Stored != 16 || len(report.Outcomes) != 16 {
		t.Fatalf("stored %d of %d outcomes", report.Stored, len(report.Outcomes))
	}
	if len(comp.runs) != 16 {
		t.Fatalf("composed %d distinct cells", len(comp.runs))
	}
	for cell, n := range comp.runs {
		if n != 1 {
			t.Fatalf("cell %s composed %d times", cell, n)
		}
	}
	if len(q.popped) != 32 {
		t.Fatalf("popped %d distinct sections, want 32", len(q.popped))
	}
	for section, n := range q.popped {
		if n != 1 {
			t.Fatalf("section %s popped %d times", section, n)
		}
	}
	if n, _ := q.Len(context.Background()); n != 0 {
		t.Fatalf("%d sections left in queue", n)
	}
}

func TestRunFailFastStopsNewJobs(t *testing.T) {
	comp := &popComposer{
		fail: map[composer.Cell]bool{{Bank: 0, File: 0}: true},
		runs: map[composer.Cell]int{},
	}
	s := New(&stubCatalog{}, queue.NewMemory(), comp, nil, Config{Workers: 1, FailFast: true}, zerolog.Nop())

	report, err := s.Run(context.Background(), Grid{Banks: 2, Files: 3, Minutes: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 || report.Cancelled != 5 {
		t.Fatalf("failed %d cancelled %d, want 1 and 5", report.Failed, report.Cancelled)
	}
	if len(comp.runs) != 1 {
		t.Fatalf("%d jobs started after the failure", len(comp.runs)-1)
	}
	if report.Err() == nil {
		t.Fatal("Report.Err() = nil")
	}
}

func TestRunTolerantRunsEveryCell(t *testing.T) {
	comp := &popComposer{
		fail: map[composer.Cell]bool{{Bank: 0, File: 0}: true, {Bank: 1, File: 1}: true},
		runs: map[composer.Cell]int{},
	}
	s := New(&stubCatalog{}, queue.NewMemory(), comp, nil, Config{Workers: 2}, zerolog.Nop())

	report, err := s.Run(context.Background(), Grid{Banks: 2, Files: 2, Minutes: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 2 || report.Stored != 2 || report.Cancelled != 0 {
		t.Fatalf("report = %+v", report)
	}
	if msg := report.Err().Error(); !strings.Contains(msg, "00/00.wav") || !strings.Contains(msg, "01/01.wav") {
		t.Fatalf("Err() = %q", msg)
	}
}

func TestRunEmptyProgramIsSkipped(t *testing.T) {
	root := t.TempDir()
	comp := composer.NewComposer(&stubCatalog{}, stubDownloader{}, stubEngine{}, storage.NewSafeStore(zerolog.Nop()), composer.Config{
		Root:      root,
		TempDir:   t.TempDir(),
		Crossfade: 2,
	}, zerolog.Nop())

	s := New(&stubCatalog{}, queue.NewMemory(), comp, nil, Config{Workers: 1}, zerolog.Nop())
	report, err := s.Run(context.Background(), Grid{Banks: 1, Files: 2, Minutes: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 2 || report.Err() != nil {
		t.Fatalf("report = %+v", report)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("stored %d entries for empty programs", len(entries))
	}
}

func TestRunPublishesLifecycleEvents(t *testing.T) {
	bus := events.NewBus()
	var mu sync.Mutex
	counts := map[events.EventType]int{}
	bus.Hook(func(et events.EventType, p events.Payload) {
		mu.Lock()
		counts[et]++
		mu.Unlock()
	})

	comp := &popComposer{runs: map[composer.Cell]int{}}
	s := New(&stubCatalog{}, queue.NewMemory(), comp, bus, Config{Workers: 3}, zerolog.Nop())
	if _, err := s.Run(context.Background(), Grid{Banks: 2, Files: 2, Minutes: 1}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if counts[events.EventRunStarted] != 1 || counts[events.EventRunCompleted] != 1 {
		t.Fatalf("run events = %v", counts)
	}
	if counts[events.EventJobStarted] != 4 || counts[events.EventJobStored] != 4 {
		t.Fatalf("job events = %v", counts)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	comp := &popComposer{runs: map[composer.Cell]int{}}
	s := New(&stubCatalog{}, queue.NewMemory(), comp, nil, Config{Workers: 2}, zerolog.Nop())

	report, err := s.Run(ctx, Grid{Banks: 1, Files: 3, Minutes: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Cancelled != 3 || len(comp.runs) != 0 {
		t.Fatalf("cancelled %d, started %d", report.Cancelled, len(comp.runs))
	}
}

func TestRunSetupErrors(t *testing.T) {
	s := New(&stubCatalog{err: errors.New("catalog down")}, queue.NewMemory(), &popComposer{}, nil, Config{}, zerolog.Nop())
	if _, err := s.Run(context.Background(), Grid{Banks: 1, Files: 1, Minutes: 1}); err == nil {
		t.Fatal("expected error when sections cannot be listed")
	}
	if _, err := s.Run(context.Background(), Grid{Banks: 0, Files: 1, Minutes: 1}); err == nil {
		t.Fatal("expected error for empty grid")
	}
}
