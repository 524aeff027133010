/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler fans composition jobs for every cell of the output card
// out over a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/friendsincode/radiocompose/internal/catalog"
	"github.com/friendsincode/radiocompose/internal/composer"
	"github.com/friendsincode/radiocompose/internal/events"
	"github.com/friendsincode/radiocompose/internal/queue"
	"github.com/friendsincode/radiocompose/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// PCG stream selectors, so the section shuffle and job generators differ
// even when they share a seed.
const (
	shuffleStream = 0x5ec7
	jobStream     = 0x10b5
)

// Composer builds and stores the program of one cell.
type Composer interface {
	Compose(ctx context.Context, q queue.SectionQueue, job composer.Job) (string, error)
}

// Config tunes a run.
type Config struct {
	Workers  int  // concurrent jobs, runtime.NumCPU() when <= 0
	FailFast bool // stop starting jobs after the first failure
	Seed     uint64
}

// Scheduler runs one composition job per cell.
type Scheduler struct {
	catalog  catalog.Catalog
	queue    queue.Loader
	composer Composer
	bus      *events.Bus
	cfg      Config
	logger   zerolog.Logger
}

// New creates a scheduler. bus may be nil.
func New(cat catalog.Catalog, q queue.Loader, comp Composer, bus *events.Bus, cfg Config, logger zerolog.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	return &Scheduler{
		catalog:  cat,
		queue:    q,
		composer: comp,
		bus:      bus,
		cfg:      cfg,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run composes every cell of grid. The returned error covers setup only
// (listing or queueing sections); per-cell failures are in the report.
func (s *Scheduler) Run(ctx context.Context, grid Grid) (*Report, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	runID := uuid.NewString()

	sections, err := s.catalog.Sections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	rng := rand.New(rand.NewPCG(s.cfg.Seed, shuffleStream))
	rng.Shuffle(len(sections), func(i, j int) {
		sections[i], sections[j] = sections[j], sections[i]
	})
	if err := s.queue.Fill(ctx, sections); err != nil {
		return nil, fmt.Errorf("fill section queue: %w", err)
	}

	cells := grid.Cells()
	report := &Report{RunID: runID, Outcomes: make([]Outcome, len(cells))}

	s.logger.Info().
		Str("run_id", runID).
		Int("cells", len(cells)).
		Int("sections", len(sections)).
		Int("workers", s.cfg.Workers).
		Bool("fail_fast", s.cfg.FailFast).
		Msg("composition started")
	s.bus.Publish(events.EventRunStarted, events.Payload{
		events.KeyRunID: runID,
		events.KeyTotal: len(cells),
		"sections":      len(sections),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, cell := range cells {
		g.Go(func() error {
			if gctx.Err() != nil {
				report.Outcomes[i] = Outcome{Cell: cell, Status: StatusCancelled}
				s.publishOutcome(runID, report.Outcomes[i])
				return nil
			}
			// In-flight jobs run on ctx, not gctx: a sibling's failure must
			// not interrupt them mid-write.
			out := s.runJob(ctx, runID, i, cell, grid.TargetSeconds())
			report.Outcomes[i] = out
			if out.Status == StatusFailed && s.cfg.FailFast {
				return out.Err
			}
			return nil
		})
	}
	_ = g.Wait()

	report.tally()
	report.Duration = time.Since(start)

	s.logger.Info().
		Str("run_id", runID).
		Int("stored", report.Stored).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("cancelled", report.Cancelled).
		Dur("duration", report.Duration).
		Msg("composition finished")
	s.bus.Publish(events.EventRunCompleted, events.Payload{
		events.KeyRunID:      runID,
		events.KeyTotal:      len(cells),
		"stored":             report.Stored,
		"skipped":            report.Skipped,
		"failed":             report.Failed,
		"cancelled":          report.Cancelled,
		events.KeyDurationMS: report.Duration.Milliseconds(),
	})

	return report, nil
}

func (s *Scheduler) runJob(ctx context.Context, runID string, index int, cell composer.Cell, target float64) Outcome {
	start := time.Now()
	logger := s.logger.With().Str("cell", cell.String()).Logger()

	s.bus.Publish(events.EventJobStarted, events.Payload{
		events.KeyRunID: runID,
		events.KeyBank:  cell.Bank,
		events.KeyFile:  cell.File,
	})

	ctx, span := telemetry.StartSpan(ctx, "compose_station",
		attribute.String("run_id", runID),
		attribute.Int("bank", cell.Bank),
		attribute.Int("file", cell.File),
	)
	path, err := s.composer.Compose(ctx, s.queue, composer.Job{
		Cell:          cell,
		TargetSeconds: target,
		Rand:          rand.New(rand.NewPCG(s.cfg.Seed+uint64(index), jobStream)),
	})

	out := Outcome{Cell: cell, Path: path, Duration: time.Since(start)}
	switch {
	case err == nil:
		out.Status = StatusStored
	case errors.Is(err, composer.ErrEmptyProgram):
		out.Status = StatusSkipped
		out.Path = ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Status = StatusCancelled
		out.Err = err
	default:
		out.Status = StatusFailed
		out.Err = err
	}
	if out.Status == StatusFailed {
		telemetry.EndSpan(span, err)
	} else {
		telemetry.EndSpan(span, nil)
	}

	telemetry.JobsTotal.WithLabelValues(string(out.Status)).Inc()
	telemetry.JobDuration.Observe(out.Duration.Seconds())

	switch out.Status {
	case StatusStored:
		logger.Debug().Str("path", out.Path).Dur("duration", out.Duration).Msg("program stored")
	case StatusSkipped:
		logger.Warn().Msg("no sample fitted, program skipped")
	case StatusCancelled:
		logger.Debug().Msg("job cancelled")
	case StatusFailed:
		logger.Error().Err(err).Msg("job failed")
	}

	s.publishOutcome(runID, out)
	return out
}

func (s *Scheduler) publishOutcome(runID string, out Outcome) {
	payload := events.Payload{
		events.KeyRunID:      runID,
		events.KeyBank:       out.Cell.Bank,
		events.KeyFile:       out.Cell.File,
		events.KeyDurationMS: out.Duration.Milliseconds(),
	}
	if out.Path != "" {
		payload[events.KeyPath] = out.Path
	}
	if out.Err != nil {
		payload[events.KeyError] = out.Err.Error()
	}

	var eventType events.EventType
	switch out.Status {
	case StatusStored:
		eventType = events.EventJobStored
	case StatusSkipped:
		eventType = events.EventJobSkipped
	case StatusFailed:
		eventType = events.EventJobFailed
	default:
		eventType = events.EventJobCancelled
	}
	s.bus.Publish(eventType, payload)
}
