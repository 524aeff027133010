/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package composer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/rs/zerolog"
)

// ErrEmptyProgram means no sample survived packing and conversion, so there
// is nothing to store.
var ErrEmptyProgram = errors.New("empty program")

// Assembler normalizes accepted samples and splices them into a program.
type Assembler struct {
	engine    audio.Engine
	format    audio.Format
	crossfade float64
	logger    zerolog.Logger
}

// NewAssembler creates an assembler producing device format programs.
func NewAssembler(engine audio.Engine, crossfade float64, logger zerolog.Logger) *Assembler {
	return &Assembler{
		engine:    engine,
		format:    audio.DeviceFormat,
		crossfade: crossfade,
		logger:    logger.With().Str("component", "assembler").Logger(),
	}
}

// Assemble converts samples into stageDir and splices the results into
// output. Samples the audio tool rejects are dropped; ErrEmptyProgram is
// returned when none remain.
func (a *Assembler) Assemble(ctx context.Context, samples []string, stageDir, output string) error {
	if len(samples) == 0 {
		return ErrEmptyProgram
	}
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return fmt.Errorf("create stage directory: %w", err)
	}

	staged := make([]string, 0, len(samples))
	for n, sample := range samples {
		out := filepath.Join(stageDir, fmt.Sprintf("%d_%s%s", n, stem(sample), audio.Extension))
		if err := a.engine.Convert(ctx, sample, out, a.format); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !audio.IsToolError(err) {
				return fmt.Errorf("convert %s: %w", sample, err)
			}
			a.logger.Warn().Err(err).Str("sample", sample).Msg("conversion failed, sample dropped")
			continue
		}
		staged = append(staged, out)
	}
	if len(staged) == 0 {
		return ErrEmptyProgram
	}

	staged, durations, err := a.measure(ctx, staged)
	if err != nil {
		return err
	}
	if len(staged) == 0 {
		return ErrEmptyProgram
	}

	plan, err := PlanSplices(durations, a.crossfade)
	if err != nil {
		return fmt.Errorf("plan splices: %w", err)
	}
	if err := a.engine.Splice(ctx, staged, output, plan, Excess(a.crossfade)); err != nil {
		return fmt.Errorf("splice program: %w", err)
	}

	a.logger.Debug().Int("clips", len(staged)).Str("output", output).Msg("program assembled")
	return nil
}

// measure returns the durations of the staged clips. When the audio tool
// rejects the batch, clips are measured one by one and those it cannot read
// are dropped.
func (a *Assembler) measure(ctx context.Context, staged []string) ([]string, []float64, error) {
	durations, err := a.engine.MeasureDurations(ctx, staged...)
	if err == nil {
		return staged, durations, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}
	if !audio.IsToolError(err) {
		return nil, nil, fmt.Errorf("measure intermediates: %w", err)
	}

	kept := make([]string, 0, len(staged))
	durations = make([]float64, 0, len(staged))
	for _, clip := range staged {
		d, err := a.engine.MeasureDurations(ctx, clip)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			if !audio.IsToolError(err) {
				return nil, nil, fmt.Errorf("measure %s: %w", clip, err)
			}
			a.logger.Warn().Err(err).Str("sample", clip).Msg("measurement failed, sample dropped")
			continue
		}
		kept = append(kept, clip)
		durations = append(durations, d[0])
	}
	return kept, durations, nil
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
