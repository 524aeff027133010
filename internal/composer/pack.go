/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package composer turns catalog samples into one finished program: it picks
// sections, packs samples into a duration budget and splices them together.
package composer

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/friendsincode/radiocompose/internal/telemetry"
	"github.com/rs/zerolog"
)

// DefaultMaxSkips is how many oversized samples a packer tolerates before it
// stops pulling candidates.
const DefaultMaxSkips = 5

// Downloader fetches one sample to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Packer greedily fills a duration budget from a candidate stream.
type Packer struct {
	downloader Downloader
	engine     audio.Engine
	dir        string
	maxSkips   int
	logger     zerolog.Logger
}

// NewPacker creates a packer that downloads into dir. maxSkips <= 0 means
// oversized samples never stop packing.
func NewPacker(downloader Downloader, engine audio.Engine, dir string, maxSkips int, logger zerolog.Logger) *Packer {
	return &Packer{
		downloader: downloader,
		engine:     engine,
		dir:        dir,
		maxSkips:   maxSkips,
		logger:     logger.With().Str("component", "packer").Logger(),
	}
}

// Pack downloads candidates in order and keeps each one that leaves some of
// the target budget (seconds) unused. Samples that cannot be downloaded or
// measured are discarded without counting as a skip. Breaking out of
// candidates after the last allowed skip means nothing further is fetched.
// The returned paths are the accepted local files, in acceptance order.
func (p *Packer) Pack(ctx context.Context, target float64, candidates iter.Seq[string]) ([]string, error) {
	remaining := target
	skips := p.maxSkips
	var accepted []string
	seq := 0

	for locator := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dest := filepath.Join(p.dir, fmt.Sprintf("%03d_%s", seq, sampleName(locator)))
		seq++

		d, err := p.fetch(ctx, locator, dest)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			telemetry.SamplesTotal.WithLabelValues(telemetry.SampleDiscarded).Inc()
			p.logger.Warn().Err(err).Str("sample", locator).Msg("sample discarded")
			continue
		}

		if remaining-d <= 0 {
			os.Remove(dest)
			telemetry.SamplesTotal.WithLabelValues(telemetry.SampleSkipped).Inc()
			p.logger.Debug().Str("sample", locator).Float64("duration", d).Float64("remaining", remaining).Msg("sample does not fit")
			if p.maxSkips > 0 {
				skips--
				if skips == 0 {
					break
				}
			}
			continue
		}

		accepted = append(accepted, dest)
		remaining -= d
		telemetry.SamplesTotal.WithLabelValues(telemetry.SampleAccepted).Inc()
		p.logger.Debug().Str("sample", locator).Float64("duration", d).Float64("remaining", remaining).Msg("sample accepted")
	}

	return accepted, nil
}

func (p *Packer) fetch(ctx context.Context, locator, dest string) (float64, error) {
	if err := p.downloader.Download(ctx, locator, dest); err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	durations, err := p.engine.MeasureDurations(ctx, dest)
	if err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("measure: %w", err)
	}
	return durations[0], nil
}

// sampleName derives a safe local file name from a sample locator.
func sampleName(locator string) string {
	name := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		name = u.Path
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "sample"
	}
	return name
}
