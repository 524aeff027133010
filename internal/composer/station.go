/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package composer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/friendsincode/radiocompose/internal/catalog"
	"github.com/friendsincode/radiocompose/internal/queue"
	"github.com/rs/zerolog"
)

// Cell addresses one program on the output card. Bank and File are zero
// based, matching the player's bank slots.
type Cell struct {
	Bank int
	File int
}

// Dir is the bank directory name, relative to the card root.
func (c Cell) Dir() string {
	return fmt.Sprintf("%02d", c.Bank)
}

// FileName is the program file name inside the bank directory.
func (c Cell) FileName() string {
	return fmt.Sprintf("%02d%s", c.File, audio.Extension)
}

func (c Cell) String() string {
	return c.Dir() + "/" + c.FileName()
}

// Store places a finished program in a directory and returns its final path.
type Store interface {
	Store(ctx context.Context, src, destDir string) (string, error)
}

// Config tunes how each program is composed.
type Config struct {
	Root      string // card root; programs land in <Root>/<bank>/<file>.wav
	TempDir   string // parent of job work directories, os.TempDir when empty
	Fanout    int
	MaxSkips  int
	Crossfade float64
	Strict    bool
}

// Job is one unit of scheduler work.
type Job struct {
	Cell          Cell
	TargetSeconds float64
	Rand          *rand.Rand
}

// Composer runs the per-cell pipeline: diversify, pack, assemble, store.
type Composer struct {
	downloader  Downloader
	engine      audio.Engine
	store       Store
	diversifier *Diversifier
	assembler   *Assembler
	cfg         Config
	logger      zerolog.Logger
}

// NewComposer wires the pipeline stages.
func NewComposer(cat catalog.Catalog, downloader Downloader, engine audio.Engine, store Store, cfg Config, logger zerolog.Logger) *Composer {
	return &Composer{
		downloader:  downloader,
		engine:      engine,
		store:       store,
		diversifier: NewDiversifier(cat, cfg.Fanout, cfg.Strict, logger),
		assembler:   NewAssembler(engine, cfg.Crossfade, logger),
		cfg:         cfg,
		logger:      logger.With().Str("component", "composer").Logger(),
	}
}

// Compose builds the program for job.Cell from sections popped off q and
// returns where it was stored. The job's work directory is removed before
// returning. ErrEmptyProgram means nothing was stored.
func (c *Composer) Compose(ctx context.Context, q queue.SectionQueue, job Job) (string, error) {
	cell, rng := job.Cell, job.Rand
	workDir, err := os.MkdirTemp(c.cfg.TempDir, fmt.Sprintf("radiocompose-%02d-%02d-", cell.Bank, cell.File))
	if err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	logger := c.logger.With().Str("cell", cell.String()).Logger()

	lists, err := c.diversifier.Diversify(ctx, q, rng)
	if err != nil {
		return "", err
	}

	downloads := filepath.Join(workDir, "download")
	if err := os.MkdirAll(downloads, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	packer := NewPacker(c.downloader, c.engine, downloads, c.cfg.MaxSkips, logger)
	samples, err := packer.Pack(ctx, job.TargetSeconds, Interleave(lists, rng))
	if err != nil {
		return "", fmt.Errorf("pack samples: %w", err)
	}
	logger.Debug().Int("sections", len(lists)).Int("samples", len(samples)).Msg("samples packed")

	program := filepath.Join(workDir, cell.FileName())
	if err := c.assembler.Assemble(ctx, samples, filepath.Join(workDir, "stage"), program); err != nil {
		return "", err
	}

	path, err := c.store.Store(ctx, program, filepath.Join(c.cfg.Root, cell.Dir()))
	if err != nil {
		return path, fmt.Errorf("store program: %w", err)
	}
	return path, nil
}
