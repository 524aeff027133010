/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultSoxBin is looked up on PATH when no explicit binary is configured.
const DefaultSoxBin = "sox"

// Silence detection parameters: strip until 5 consecutive samples rise above 0%.
const (
	silencePeriods  = "1"
	silenceDuration = "5"
	silenceLevel    = "0"
)

// SoxEngine implements Engine by running the sox command line tool.
type SoxEngine struct {
	bin    string
	logger zerolog.Logger
}

// NewSoxEngine resolves the sox binary once. A missing binary is reported as
// ErrToolUnavailable so callers can fail before any work is scheduled.
func NewSoxEngine(bin string, logger zerolog.Logger) (*SoxEngine, error) {
	if bin == "" {
		bin = DefaultSoxBin
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolUnavailable, bin)
	}
	return &SoxEngine{
		bin:    path,
		logger: logger.With().Str("component", "sox").Logger(),
	}, nil
}

// Path returns the resolved sox binary.
func (e *SoxEngine) Path() string {
	return e.bin
}

// MeasureDurations runs `sox --info -D` for the given paths.
func (e *SoxEngine) MeasureDurations(ctx context.Context, paths ...string) ([]float64, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	args := append([]string{"--info", "-D"}, paths...)
	out, err := e.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseDurations(out, len(paths))
}

// Convert normalizes a single sample to format and trims silence from both ends.
func (e *SoxEngine) Convert(ctx context.Context, input, output string, format Format) error {
	_, err := e.run(ctx, convertArgs(input, output, format)...)
	return err
}

// Splice joins inputs with cross-fades at positions, then normalizes and dithers.
func (e *SoxEngine) Splice(ctx context.Context, inputs []string, output string, positions []float64, excess float64) error {
	if len(inputs) == 0 {
		return errors.New("splice: no inputs")
	}
	_, err := e.run(ctx, spliceArgs(inputs, output, positions, excess)...)
	return err
}

func (e *SoxEngine) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug().Strs("args", args).Msg("running sox")

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ToolError{
				Tool:     "sox",
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("run sox: %w", err)
	}
	return stdout.String(), nil
}

func convertArgs(input, output string, format Format) []string {
	return []string{
		input,
		"-G",
		"-b", strconv.Itoa(format.BitDepth),
		output,
		"channels", strconv.Itoa(format.Channels),
		"rate", "-s", "-a", strconv.Itoa(format.SampleRate),
		// silence only strips from the start, so run it on the reversed
		// signal too to drop the tail.
		"reverse",
		"silence", silencePeriods, silenceDuration, silenceLevel,
		"reverse",
		"silence", silencePeriods, silenceDuration, silenceLevel,
	}
}

func spliceArgs(inputs []string, output string, positions []float64, excess float64) []string {
	args := make([]string, 0, len(inputs)+len(positions)+6)
	args = append(args, inputs...)
	args = append(args, output)
	if len(positions) > 0 {
		args = append(args, "splice", "-q")
		for _, p := range positions {
			args = append(args, formatSeconds(p)+","+formatSeconds(excess))
		}
	}
	return append(args, "norm", "dither", "-s")
}

func parseDurations(out string, want int) ([]float64, error) {
	lines := strings.Fields(strings.TrimSpace(out))
	if len(lines) != want {
		return nil, fmt.Errorf("parse durations: expected %d values, got %d", want, len(lines))
	}
	durations := make([]float64, 0, want)
	for _, line := range lines {
		d, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", line, err)
		}
		durations = append(durations, d)
	}
	return durations, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
