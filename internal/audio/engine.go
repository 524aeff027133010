/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audio wraps the external audio processing tool used to measure,
// normalize and splice samples.
package audio

import "context"

// Engine is the audio processing capability the composer depends on.
type Engine interface {
	// MeasureDurations returns the duration in seconds of each path, in order.
	MeasureDurations(ctx context.Context, paths ...string) ([]float64, error)

	// Convert rewrites input into output using format, stripping leading and
	// trailing silence.
	Convert(ctx context.Context, input, output string, format Format) error

	// Splice concatenates inputs into output, cross-fading at each position
	// (seconds into the running output) with the given excess on either side,
	// then normalizes and dithers the result.
	Splice(ctx context.Context, inputs []string, output string, positions []float64, excess float64) error
}
