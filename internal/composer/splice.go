/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package composer

import (
	"errors"
	"fmt"
	"math"
)

// DefaultCrossfade is the cross-fade length between samples, in seconds.
const DefaultCrossfade = 2.0

// ErrClipShorterThanCrossfade is returned when a clip is shorter than the
// cross-fade window. A clip exactly as long as the window is accepted.
var ErrClipShorterThanCrossfade = errors.New("clip shorter than crossfade")

// Excess is the overlap taken from each side of a splice.
func Excess(crossfade float64) float64 {
	return crossfade / 2
}

// PlanSplices returns the splice positions, in seconds of running output,
// for clips of the given durations joined with crossfade seconds of overlap.
// Position i sits excess*(i+1) before the end of clip i, since every earlier
// splice already pulled the output back by one excess.
func PlanSplices(durations []float64, crossfade float64) ([]float64, error) {
	if crossfade < 0 || math.IsNaN(crossfade) || math.IsInf(crossfade, 0) {
		return nil, fmt.Errorf("invalid crossfade %v", crossfade)
	}
	if len(durations) <= 1 {
		return []float64{}, nil
	}
	for i, d := range durations {
		if d < crossfade {
			return nil, fmt.Errorf("clip %d lasts %.3fs: %w", i, d, ErrClipShorterThanCrossfade)
		}
	}

	excess := Excess(crossfade)
	plan := make([]float64, 0, len(durations)-1)
	boundary := 0.0
	for i := 0; i < len(durations)-1; i++ {
		boundary += durations[i]
		plan = append(plan, boundary-excess*float64(i+1))
	}
	return plan, nil
}
