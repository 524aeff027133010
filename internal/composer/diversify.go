/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package composer

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/friendsincode/radiocompose/internal/catalog"
	"github.com/friendsincode/radiocompose/internal/queue"
	"github.com/rs/zerolog"
)

// DefaultFanout is the number of sections one program draws from.
const DefaultFanout = 5

// Diversifier draws sections from the shared queue so that a program mixes
// several sources.
type Diversifier struct {
	catalog catalog.Catalog
	fanout  int
	strict  bool
	logger  zerolog.Logger
}

// NewDiversifier creates a diversifier. In strict mode a section whose sound
// list cannot be fetched fails the job instead of contributing nothing.
func NewDiversifier(cat catalog.Catalog, fanout int, strict bool, logger zerolog.Logger) *Diversifier {
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	return &Diversifier{
		catalog: cat,
		fanout:  fanout,
		strict:  strict,
		logger:  logger.With().Str("component", "diversifier").Logger(),
	}
}

// Diversify pops up to fanout sections and returns each one's sounds,
// shuffled with rng. An exhausted queue yields fewer lists.
func (d *Diversifier) Diversify(ctx context.Context, q queue.SectionQueue, rng *rand.Rand) ([][]string, error) {
	lists := make([][]string, 0, d.fanout)

	for len(lists) < d.fanout {
		section, ok, err := q.Pop(ctx)
		if err != nil {
			if d.strict || ctx.Err() != nil {
				return nil, fmt.Errorf("pop section: %w", err)
			}
			d.logger.Warn().Err(err).Msg("section queue unavailable")
			break
		}
		if !ok {
			break
		}

		sounds, err := d.catalog.Sounds(ctx, section)
		if err != nil {
			if d.strict || ctx.Err() != nil {
				return nil, fmt.Errorf("list sounds of %s: %w", section, err)
			}
			d.logger.Warn().Err(err).Str("section", section).Msg("section skipped")
			sounds = nil
		}

		rng.Shuffle(len(sounds), func(i, j int) {
			sounds[i], sounds[j] = sounds[j], sounds[i]
		})
		d.logger.Debug().Str("section", section).Int("sounds", len(sounds)).Msg("section drawn")
		lists = append(lists, sounds)
	}

	return lists, nil
}

// Interleave yields one item from each list per round, shuffling the items
// of a round with rng. Lists that ran out are left out of later rounds.
func Interleave(lists [][]string, rng *rand.Rand) iter.Seq[string] {
	return func(yield func(string) bool) {
		longest := 0
		for _, l := range lists {
			longest = max(longest, len(l))
		}

		round := make([]string, 0, len(lists))
		for r := 0; r < longest; r++ {
			round = round[:0]
			for _, l := range lists {
				if r < len(l) && l[r] != "" {
					round = append(round, l[r])
				}
			}
			rng.Shuffle(len(round), func(i, j int) {
				round[i], round[j] = round[j], round[i]
			})
			for _, item := range round {
				if !yield(item) {
					return
				}
			}
		}
	}
}
