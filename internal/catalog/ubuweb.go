/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
)

// UbuWeb Sound catalog locations.
const (
	UbuWebStartURL = "https://www.ubu.com/sound/index.html"
)

var (
	ubuSectionPattern = regexp.MustCompile(`^https://www\.ubu\.com/sound/.+`)
	ubuSoundPattern   = regexp.MustCompile(`^https://www\.ubu\.com/.+\.mp3$`)
)

// LinkCatalog discovers sections and sounds by following links whose URLs
// match per-level patterns.
type LinkCatalog struct {
	Name           string
	StartURL       string
	SectionPattern *regexp.Regexp
	SoundPattern   *regexp.Regexp

	pages  PageFetcher
	logger zerolog.Logger
}

// NewUbuWeb returns the UbuWeb Sound catalog.
func NewUbuWeb(pages PageFetcher, logger zerolog.Logger) *LinkCatalog {
	return &LinkCatalog{
		Name:           "UbuWeb Sound Catalog",
		StartURL:       UbuWebStartURL,
		SectionPattern: ubuSectionPattern,
		SoundPattern:   ubuSoundPattern,
		pages:          pages,
		logger:         logger.With().Str("component", "catalog").Str("catalog", "ubuweb").Logger(),
	}
}

// Sections returns the section pages linked from the start page.
func (c *LinkCatalog) Sections(ctx context.Context) ([]string, error) {
	links, err := c.links(ctx, c.StartURL, c.SectionPattern)
	if err != nil {
		return nil, err
	}
	sections := links[:0]
	for _, l := range links {
		if l != c.StartURL {
			sections = append(sections, l)
		}
	}
	return sections, nil
}

// Sounds returns the sample URLs linked from a section page.
func (c *LinkCatalog) Sounds(ctx context.Context, section string) ([]string, error) {
	return c.links(ctx, section, c.SoundPattern)
}

func (c *LinkCatalog) links(ctx context.Context, pageURL string, pattern *regexp.Regexp) ([]string, error) {
	body, err := c.pages.Page(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	links, err := ExtractLinks(pageURL, body, pattern.MatchString)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("page", pageURL).Int("links", len(links)).Msg("page parsed")
	return links, nil
}

func (c *LinkCatalog) String() string {
	return fmt.Sprintf("%s %s", c.Name, c.StartURL)
}
