/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog lists sections and sample locators of online sound catalogs.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Catalog is a source of sound samples grouped in sections.
type Catalog interface {
	// Sections returns section locators (e.g. artist pages).
	Sections(ctx context.Context) ([]string, error)
	// Sounds returns the sample locators found in one section.
	Sounds(ctx context.Context, section string) ([]string, error)
}

// PageFetcher retrieves the HTML of a catalog page.
type PageFetcher interface {
	Page(ctx context.Context, url string) ([]byte, error)
}

// Factory builds a catalog on top of a page fetcher.
type Factory func(pages PageFetcher, logger zerolog.Logger) Catalog

// DefaultName is the catalog used when none is configured.
const DefaultName = "ubuweb"

var registry = map[string]Factory{
	"ubuweb": func(pages PageFetcher, logger zerolog.Logger) Catalog {
		return NewUbuWeb(pages, logger)
	},
}

// Names returns the registered catalog names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is a registered catalog.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// New builds the named catalog.
func New(name string, pages PageFetcher, logger zerolog.Logger) (Catalog, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q (available: %v)", name, Names())
	}
	return factory(pages, logger), nil
}
