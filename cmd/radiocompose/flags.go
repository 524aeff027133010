/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/friendsincode/radiocompose/internal/catalog"
	"github.com/friendsincode/radiocompose/internal/config"
)

// addGridFlags registers the card layout flags.
func addGridFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.IntP("banks", "b", d.Banks, "Number of banks (directories) on the card")
	fs.IntP("files", "f", d.Files, "Number of programs per bank")
	fs.IntP("minutes", "m", d.Minutes, "Length of each program in minutes")
}

// addComposeFlags registers everything that tunes composition.
func addComposeFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringP("catalog", "c", d.Catalog, "Sound catalog ("+strings.Join(catalog.Names(), ", ")+")")
	fs.Int("diversity", d.Diversity, "Number of catalog sections mixed into each program")
	fs.Int("skips", d.MaxSkips, "Rejected samples tolerated per program (0 = unlimited)")
	fs.Float64("crossfade", d.Crossfade, "Crossfade between samples in seconds")
	fs.IntP("workers", "w", d.Workers, "Programs composed concurrently")
	fs.Uint64("seed", 0, "Random seed; any value, 0 included, makes the run reproducible (default time based)")
	fs.Bool("debug", false, "Debug logging; stops at the first failure")
	fs.Bool("fail-fast", false, "Stop at the first failed program")
	fs.String("fetcher", d.Fetcher, "Catalog page fetcher ("+config.FetcherHTTP+", "+config.FetcherBrowser+")")
	fs.String("status-bind", "", "Serve status, metrics and events on this address (e.g. 127.0.0.1:8090)")
	fs.String("metrics-file", "", "Write a Prometheus textfile here when the run ends")
}

// applyFlags overrides cfg with every flag set on the command line and
// validates the result.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}

	var errs []error
	setInt := func(name string, dst *int) {
		if changed(name) {
			v, err := fs.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setString := func(name string, dst *string) {
		if changed(name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if changed(name) {
			v, err := fs.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	setInt("banks", &cfg.Banks)
	setInt("files", &cfg.Files)
	setInt("minutes", &cfg.Minutes)
	setString("catalog", &cfg.Catalog)
	setInt("diversity", &cfg.Diversity)
	setInt("skips", &cfg.MaxSkips)
	setInt("workers", &cfg.Workers)
	setBool("debug", &cfg.Debug)
	setBool("fail-fast", &cfg.FailFast)
	setString("fetcher", &cfg.Fetcher)
	setString("status-bind", &cfg.StatusBind)
	setString("metrics-file", &cfg.MetricsFile)

	if changed("crossfade") {
		v, err := fs.GetFloat64("crossfade")
		errs = append(errs, err)
		cfg.Crossfade = v
	}
	if changed("seed") {
		v, err := fs.GetUint64("seed")
		errs = append(errs, err)
		cfg.Seed = &v
	}

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("read flags: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
