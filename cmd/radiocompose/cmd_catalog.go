/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radiocompose/internal/catalog"
	"github.com/friendsincode/radiocompose/internal/version"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the sound catalog",
}

var catalogSectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List catalog section locators",
	Args:  cobra.NoArgs,
	RunE:  runCatalogSections,
}

var catalogSoundsCmd = &cobra.Command{
	Use:   "sounds URL",
	Short: "List the sample locators of one section",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSounds,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogSectionsCmd)
	catalogCmd.AddCommand(catalogSoundsCmd)

	fs := catalogCmd.PersistentFlags()
	fs.StringP("catalog", "c", "", "Sound catalog (default from config)")
	fs.String("fetcher", "", "Catalog page fetcher (default from config)")
}

func openCatalog(cmd *cobra.Command) (catalog.Catalog, context.Context, func(), error) {
	if err := loadConfig(cmd); err != nil {
		return nil, nil, nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	httpFetcher := catalog.NewHTTPFetcher(cfg.HTTPTimeout, version.UserAgent(), logger)
	pages, closePages, err := newPageFetcher(ctx, httpFetcher)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}
	cleanup := func() {
		closePages()
		stop()
	}

	cat, err := catalog.New(cfg.Catalog, pages, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return cat, ctx, cleanup, nil
}

func runCatalogSections(cmd *cobra.Command, args []string) error {
	cat, ctx, cleanup, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sections, err := cat.Sections(ctx)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}
	for _, s := range sections {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}

func runCatalogSounds(cmd *cobra.Command, args []string) error {
	cat, ctx, cleanup, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sounds, err := cat.Sounds(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list sounds: %w", err)
	}
	for _, s := range sounds {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}
