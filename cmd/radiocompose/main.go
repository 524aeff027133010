/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/radiocompose/internal/config"
	"github.com/friendsincode/radiocompose/internal/logging"
	"github.com/friendsincode/radiocompose/internal/version"
)

var (
	logger     zerolog.Logger
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:     "radiocompose",
	Short:   "Fill a storage card with composed radio station programs",
	Long:    "radiocompose pulls samples from an online sound catalog and splices them into long-form programs laid out as banks of numbered WAV files.",
	Version: version.String(),

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $RADIOCOMPOSE_CONFIG)")
}

// exitError carries a specific process exit status out of a RunE.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.msg != "" {
				fmt.Fprintln(os.Stderr, exit.msg)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and sets up logging (called by commands that need it)
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	logger = logging.Setup(cfg.Environment, cfg.Debug)
	for _, w := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(w)
	}
	return nil
}
