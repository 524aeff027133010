/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/friendsincode/radiocompose/internal/capacity"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [PATH]",
	Short: "Print the space a card layout needs",
	Long:  "Print the space banks x files programs need, and compare it with the free space on PATH when given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	addGridFlags(estimateCmd.Flags())
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	required := capacity.Required(cfg.Banks, cfg.Files, cfg.Minutes, audio.DeviceFormat)
	value, unit := capacity.Pretty(required)
	fmt.Fprintf(out, "Space required on SD card is %.3f %s\n", value, unit)

	if len(args) == 0 {
		return nil
	}
	free, err := capacity.Check(args[0], required)
	var warning *capacity.Warning
	switch {
	case errors.As(err, &warning):
		fmt.Fprintln(out, warning.Error())
		return &exitError{code: 2}
	case err != nil:
		return err
	}
	value, unit = capacity.Pretty(free)
	fmt.Fprintf(out, "Free space on %s is %.3f %s\n", args[0], value, unit)
	return nil
}
