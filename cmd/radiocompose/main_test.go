/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radiocompose/internal/config"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addGridFlags(cmd.Flags())
	addComposeFlags(cmd.Flags())
	return cmd
}

func TestApplyFlagsOverridesOnlyChanged(t *testing.T) {
	cmd := newFlagCommand()
	if err := cmd.ParseFlags([]string{"-b", "2", "--crossfade", "0.5", "--seed", "42", "--debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	c := config.Default()
	c.Files = 7
	if err := applyFlags(cmd, c); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if c.Banks != 2 || c.Crossfade != 0.5 || c.Seed == nil || *c.Seed != 42 || !c.Debug {
		t.Fatalf("flags not applied: %+v", c)
	}
	if c.Files != 7 {
		t.Fatalf("files = %d, want untouched 7", c.Files)
	}
	if !c.Strict() {
		t.Fatal("debug run should be strict")
	}
}

func TestApplyFlagsValidates(t *testing.T) {
	cmd := newFlagCommand()
	if err := cmd.ParseFlags([]string{"--fetcher", "carrier-pigeon"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := applyFlags(cmd, config.Default()); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEstimate(t *testing.T) {
	t.Setenv("RADIOCOMPOSE_CONFIG", "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"estimate", "-b", "1", "-f", "1", "-m", "1"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Space required on SD card is 5.047 Mb") {
		t.Fatalf("output = %q", got)
	}
}

func TestExitErrorCarriesCode(t *testing.T) {
	var err error = &exitError{code: 2, msg: "aborted"}
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Fatalf("exitError not recoverable: %v", err)
	}
}

func TestApplyFlagsSeedZeroIsExplicit(t *testing.T) {
	cmd := newFlagCommand()
	if err := cmd.ParseFlags([]string{"--seed", "0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	c := config.Default()
	if err := applyFlags(cmd, c); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if c.Seed == nil || c.RunSeed() != 0 {
		t.Fatalf("--seed 0 not kept: %v", c.Seed)
	}

	unset := newFlagCommand()
	if err := unset.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	d := config.Default()
	if err := applyFlags(unset, d); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if d.Seed != nil {
		t.Fatalf("seed set without --seed: %d", *d.Seed)
	}
}
