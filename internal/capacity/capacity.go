/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package capacity estimates the card space a run needs and compares it
// with what the target filesystem has left.
package capacity

import (
	"errors"
	"fmt"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	mebibyte = 1 << 20
	gibibyte = 1 << 30
)

// ErrInsufficientSpace is wrapped by *Warning.
var ErrInsufficientSpace = errors.New("insufficient free space")

// Warning reports that a run may not fit on the target. The operator can
// choose to continue anyway.
type Warning struct {
	Path     string
	Required uint64
	Free     uint64
}

func (w *Warning) Error() string {
	reqValue, reqUnit := Pretty(w.Required)
	freeValue, freeUnit := Pretty(w.Free)
	return fmt.Sprintf("not enough free disk space on %s: %.3f %s required, %.3f %s free",
		w.Path, reqValue, reqUnit, freeValue, freeUnit)
}

func (w *Warning) Unwrap() error {
	return ErrInsufficientSpace
}

// Required returns the bytes needed for banks*files programs of minutes each
// in format.
func Required(banks, files, minutes int, format audio.Format) uint64 {
	if banks <= 0 || files <= 0 || minutes <= 0 {
		return 0
	}
	return uint64(banks) * uint64(files) * uint64(minutes) * 60 * uint64(format.BytesPerSecond())
}

// Free returns the bytes available to unprivileged users on the filesystem
// holding path.
func Free(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("disk usage of %s: %w", path, err)
	}
	return usage.Free, nil
}

// Check compares required with the free space at path. It returns the free
// space, and a *Warning when it falls short.
func Check(path string, required uint64) (uint64, error) {
	free, err := Free(path)
	if err != nil {
		return 0, err
	}
	if free < required {
		return free, &Warning{Path: path, Required: required, Free: free}
	}
	return free, nil
}

// Pretty scales bytes to gigabytes above one gigabyte and megabytes below.
func Pretty(bytes uint64) (float64, string) {
	if bytes > gibibyte {
		return float64(bytes) / gibibyte, "Gb"
	}
	return float64(bytes) / mebibyte, "Mb"
}
