/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

// Device compatible program format.
const (
	SampleRate = 44100
	BitDepth   = 16
	Channels   = 1

	// Extension is used for staged intermediates and finished programs.
	Extension = ".wav"
)

// Format describes the sample layout a file is converted to.
type Format struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// DeviceFormat is the mono 44.1 kHz 16-bit layout expected by the player module.
var DeviceFormat = Format{
	Channels:   Channels,
	SampleRate: SampleRate,
	BitDepth:   BitDepth,
}

// BytesPerSecond returns the uncompressed data rate of the format.
func (f Format) BytesPerSecond() int64 {
	return int64(f.SampleRate) * int64(f.Channels) * int64(f.BitDepth) / 8
}
