/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package composer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/friendsincode/radiocompose/internal/catalog"
)

// sizedDownloader writes a file whose size in bytes is the sample's duration
// in seconds. Locators missing from sizes fail with a RetrievalError.
type sizedDownloader struct {
	mu     sync.Mutex
	sizes  map[string]int
	pulled []string
}

func (d *sizedDownloader) Download(_ context.Context, url, dest string) error {
	d.mu.Lock()
	d.pulled = append(d.pulled, url)
	size, ok := d.sizes[url]
	d.mu.Unlock()
	if !ok {
		return &catalog.RetrievalError{URL: url, StatusCode: 404}
	}
	return os.WriteFile(dest, []byte(strings.Repeat("x", size)), 0o644)
}

// sizeEngine measures duration as file size, converts by copying and
// splices by concatenation.
type sizeEngine struct {
	mu          sync.Mutex
	failConvert map[string]bool
	failMeasure map[string]bool
	spliced     [][]string
	positions   [][]float64
	excess      []float64
}

func (e *sizeEngine) MeasureDurations(_ context.Context, paths ...string) ([]float64, error) {
	out := make([]float64, 0, len(paths))
	for _, p := range paths {
		for suffix := range e.failMeasure {
			if strings.HasSuffix(p, suffix) {
				return nil, &audio.ToolError{Tool: "sox", ExitCode: 1, Stderr: "can't open input file"}
			}
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, &audio.ToolError{Tool: "sox", ExitCode: 2, Stderr: err.Error()}
		}
		out = append(out, float64(info.Size()))
	}
	return out, nil
}

func (e *sizeEngine) Convert(_ context.Context, input, output string, _ audio.Format) error {
	for suffix := range e.failConvert {
		if strings.HasSuffix(input, suffix) {
			return &audio.ToolError{Tool: "sox", ExitCode: 1, Stderr: "no handler for file extension"}
		}
	}
	return copyFile(input, output)
}

func (e *sizeEngine) Splice(_ context.Context, inputs []string, output string, positions []float64, excess float64) error {
	e.mu.Lock()
	e.spliced = append(e.spliced, inputs)
	e.positions = append(e.positions, positions)
	e.excess = append(e.excess, excess)
	e.mu.Unlock()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	for _, in := range inputs {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		_, err = io.Copy(out, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

type fakeCatalog struct {
	sounds map[string][]string
	fail   map[string]bool
}

func (c *fakeCatalog) Sections(context.Context) ([]string, error) {
	var out []string
	for s := range c.sounds {
		out = append(out, s)
	}
	return out, nil
}

func (c *fakeCatalog) Sounds(_ context.Context, section string) ([]string, error) {
	if c.fail[section] {
		return nil, &catalog.RetrievalError{URL: section, StatusCode: 500}
	}
	return append([]string(nil), c.sounds[section]...), nil
}

// seqOf yields items and counts how many were pulled.
func seqOf(items []string, pulled *int) func(func(string) bool) {
	return func(yield func(string) bool) {
		for _, it := range items {
			*pulled++
			if !yield(it) {
				return
			}
		}
	}
}

func urls(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://example.org/%s/%d.mp3", prefix, i)
	}
	return out
}
