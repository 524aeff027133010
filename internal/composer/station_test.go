/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package composer

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/friendsincode/radiocompose/internal/storage"
	"github.com/rs/zerolog"
)

func TestCellLayout(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Cell{Bank: 0, File: 0}, "00/00.wav"},
		{Cell{Bank: 3, File: 11}, "03/11.wav"},
		{Cell{Bank: 15, File: 11}, "15/11.wav"},
	}
	for _, tt := range tests {
		if got := tt.cell.String(); got != tt.want {
			t.Fatalf("%+v = %s, want %s", tt.cell, got, tt.want)
		}
	}
	if c := (Cell{Bank: 0, File: 7}); c.Dir() != "00" || c.FileName() != "07.wav" {
		t.Fatalf("cell layout = %s %s", c.Dir(), c.FileName())
	}
}

func TestComposeStoresProgram(t *testing.T) {
	s1, s2 := urls("s1", 5), urls("s2", 5)
	sizes := map[string]int{}
	for _, u := range append(s1, s2...) {
		sizes[u] = 10
	}
	cat := &fakeCatalog{sounds: map[string][]string{"s1": s1, "s2": s2}}
	root := t.TempDir()
	tmp := t.TempDir()
	engine := &sizeEngine{}

	c := NewComposer(cat, &sizedDownloader{sizes: sizes}, engine, storage.NewSafeStore(zerolog.Nop()), Config{
		Root:      root,
		TempDir:   tmp,
		Fanout:    DefaultFanout,
		MaxSkips:  DefaultMaxSkips,
		Crossfade: 2,
	}, zerolog.Nop())

	path, err := c.Compose(context.Background(), filledQueue(t, "s1", "s2"), Job{
		Cell:          Cell{Bank: 1, File: 2},
		TargetSeconds: 60,
		Rand:          rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if path != filepath.Join(root, "01", "02.wav") {
		t.Fatalf("stored at %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat program: %v", err)
	}
	if info.Size() != 50 {
		t.Fatalf("program holds %d seconds, want 50", info.Size())
	}

	left, _ := os.ReadDir(tmp)
	if len(left) != 0 {
		t.Fatalf("work directory not removed: %d entries", len(left))
	}
}

func TestComposeEmptyQueue(t *testing.T) {
	root := t.TempDir()
	c := NewComposer(&fakeCatalog{}, &sizedDownloader{}, &sizeEngine{}, storage.NewSafeStore(zerolog.Nop()), Config{
		Root:      root,
		TempDir:   t.TempDir(),
		Crossfade: 2,
	}, zerolog.Nop())

	_, err := c.Compose(context.Background(), filledQueue(t), Job{
		Cell:          Cell{Bank: 0, File: 0},
		TargetSeconds: 60,
		Rand:          rand.New(rand.NewPCG(1, 1)),
	})
	if !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("err = %v, want ErrEmptyProgram", err)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("something was stored for an empty program: %d entries", len(entries))
	}
}
