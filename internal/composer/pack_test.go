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

	"github.com/rs/zerolog"
)

func totalSize(t *testing.T, paths []string) float64 {
	t.Helper()
	var sum float64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		sum += float64(info.Size())
	}
	return sum
}

func TestPackRejectsExactFill(t *testing.T) {
	dl := &sizedDownloader{sizes: map[string]int{"a": 10, "b": 20}}
	p := NewPacker(dl, &sizeEngine{}, t.TempDir(), DefaultMaxSkips, zerolog.Nop())

	var pulled int
	got, err := p.Pack(context.Background(), 30, seqOf([]string{"a", "b"}, &pulled))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "000_a" {
		t.Fatalf("accepted = %v, want only 000_a", got)
	}
}

func TestPackNeverOvershoots(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := map[string]int{}
	var candidates []string
	for _, u := range urls("s", 200) {
		sizes[u] = 1 + rng.IntN(120)
		candidates = append(candidates, u)
	}

	for _, target := range []float64{1, 30, 300, 1800} {
		dl := &sizedDownloader{sizes: sizes}
		p := NewPacker(dl, &sizeEngine{}, t.TempDir(), DefaultMaxSkips, zerolog.Nop())
		var pulled int
		got, err := p.Pack(context.Background(), target, seqOf(candidates, &pulled))
		if err != nil {
			t.Fatalf("Pack(%v): %v", target, err)
		}
		if sum := totalSize(t, got); sum >= target {
			t.Fatalf("target %v: accepted %v seconds", target, sum)
		}
	}
}

func TestPackStopsPullingAfterLastSkip(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	dl := &sizedDownloader{sizes: map[string]int{"a": 10, "b": 10, "c": 10, "d": 10, "e": 1}}
	p := NewPacker(dl, &sizeEngine{}, t.TempDir(), 2, zerolog.Nop())

	var pulled int
	got, err := p.Pack(context.Background(), 5, seqOf(items, &pulled))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("accepted %v", got)
	}
	if pulled != 2 || len(dl.pulled) != 2 {
		t.Fatalf("pulled %d candidates and downloaded %d, want 2 and 2", pulled, len(dl.pulled))
	}
}

func TestPackFailuresDoNotConsumeSkips(t *testing.T) {
	items := []string{"missing-1", "missing-2", "a", "huge", "b"}
	dl := &sizedDownloader{sizes: map[string]int{"a": 3, "huge": 100, "b": 2}}
	dir := t.TempDir()
	p := NewPacker(dl, &sizeEngine{}, dir, 1, zerolog.Nop())

	var pulled int
	got, err := p.Pack(context.Background(), 10, seqOf(items, &pulled))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "002_a" {
		t.Fatalf("accepted = %v", got)
	}
	if pulled != 4 {
		t.Fatalf("pulled %d candidates, want 4", pulled)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("rejected downloads left behind: %d entries", len(entries))
	}
}

func TestPackUnlimitedSkips(t *testing.T) {
	items := append(urls("big", 20), "small")
	sizes := map[string]int{"small": 2}
	for _, u := range items[:20] {
		sizes[u] = 10
	}
	p := NewPacker(&sizedDownloader{sizes: sizes}, &sizeEngine{}, t.TempDir(), 0, zerolog.Nop())

	var pulled int
	got, err := p.Pack(context.Background(), 5, seqOf(items, &pulled))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(got) != 1 || pulled != 21 {
		t.Fatalf("accepted %v after pulling %d", got, pulled)
	}
}

func TestPackEmptyStream(t *testing.T) {
	p := NewPacker(&sizedDownloader{}, &sizeEngine{}, t.TempDir(), DefaultMaxSkips, zerolog.Nop())
	var pulled int
	got, err := p.Pack(context.Background(), 60, seqOf(nil, &pulled))
	if err != nil || len(got) != 0 {
		t.Fatalf("Pack = %v, %v", got, err)
	}
}

func TestPackCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPacker(&sizedDownloader{sizes: map[string]int{"a": 1}}, &sizeEngine{}, t.TempDir(), DefaultMaxSkips, zerolog.Nop())

	var pulled int
	_, err := p.Pack(ctx, 60, seqOf([]string{"a"}, &pulled))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSampleName(t *testing.T) {
	tests := map[string]string{
		"https://www.ubu.com/media/sound/cage/Cage_01.mp3":   "Cage_01.mp3",
		"https://www.ubu.com/media/sound/a/One%20Track.mp3": "One Track.mp3",
		"https://example.org/":                               "sample",
		"plain":                                              "plain",
	}
	for in, want := range tests {
		if got := sampleName(in); got != want {
			t.Errorf("sampleName(%q) = %q, want %q", in, got, want)
		}
	}
}
