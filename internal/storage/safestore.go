/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// maxCollisionSuffix bounds the stem-N search so a broken filesystem cannot
// loop forever.
const maxCollisionSuffix = 10000

// SafeStore copies files into a directory without ever overwriting an
// existing entry.
type SafeStore struct {
	logger zerolog.Logger
}

// NewSafeStore creates a store.
func NewSafeStore(logger zerolog.Logger) *SafeStore {
	return &SafeStore{logger: logger.With().Str("component", "safe_store").Logger()}
}

// Store copies src into destDir and returns the path written. When the base
// name is taken, stem-1.ext, stem-2.ext and so on are tried in turn.
func (s *SafeStore) Store(ctx context.Context, src, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create directories: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, dest, err := createUnique(destDir, filepath.Base(src))
	if err != nil {
		return "", err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write file: %w", err)
	}

	s.logger.Debug().Str("src", src).Str("path", dest).Msg("program stored")
	return dest, nil
}

// createUnique exclusively creates the first free name in dir.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i <= maxCollisionSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("create file: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}
