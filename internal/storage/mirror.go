/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// MirroredStore stores programs locally, then uploads a copy keyed by the
// path relative to Root. The local copy is kept whatever the upload outcome.
type MirroredStore struct {
	local  *SafeStore
	remote ObjectStore
	root   string
	strict bool
	logger zerolog.Logger
}

// NewMirroredStore wraps local. In strict mode a failed upload is returned
// as an error; otherwise it is only logged.
func NewMirroredStore(local *SafeStore, remote ObjectStore, root string, strict bool, logger zerolog.Logger) *MirroredStore {
	return &MirroredStore{
		local:  local,
		remote: remote,
		root:   root,
		strict: strict,
		logger: logger.With().Str("component", "mirrored_store").Logger(),
	}
}

// Store places src in destDir and mirrors it. On a strict upload failure the
// stored path is returned together with the error.
func (m *MirroredStore) Store(ctx context.Context, src, destDir string) (string, error) {
	dest, err := m.local.Store(ctx, src, destDir)
	if err != nil {
		return "", err
	}

	if err := m.upload(ctx, dest); err != nil {
		if m.strict {
			return dest, err
		}
		m.logger.Warn().Err(err).Str("path", dest).Msg("mirror upload failed")
	}
	return dest, nil
}

func (m *MirroredStore) upload(ctx context.Context, dest string) error {
	rel, err := filepath.Rel(m.root, dest)
	if err != nil {
		return fmt.Errorf("mirror key: %w", err)
	}

	f, err := os.Open(dest)
	if err != nil {
		return fmt.Errorf("open stored program: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat stored program: %w", err)
	}

	if err := m.remote.Put(ctx, filepath.ToSlash(rel), f, info.Size()); err != nil {
		return fmt.Errorf("mirror %s: %w", rel, err)
	}
	return nil
}
