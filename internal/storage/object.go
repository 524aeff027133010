/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package storage places finished programs on the output card and, when
// configured, mirrors them to object storage.
package storage

import (
	"context"
	"io"
)

// ObjectStore abstracts object storage uploads.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64) error
}
