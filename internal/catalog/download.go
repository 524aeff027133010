/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Download writes the body of url to dest. A partially written file is removed.
func (f *HTTPFetcher) Download(ctx context.Context, url, dest string) error {
	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return &RetrievalError{URL: url, Err: err}
	}

	f.logger.Debug().Str("url", url).Int64("bytes", n).Msg("downloaded")
	return nil
}
