/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxPageSize caps how much of a catalog page is read into memory.
const maxPageSize = 16 << 20

// HTTPFetcher fetches pages and downloads samples over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// NewHTTPFetcher creates a fetcher. A zero timeout disables the per-request
// deadline; hung transfers are then only bounded by ctx.
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: userAgent,
		logger:    logger.With().Str("component", "http_fetcher").Logger(),
	}
}

// Page returns the body of url.
func (f *HTTPFetcher) Page(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &RetrievalError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
