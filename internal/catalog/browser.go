/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// BrowserFetcher renders catalog pages in a headless browser, for catalogs
// that build their link lists with JavaScript.
type BrowserFetcher struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   zerolog.Logger
}

// NewBrowserFetcher launches a browser and connects to it.
func NewBrowserFetcher(ctx context.Context, headless bool, logger zerolog.Logger) (*BrowserFetcher, error) {
	l := launcher.New().Headless(headless).Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &BrowserFetcher{
		launcher: l,
		browser:  browser,
		logger:   logger.With().Str("component", "browser_fetcher").Logger(),
	}, nil
}

// Page loads url in a new tab and returns the rendered document.
func (f *BrowserFetcher) Page(ctx context.Context, url string) ([]byte, error) {
	page, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	doc, err := page.HTML()
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}

	f.logger.Debug().Str("url", url).Int("bytes", len(doc)).Msg("page rendered")
	return []byte(doc), nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() error {
	err := f.browser.Close()
	f.launcher.Cleanup()
	return err
}
