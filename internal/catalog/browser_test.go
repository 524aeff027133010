/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBrowserFetcherRendersScriptLinks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("RADIOCOMPOSE_TEST_BROWSER") == "" {
		t.Skip("RADIOCOMPOSE_TEST_BROWSER not set")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><script>
var a = document.createElement("a");
a.href = "/generated.mp3";
document.body.appendChild(a);
</script></body></html>`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	f, err := NewBrowserFetcher(ctx, true, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBrowserFetcher: %v", err)
	}
	defer f.Close()

	body, err := f.Page(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(string(body), "/generated.mp3") {
		t.Fatalf("rendered page lacks generated link: %s", body)
	}
}
