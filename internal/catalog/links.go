/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ExtractLinks returns the targets of <a href> elements in body, resolved
// against base, that satisfy match. Results are escaped, deduplicated and
// kept in document order.
func ExtractLinks(base string, body []byte, match func(string) bool) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var links []string
	seen := make(map[string]struct{})

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("tokenize %s: %w", base, err)
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			href, ok := hrefAttr(z)
			if !ok {
				continue
			}
			target, err := baseURL.Parse(strings.TrimSpace(href))
			if err != nil {
				continue
			}
			if !match(unescaped(target)) {
				continue
			}
			quoted := quoteURL(target)
			if _, dup := seen[quoted]; dup {
				continue
			}
			seen[quoted] = struct{}{}
			links = append(links, quoted)
		}
	}
}

func hrefAttr(z *html.Tokenizer) (string, bool) {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" && len(val) > 0 {
			return string(val), true
		}
		if !more {
			return "", false
		}
	}
}

// unescaped renders the URL the way it reads in the page, for pattern matching.
func unescaped(u *url.URL) string {
	s := u.Scheme + "://" + u.Host + u.Path
	if u.RawQuery != "" {
		s += "?" + u.RawQuery
	}
	return s
}

// quoteURL escapes path, query and fragment so links with spaces or
// non-ASCII characters can be requested verbatim.
func quoteURL(u *url.URL) string {
	q := *u
	q.RawQuery = escapeQuery(u.RawQuery)
	return q.String()
}

func escapeQuery(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isQuerySafe(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isQuerySafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.~=&;+%/:@,!$'()*", c) >= 0
}
