/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"reflect"
	"testing"
)

func TestExtractLinks(t *testing.T) {
	page := []byte(`<html><body>
<a href="/sound/artist_one.html">One</a>
<a href="artist_two.html">Two</a>
<a href="https://www.ubu.com/film/x.html">Film</a>
<a href="/sound/artist_one.html">Again</a>
<a name="anchor">No href</a>
<a href="/sound/tape%20works.html">Tape</a>
</body></html>`)

	got, err := ExtractLinks(UbuWebStartURL, page, ubuSectionPattern.MatchString)
	if err != nil {
		t.Fatalf("ExtractLinks: %v", err)
	}
	want := []string{
		"https://www.ubu.com/sound/artist_one.html",
		"https://www.ubu.com/sound/artist_two.html",
		"https://www.ubu.com/sound/tape%20works.html",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("links = %v, want %v", got, want)
	}
}

func TestExtractLinksQuotesUnsafeCharacters(t *testing.T) {
	page := []byte(`<a href="/media/sound/a/One Track.mp3">x</a>
<a href="/media/sound/b.mp3?dl=1">y</a>
<a href="https://www.ubu.com/media/sound/c.mp3">z</a>`)

	got, err := ExtractLinks("https://www.ubu.com/sound/a.html", page, ubuSoundPattern.MatchString)
	if err != nil {
		t.Fatalf("ExtractLinks: %v", err)
	}
	want := []string{
		"https://www.ubu.com/media/sound/a/One%20Track.mp3",
		"https://www.ubu.com/media/sound/c.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("links = %v, want %v", got, want)
	}
}

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a=1&b=2", "a=1&b=2"},
		{"name=two words", "name=two%20words"},
		{"q=\"x\"", "q=%22x%22"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := escapeQuery(tt.in); got != tt.want {
			t.Errorf("escapeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractLinksInvalidBase(t *testing.T) {
	if _, err := ExtractLinks("://bad", nil, func(string) bool { return true }); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}
