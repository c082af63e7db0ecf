// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"reflect"
	"testing"
	"time"

	"github.com/pdiddy/metasearch/pkg/types"
)

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips utm params",
			in:   "https://example.com/post?utm_source=newsletter&utm_medium=email",
			want: "https://example.com/post",
		},
		{
			name: "strips trailing slash",
			in:   "https://example.com/post/",
			want: "https://example.com/post",
		},
		{
			name: "strips fragment",
			in:   "https://example.com/post#section-2",
			want: "https://example.com/post",
		},
		{
			name: "keeps meaningful query params sorted",
			in:   "https://example.com/search?q=go&page=2",
			want: "https://example.com/search?page=2&q=go",
		},
		{
			name: "lowercases scheme and host only",
			in:   "HTTPS://Example.COM/Post",
			want: "https://example.com/Post",
		},
		{
			name: "strips click trackers",
			in:   "https://example.com/a?fbclid=xyz&gclid=abc&id=7",
			want: "https://example.com/a?id=7",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalURL(tc.in); got != tc.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMergeCollapsesURLVariants(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	hits := []types.RawHit{
		{Title: "First", URL: "https://example.com/post?utm_source=x", Snippet: "from exa", Provider: "exa"},
		{Title: "Second", URL: "https://example.com/post/", Snippet: "from tavily", Provider: "tavily", PublishedAt: date},
		{Title: "Other", URL: "https://example.com/other", Provider: "exa"},
	}

	merged := Merge(hits)
	if len(merged) != 2 {
		t.Fatalf("got %d results, want 2", len(merged))
	}

	first := merged[0]
	if first.URL != "https://example.com/post" {
		t.Errorf("canonical URL = %q", first.URL)
	}
	if first.Title != "First" || first.Snippet != "from exa" {
		t.Errorf("first-seen fields not preserved: %+v", first)
	}
	if !first.PublishedAt.Equal(date) {
		t.Errorf("date not filled from later hit: %v", first.PublishedAt)
	}
	if want := []string{"exa", "tavily"}; !reflect.DeepEqual(first.Sources, want) {
		t.Errorf("sources = %v, want %v", first.Sources, want)
	}
}

func TestMergeSourcesUnique(t *testing.T) {
	hits := []types.RawHit{
		{Title: "A", URL: "https://example.com/a", Provider: "exa"},
		{Title: "A again", URL: "https://example.com/a/", Provider: "exa"},
	}
	merged := Merge(hits)
	if len(merged) != 1 {
		t.Fatalf("got %d results, want 1", len(merged))
	}
	if want := []string{"exa"}; !reflect.DeepEqual(merged[0].Sources, want) {
		t.Errorf("sources = %v, want %v", merged[0].Sources, want)
	}
}

func TestMergeDropsEmptyURLs(t *testing.T) {
	hits := []types.RawHit{
		{Title: "No URL", Provider: "grok"},
		{Title: "Real", URL: "https://example.com", Provider: "grok"},
	}
	if got := Merge(hits); len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
}

// A later hit with a higher citation count upgrades the whole academic
// record, so the count and the authors/identifiers reporting it agree.
func TestMergeMetadataPrefersHigherCitations(t *testing.T) {
	hits := []types.RawHit{
		{URL: "https://example.com/p", Provider: "semantic_scholar", Metadata: map[string]string{
			"citations": "40",
			"authors":   "A One",
			"venue":     "USENIX ATC",
		}},
		{URL: "https://example.com/p", Provider: "openalex", Metadata: map[string]string{
			"citations": "42",
			"authors":   "A One, B Two",
			"doi":       "10.1/x",
		}},
	}
	merged := Merge(hits)
	if len(merged) != 1 {
		t.Fatalf("got %d results, want 1", len(merged))
	}
	md := merged[0].Metadata
	if md["citations"] != "42" {
		t.Errorf("citations = %q, want richer 42", md["citations"])
	}
	if md["authors"] != "A One, B Two" {
		t.Errorf("authors = %q, want the richer record's authors", md["authors"])
	}
	if md["doi"] != "10.1/x" {
		t.Errorf("doi = %q", md["doi"])
	}
	if md["venue"] != "USENIX ATC" {
		t.Errorf("venue = %q, want first writer's venue kept when the richer hit has none", md["venue"])
	}
}

func TestMergeMetadataLowerCitationsDoesNotDowngrade(t *testing.T) {
	hits := []types.RawHit{
		{URL: "https://example.com/p", Provider: "openalex", Metadata: map[string]string{
			"citations": "42",
			"authors":   "A One, B Two",
		}},
		{URL: "https://example.com/p", Provider: "semantic_scholar", Metadata: map[string]string{
			"citations": "10",
			"authors":   "A One",
			"venue":     "USENIX ATC",
		}},
	}
	merged := Merge(hits)
	md := merged[0].Metadata
	if md["citations"] != "42" || md["authors"] != "A One, B Two" {
		t.Errorf("academic record downgraded: %v", md)
	}
	if md["venue"] != "USENIX ATC" {
		t.Errorf("venue = %q, non-conflicting key should still merge in", md["venue"])
	}
}

func TestMergeMetadataFirstPDFURLWins(t *testing.T) {
	hits := []types.RawHit{
		{URL: "https://example.com/p", Provider: "semantic_scholar", Metadata: map[string]string{
			"citations": "40",
			"pdf_url":   "https://a.example/p.pdf",
		}},
		{URL: "https://example.com/p", Provider: "openalex", Metadata: map[string]string{
			"pdf_url": "https://b.example/p.pdf",
		}},
	}
	merged := Merge(hits)
	if got := merged[0].Metadata["pdf_url"]; got != "https://a.example/p.pdf" {
		t.Errorf("pdf_url = %q, want first non-empty kept", got)
	}
}

func TestMergeMetadataNonAcademicKeysFirstWriterWins(t *testing.T) {
	hits := []types.RawHit{
		{URL: "https://example.com/p", Provider: "exa", Metadata: map[string]string{"lang": "en"}},
		{URL: "https://example.com/p", Provider: "tavily", Metadata: map[string]string{"lang": "de", "topic": "go"}},
	}
	md := Merge(hits)[0].Metadata
	if md["lang"] != "en" {
		t.Errorf("lang = %q, want first writer's value", md["lang"])
	}
	if md["topic"] != "go" {
		t.Errorf("topic = %q, want merged-in value", md["topic"])
	}
}
