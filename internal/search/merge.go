// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search implements the retrieval orchestrator and the pipeline
// behind it: concurrent multi-provider fan-out, cross-provider
// deduplication, intent-weighted scoring, ranking, and export.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/metasearch/pkg/types"
)

// trackingParams are query parameters stripped during canonicalization, in
// addition to every utm_* parameter.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"igshid": true,
	"mc_cid": true,
	"mc_eid": true,
	"ref":    true,
}

// CanonicalURL normalizes a URL for deduplication: lowercased scheme and
// host, tracking query parameters and fragment stripped, trailing slash
// removed. Remaining query parameters are re-encoded in sorted order so
// equivalent URLs always canonicalize identically. An unparseable URL
// falls back to trimming trailing slashes only.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(k, "utm_") || trackingParams[k] {
			q.Del(k)
		}
	}
	if len(q) == 0 {
		u.RawQuery = ""
	} else {
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// Merge folds raw hits into one MergedResult per canonical URL. Hits must
// already be in the deterministic (provider priority, sub-query order)
// processing order: the first-seen hit for a canonical URL supplies title
// and snippet, the first non-zero date wins, sources accumulate every
// contributing provider, and metadata is a first-writer-wins union.
// Hits without a URL are dropped.
func Merge(hits []types.RawHit) []types.MergedResult {
	seen := make(map[string]int) // canonical URL → index in merged
	var merged []types.MergedResult

	for _, h := range hits {
		if h.URL == "" {
			continue
		}
		key := CanonicalURL(h.URL)

		idx, ok := seen[key]
		if !ok {
			m := types.MergedResult{
				URL:         key,
				Title:       h.Title,
				Snippet:     h.Snippet,
				PublishedAt: h.PublishedAt,
				Sources:     []string{h.Provider},
			}
			if len(h.Metadata) > 0 {
				m.Metadata = make(map[string]string, len(h.Metadata))
				for k, v := range h.Metadata {
					m.Metadata[k] = v
				}
			}
			seen[key] = len(merged)
			merged = append(merged, m)
			continue
		}

		m := &merged[idx]
		if !containsString(m.Sources, h.Provider) {
			m.Sources = append(m.Sources, h.Provider)
		}
		if m.PublishedAt.IsZero() && !h.PublishedAt.IsZero() {
			m.PublishedAt = h.PublishedAt
		}
		m.Metadata = mergeMetadata(m.Metadata, h.Metadata)
	}
	return merged
}

// academicFields travel together during a merge: the hit with the higher
// citation count supplies its whole academic record, so authors, venue,
// and identifiers stay consistent with the count being reported.
var academicFields = []string{
	"citations", "influential_citations", "authors", "venue", "doi", "arxiv_id",
}

// mergeMetadata folds src into dst. Academic fields upgrade as a block
// when src knows a higher citation count; any remaining key is
// first-writer-wins.
func mergeMetadata(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	if citesMore(src, dst) {
		for _, k := range academicFields {
			if v := src[k]; v != "" {
				dst[k] = v
			}
		}
	}
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
	return dst
}

// citesMore reports whether src carries a strictly higher citation count
// than dst. A zero or unparseable src count never upgrades.
func citesMore(src, dst map[string]string) bool {
	sc, err := strconv.Atoi(src["citations"])
	if err != nil || sc <= 0 {
		return false
	}
	dc, err := strconv.Atoi(dst["citations"])
	if err != nil {
		return true
	}
	return sc > dc
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
