// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the metasearch engine:
// query intents, retrieval modes, provider hits, and merged results.
package types

import "time"

// RawHit is a single result as returned by one provider, before URL
// canonicalization and cross-provider merging.
type RawHit struct {
	// Title is the result title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the result URL exactly as the provider returned it.
	URL string `json:"url" yaml:"url"`

	// Snippet is a short excerpt or abstract.
	Snippet string `json:"snippet" yaml:"snippet"`

	// PublishedAt is the publication date when the provider reports one;
	// zero means unknown.
	PublishedAt time.Time `json:"published_at,omitzero" yaml:"published_at,omitempty"`

	// Provider identifies which adapter produced this hit (e.g. "exa", "tavily").
	Provider string `json:"provider" yaml:"provider"`

	// NativeScore is the provider's own relevance score, when it reports one.
	NativeScore float64 `json:"native_score,omitempty" yaml:"native_score,omitempty"`

	// Metadata carries provider-specific extras (authors, venue, citations,
	// doi, arxiv_id, pdf_url). Keys are absent when the provider has no value.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ScoreComponents holds the three scoring signals, each clamped to [0,1].
type ScoreComponents struct {
	KeywordMatch   float64 `json:"keyword_match" yaml:"keyword_match"`
	FreshnessScore float64 `json:"freshness_score" yaml:"freshness_score"`
	AuthorityScore float64 `json:"authority_score" yaml:"authority_score"`
}

// MergedResult is the canonical result unit after deduplication. Exactly one
// MergedResult exists per canonical URL within a request's result set.
type MergedResult struct {
	// URL is the canonical (normalized) URL used as the dedup key.
	URL string `json:"url" yaml:"url"`

	// Title and Snippet come from the first-seen contributing hit.
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`

	// PublishedAt is the first non-zero date across contributing hits.
	PublishedAt time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// Sources lists every provider that contributed a hit, in the order the
	// hits were processed. Never empty.
	Sources []string `json:"sources" yaml:"sources"`

	// Score is the intent-weighted composite score. Only meaningful when
	// Components is non-nil.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// Components is nil until the result has been scored.
	Components *ScoreComponents `json:"score_components,omitempty" yaml:"score_components,omitempty"`

	// Metadata is the union of contributing hits' metadata; the first hit to
	// supply a key wins.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ProviderState describes how a provider fared during one request.
type ProviderState string

const (
	// ProviderOK means every call to the provider succeeded.
	ProviderOK ProviderState = "ok"
	// ProviderDegraded means some calls succeeded and some failed.
	ProviderDegraded ProviderState = "degraded"
	// ProviderSkipped means no call succeeded, or the provider was excluded
	// before dispatch (e.g. missing credentials).
	ProviderSkipped ProviderState = "skipped"
)

// ProviderStatus records a provider's outcome for one request.
type ProviderStatus struct {
	State  ProviderState `json:"state" yaml:"state"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}
