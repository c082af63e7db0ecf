// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"time"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/pkg/types"
)

// stopwords are dropped from the query before keyword matching, alongside
// any term of two characters or fewer.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"what": true, "how": true, "why": true, "are": true, "was": true,
	"does": true, "can": true, "has": true, "this": true, "that": true,
}

// QueryTerms extracts the distinct scoring terms from the original query:
// lowercased, stop-words and very short tokens removed, order preserved.
func QueryTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if len(f) <= 2 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// keywordScore is the fraction of query terms found as substrings of
// title+snippet. With no usable terms the signal is neutral (0.5).
func keywordScore(terms []string, title, snippet string) float64 {
	if len(terms) == 0 {
		return 0.5
	}
	text := strings.ToLower(title + " " + snippet)
	matches := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			matches++
		}
	}
	return clamp01(float64(matches) / float64(len(terms)))
}

// FreshnessScore maps a publication date to [0,1]: 1.0 same-day, stepping
// down with age to 0.1 beyond a year. A zero date scores exactly 0.5
// (neutral). The curve is monotone non-increasing in age.
func FreshnessScore(published, now time.Time) float64 {
	if published.IsZero() {
		return 0.5
	}
	age := now.Sub(published)
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.9
	case age <= 30*24*time.Hour:
		return 0.7
	case age <= 90*24*time.Hour:
		return 0.5
	case age <= 365*24*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

// Score computes the weighted composite score for one merged result. The
// function is pure: the same result, terms, weights, table, boosts, and
// clock always produce the same output. Components are clamped to [0,1],
// so with weights summing to 1.0 the composite is also in [0,1].
func Score(r types.MergedResult, terms []string, w types.Weights, tbl *authority.Table, boosts []string, now time.Time) (types.ScoreComponents, float64) {
	c := types.ScoreComponents{
		KeywordMatch:   clamp01(keywordScore(terms, r.Title, r.Snippet)),
		FreshnessScore: clamp01(FreshnessScore(r.PublishedAt, now)),
		AuthorityScore: clamp01(tbl.ScoreURL(r.URL, boosts)),
	}
	score := w.Keyword*c.KeywordMatch + w.Freshness*c.FreshnessScore + w.Authority*c.AuthorityScore
	return c, clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
