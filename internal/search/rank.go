// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"sort"

	"github.com/pdiddy/metasearch/pkg/types"
)

// Rank sorts scored results in place: descending by score, ties broken by
// authority score, then earliest publication date (undated results last),
// then canonical URL lexical order. The final tie-break makes output
// deterministic under equivalent provider responses.
func Rank(results []types.MergedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}

		var authA, authB float64
		if a.Components != nil {
			authA = a.Components.AuthorityScore
		}
		if b.Components != nil {
			authB = b.Components.AuthorityScore
		}
		if authA != authB {
			return authA > authB
		}

		switch {
		case a.PublishedAt.IsZero() && !b.PublishedAt.IsZero():
			return false
		case !a.PublishedAt.IsZero() && b.PublishedAt.IsZero():
			return true
		case !a.PublishedAt.Equal(b.PublishedAt):
			return a.PublishedAt.Before(b.PublishedAt)
		}

		return a.URL < b.URL
	})
}
