// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"
	"time"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/pkg/types"
)

var scoreNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFreshnessScoreSteps(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"12 hours", 12 * time.Hour, 1.0},
		{"3 days", 72 * time.Hour, 0.9},
		{"20 days", 20 * 24 * time.Hour, 0.7},
		{"60 days", 60 * 24 * time.Hour, 0.5},
		{"200 days", 200 * 24 * time.Hour, 0.3},
		{"2 years", 730 * 24 * time.Hour, 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FreshnessScore(scoreNow.Add(-tc.age), scoreNow)
			if got != tc.want {
				t.Errorf("FreshnessScore(now-%v) = %v, want %v", tc.age, got, tc.want)
			}
		})
	}
}

func TestFreshnessScoreNoDate(t *testing.T) {
	if got := FreshnessScore(time.Time{}, scoreNow); got != 0.5 {
		t.Errorf("undated freshness = %v, want 0.5", got)
	}
}

func TestFreshnessScoreZeroAge(t *testing.T) {
	if got := FreshnessScore(scoreNow, scoreNow); got != 1.0 {
		t.Errorf("zero-age freshness = %v, want 1.0", got)
	}
}

// Newer never scores below older.
func TestFreshnessScoreMonotone(t *testing.T) {
	prev := 1.0
	for days := 0; days <= 800; days += 5 {
		got := FreshnessScore(scoreNow.AddDate(0, 0, -days), scoreNow)
		if got > prev {
			t.Fatalf("freshness increased at age %d days: %v > %v", days, got, prev)
		}
		prev = got
	}
}

func TestQueryTerms(t *testing.T) {
	got := QueryTerms("How to use the Kubernetes operator pattern")
	want := []string{"use", "kubernetes", "operator", "pattern"}
	if len(got) != len(want) {
		t.Fatalf("terms = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("terms = %v, want %v", got, want)
		}
	}
}

func TestScoreWithinUnitInterval(t *testing.T) {
	tbl := authority.Default()
	weights := types.Weights{Keyword: 0.4, Freshness: 0.2, Authority: 0.4}
	results := []types.MergedResult{
		{URL: "https://arxiv.org/abs/2601.00001", Title: "Kubernetes operator survey", PublishedAt: scoreNow.Add(-time.Hour)},
		{URL: "https://random.example/post", Title: "unrelated"},
		{URL: "https://docs.python.org/3/", Title: "Python docs", PublishedAt: scoreNow.AddDate(-3, 0, 0)},
	}
	terms := QueryTerms("kubernetes operator")
	for _, r := range results {
		comps, total := Score(r, terms, weights, tbl, nil, scoreNow)
		if total < 0 || total > 1 {
			t.Errorf("score for %s = %v, out of [0,1]", r.URL, total)
		}
		for _, c := range []float64{comps.KeywordMatch, comps.FreshnessScore, comps.AuthorityScore} {
			if c < 0 || c > 1 {
				t.Errorf("component for %s = %v, out of [0,1]", r.URL, c)
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	tbl := authority.Default()
	weights := types.IntentFactual.Profile().Weights
	r := types.MergedResult{URL: "https://en.wikipedia.org/wiki/Raft", Title: "Raft consensus", PublishedAt: scoreNow.AddDate(0, -2, 0)}
	terms := QueryTerms("raft consensus algorithm")

	_, first := Score(r, terms, weights, tbl, nil, scoreNow)
	for i := 0; i < 5; i++ {
		if _, again := Score(r, terms, weights, tbl, nil, scoreNow); again != first {
			t.Fatalf("score changed between identical calls: %v vs %v", again, first)
		}
	}
}

func TestScoreDomainBoost(t *testing.T) {
	tbl := authority.Default()
	weights := types.Weights{Keyword: 0, Freshness: 0, Authority: 1}
	r := types.MergedResult{URL: "https://blog.example.org/post", Title: "x"}

	_, plain := Score(r, nil, weights, tbl, nil, scoreNow)
	_, boosted := Score(r, nil, weights, tbl, []string{"blog.example.org"}, scoreNow)
	if boosted <= plain {
		t.Errorf("boosted score %v not above plain %v", boosted, plain)
	}
	if diff := boosted - plain; diff < 0.19 || diff > 0.21 {
		t.Errorf("boost delta = %v, want 0.2", diff)
	}
}
