// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authority maps result domains to static trustworthiness scores.
// The table is loaded once at startup and is read-only for the process
// lifetime.
package authority

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// DefaultScore is the lowest-tier score for unrecognized domains.
const DefaultScore = 0.4

// boostDelta is the fixed addition for manually boosted domains.
const boostDelta = 0.2

// Table resolves a hostname to an authority score in [0,1]. Exact domain
// entries take precedence over pattern entries; unmatched domains fall to
// the default score.
type Table struct {
	exact map[string]float64
	// domains holds the exact keys longest-first so the subdomain
	// fallback always resolves to the most specific known domain.
	domains  []string
	patterns []PatternRule
	def      float64
}

// PatternRule matches hostnames by wildcard: "*.edu" matches any host
// ending in ".edu", "docs.*" matches any host starting with "docs.".
type PatternRule struct {
	Pattern string  `yaml:"pattern"`
	Score   float64 `yaml:"score"`
}

// tableFile is the on-disk YAML form: domains grouped by tier plus pattern
// rules.
type tableFile struct {
	Tiers []struct {
		Score   float64  `yaml:"score"`
		Domains []string `yaml:"domains"`
	} `yaml:"tiers"`
	Patterns     []PatternRule `yaml:"patterns"`
	DefaultScore float64       `yaml:"default_score"`
}

// Load reads the authority table from a YAML file. An empty path or a
// missing file yields the built-in table; a present but invalid file is an
// error.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading authority table %s: %w", path, err)
	}

	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing authority table %s: %w", path, err)
	}

	t := &Table{exact: make(map[string]float64), patterns: tf.Patterns, def: tf.DefaultScore}
	if t.def == 0 {
		t.def = DefaultScore
	}
	for _, tier := range tf.Tiers {
		for _, d := range tier.Domains {
			t.exact[d] = tier.Score
		}
	}
	return t.finalize(), nil
}

// finalize builds the deterministic lookup orders: exact domains longest
// first for the subdomain fallback, patterns longest first so the most
// specific rule wins.
func (t *Table) finalize() *Table {
	t.domains = make([]string, 0, len(t.exact))
	for d := range t.exact {
		t.domains = append(t.domains, d)
	}
	sort.Slice(t.domains, func(i, j int) bool {
		if len(t.domains[i]) != len(t.domains[j]) {
			return len(t.domains[i]) > len(t.domains[j])
		}
		return t.domains[i] < t.domains[j]
	})
	sort.SliceStable(t.patterns, func(i, j int) bool {
		return len(t.patterns[i].Pattern) > len(t.patterns[j].Pattern)
	})
	return t
}

// Default returns the built-in table used when no file is configured.
func Default() *Table {
	t := &Table{
		exact: map[string]float64{
			// Tier 1
			"github.com":            1.0,
			"stackoverflow.com":     1.0,
			"wikipedia.org":         1.0,
			"developer.mozilla.org": 1.0,
			"arxiv.org":             1.0,
			"nature.com":            1.0,
			"sciencemag.org":        1.0,
			"cell.com":              1.0,
			"ncbi.nlm.nih.gov":      1.0,
			"biorxiv.org":           1.0,
			// Tier 2
			"news.ycombinator.com": 0.8,
			"dev.to":               0.8,
			"reddit.com":           0.8,
			"ieee.org":             0.8,
			"acm.org":              0.8,
			"springer.com":         0.8,
			"sciencedirect.com":    0.8,
			"pubs.acs.org":         0.8,
			// Tier 3
			"medium.com":       0.6,
			"hackernoon.com":   0.6,
			"researchgate.net": 0.6,
			"plos.org":         0.6,
			"mdpi.com":         0.6,
		},
		patterns: []PatternRule{
			{Pattern: "*.ac.uk", Score: 0.8},
			{Pattern: "*.edu", Score: 0.8},
			{Pattern: "*.gov", Score: 0.8},
			{Pattern: "docs.*", Score: 0.8},
			{Pattern: "*.github.io", Score: 0.6},
		},
		def: DefaultScore,
	}
	return t.finalize()
}

// Score resolves a hostname: exact entry first (with and without a www.
// prefix, and as a registrable suffix of the host), then the longest
// matching pattern, then the default.
func (t *Table) Score(host string) float64 {
	host = strings.ToLower(host)
	for _, candidate := range []string{host, strings.TrimPrefix(host, "www.")} {
		if score, ok := t.exact[candidate]; ok {
			return score
		}
		// A subdomain of a known domain scores as that domain
		// (blog.github.com matches github.com); longest known domain
		// first, so overlapping entries resolve identically every run.
		for _, known := range t.domains {
			if strings.HasSuffix(candidate, "."+known) {
				return t.exact[known]
			}
		}
	}

	for _, rule := range t.patterns {
		if matchPattern(rule.Pattern, host) {
			return rule.Score
		}
	}
	return t.def
}

// ScoreURL resolves a URL's hostname, applying the +0.2 boost when the
// host (or a registrable suffix of it) appears in boosts. The result is
// clamped to 1.0.
func (t *Table) ScoreURL(rawURL string, boosts []string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return t.def
	}
	host := strings.ToLower(u.Hostname())
	score := t.Score(host)

	for _, bd := range boosts {
		bd = strings.ToLower(strings.TrimSpace(bd))
		if bd == "" {
			continue
		}
		if host == bd || strings.HasSuffix(host, "."+bd) {
			score = min(1.0, score+boostDelta)
			break
		}
	}
	return score
}

func matchPattern(pattern, host string) bool {
	switch {
	case strings.HasPrefix(pattern, "*."):
		// Suffix match: *.edu matches cs.stanford.edu and stanford.edu.
		suffix := pattern[1:] // ".edu"
		return strings.HasSuffix(host, suffix) || host == pattern[2:]
	case strings.HasSuffix(pattern, ".*"):
		// Prefix match: docs.* matches docs.python.org.
		return strings.HasPrefix(host, pattern[:len(pattern)-2]+".")
	default:
		return host == pattern
	}
}
