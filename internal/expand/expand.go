// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand turns one user query into the set of sub-queries to
// dispatch, according to the query's intent. A fixed technical-synonym
// table is applied to every sub-query regardless of intent.
package expand

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/metasearch/pkg/types"
)

// MaxSubQueries bounds expansion output for any intent.
const MaxSubQueries = 3

// synonyms maps lowercase query tokens to their expanded technical form.
// Replacement is token-exact, not free substring, so "tsdb" is untouched
// while "ts" expands.
var synonyms = map[string]string{
	"k8s":      "Kubernetes",
	"js":       "JavaScript",
	"ts":       "TypeScript",
	"postgres": "PostgreSQL",
	"mongo":    "MongoDB",
	"regex":    "regular expression",
	"llm":      "large language model",
}

// zhTerms maps Chinese technical terms to English for the academic
// English-variant sub-query.
var zhTerms = map[string]string{
	"机器学习": "machine learning",
	"深度学习": "deep learning",
	"神经网络": "neural network",
	"大模型":  "large language model",
	"强化学习": "reinforcement learning",
	"量子计算": "quantum computing",
	"知识图谱": "knowledge graph",
}

// comparison connectors, checked in order. English connectors split the
// query into the two compared entities.
var comparisonConnectors = []string{" vs. ", " vs ", " versus ", " or "}

// Expand produces the ordered sub-query list for a query and intent.
// An explicit sub-query list from the caller is returned verbatim,
// skipping decomposition, synonym expansion, and the MaxSubQueries
// bound; generated lists hold 1 to MaxSubQueries entries.
func Expand(query string, explicit []string, it types.Intent) []string {
	if len(explicit) > 0 {
		return explicit
	}

	var subs []string
	switch it {
	case types.IntentFactual:
		subs = []string{withSuffix(query, "explained")}
	case types.IntentTutorial:
		subs = []string{withSuffix(query, "tutorial", "guide")}
	case types.IntentResource:
		subs = []string{withSuffix(query, "official documentation", "docs")}
	case types.IntentNews:
		subs = []string{withSuffix(query, "news")}
	case types.IntentComparison:
		subs = expandComparison(query)
	case types.IntentExploratory:
		subs = []string{query + " overview", query + " ecosystem", query + " use cases"}
	case types.IntentAcademic:
		subs = expandAcademic(query)
	default:
		subs = []string{query}
	}

	for i := range subs {
		subs[i] = applySynonyms(subs[i])
	}
	if len(subs) > MaxSubQueries {
		subs = subs[:MaxSubQueries]
	}
	return subs
}

// withSuffix appends suffix unless the query already carries it (or one of
// the listed equivalents).
func withSuffix(query, suffix string, equivalents ...string) string {
	lowered := strings.ToLower(query)
	for _, s := range append([]string{suffix}, equivalents...) {
		if strings.Contains(lowered, s) {
			return query
		}
	}
	return query + " " + suffix
}

// expandComparison produces the raw query plus an "advantages" sub-query per
// compared entity. Entities come from splitting on a recognized connector:
// the last token before it and the first token after it.
func expandComparison(query string) []string {
	a, b, ok := splitComparison(query)
	if !ok {
		return []string{query}
	}
	return []string{query, a + " advantages", b + " advantages"}
}

func splitComparison(query string) (a, b string, ok bool) {
	lowered := strings.ToLower(query)
	for _, conn := range comparisonConnectors {
		idx := strings.Index(lowered, conn)
		if idx < 0 {
			continue
		}
		left := strings.Fields(query[:idx])
		right := strings.Fields(query[idx+len(conn):])
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		return left[len(left)-1], right[0], true
	}

	// Chinese comparison: "A和B的区别".
	if i := strings.Index(query, "和"); i >= 0 {
		if j := strings.Index(query, "的区别"); j > i {
			a = strings.TrimSpace(query[:i])
			b = strings.TrimSpace(query[i+len("和") : j])
			if a != "" && b != "" {
				return a, b, true
			}
		}
	}
	return "", "", false
}

// expandAcademic produces the original query, an English-term variant when
// the query contains Chinese technical terms, and a year-qualified variant.
func expandAcademic(query string) []string {
	subs := []string{query}
	if variant := englishVariant(query); variant != "" && variant != query {
		subs = append(subs, variant)
	}
	subs = append(subs, query+" "+strconv.Itoa(time.Now().UTC().Year()))
	return subs
}

// englishVariant maps known Chinese technical terms to English and drops
// any remaining Han characters. Returns "" when nothing translatable
// remains.
func englishVariant(query string) string {
	if !containsHan(query) {
		return ""
	}
	out := query
	for zh, en := range zhTerms {
		out = strings.ReplaceAll(out, zh, " "+en+" ")
	}
	var b strings.Builder
	for _, r := range out {
		if !unicode.Is(unicode.Han, r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// applySynonyms replaces known abbreviation tokens with their expanded form.
func applySynonyms(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		if full, ok := synonyms[strings.ToLower(f)]; ok {
			fields[i] = full
		}
	}
	return strings.Join(fields, " ")
}
