// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Intent is the classified purpose of a query. It drives the default
// retrieval mode, freshness window, scoring weights, and expansion rule.
type Intent string

const (
	IntentFactual     Intent = "factual"
	IntentStatus      Intent = "status"
	IntentComparison  Intent = "comparison"
	IntentTutorial    Intent = "tutorial"
	IntentExploratory Intent = "exploratory"
	IntentNews        Intent = "news"
	IntentResource    Intent = "resource"
	IntentAcademic    Intent = "academic"
)

// Intents lists every intent in classifier priority order (highest first).
var Intents = []Intent{
	IntentResource,
	IntentNews,
	IntentStatus,
	IntentComparison,
	IntentTutorial,
	IntentAcademic,
	IntentFactual,
	IntentExploratory,
}

// ParseIntent validates an intent string from the CLI or config.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentFactual, IntentStatus, IntentComparison, IntentTutorial,
		IntentExploratory, IntentNews, IntentResource, IntentAcademic:
		return Intent(s), nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// Mode selects which provider subset and retrieval style is used.
type Mode string

const (
	// ModeFast queries the primary semantic provider only, substituting the
	// Grok provider when the primary has no credentials.
	ModeFast Mode = "fast"
	// ModeDeep fans out to all general-web providers in parallel.
	ModeDeep Mode = "deep"
	// ModeAnswer queries Tavily with its AI-generated answer enabled.
	ModeAnswer Mode = "answer"
	// ModeAcademic queries the scholarly providers alongside Tavily.
	ModeAcademic Mode = "academic"
)

// ParseMode validates a mode string from the CLI or config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFast, ModeDeep, ModeAnswer, ModeAcademic:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Freshness restricts results to a recency window.
type Freshness string

const (
	FreshnessNone  Freshness = ""
	FreshnessDay   Freshness = "pd"
	FreshnessWeek  Freshness = "pw"
	FreshnessMonth Freshness = "pm"
	FreshnessYear  Freshness = "py"
)

// ParseFreshness validates a freshness string; empty means no filter.
func ParseFreshness(s string) (Freshness, error) {
	switch Freshness(s) {
	case FreshnessNone, FreshnessDay, FreshnessWeek, FreshnessMonth, FreshnessYear:
		return Freshness(s), nil
	}
	return "", fmt.Errorf("unknown freshness %q (want pd, pw, pm, or py)", s)
}

// Weights is the scoring weight triple for one intent. The three weights
// sum to 1.0 by convention.
type Weights struct {
	Keyword   float64 `yaml:"keyword"`
	Freshness float64 `yaml:"freshness"`
	Authority float64 `yaml:"authority"`
}

// IntentProfile is the immutable per-intent configuration.
type IntentProfile struct {
	Mode      Mode
	Freshness Freshness
	Weights   Weights
}

// Profile returns the configuration for an intent. The switch is exhaustive
// over the closed enum; an unknown value falls back to the exploratory
// profile rather than panicking on bad external input.
func (i Intent) Profile() IntentProfile {
	switch i {
	case IntentFactual:
		return IntentProfile{Mode: ModeAnswer, Weights: Weights{Keyword: 0.4, Freshness: 0.1, Authority: 0.5}}
	case IntentStatus:
		return IntentProfile{Mode: ModeDeep, Freshness: FreshnessWeek, Weights: Weights{Keyword: 0.3, Freshness: 0.5, Authority: 0.2}}
	case IntentComparison:
		return IntentProfile{Mode: ModeDeep, Weights: Weights{Keyword: 0.4, Freshness: 0.2, Authority: 0.4}}
	case IntentTutorial:
		return IntentProfile{Mode: ModeDeep, Weights: Weights{Keyword: 0.4, Freshness: 0.1, Authority: 0.5}}
	case IntentNews:
		return IntentProfile{Mode: ModeDeep, Freshness: FreshnessDay, Weights: Weights{Keyword: 0.3, Freshness: 0.6, Authority: 0.1}}
	case IntentResource:
		return IntentProfile{Mode: ModeFast, Weights: Weights{Keyword: 0.5, Freshness: 0.1, Authority: 0.4}}
	case IntentAcademic:
		return IntentProfile{Mode: ModeAcademic, Freshness: FreshnessYear, Weights: Weights{Keyword: 0.3, Freshness: 0.2, Authority: 0.5}}
	case IntentExploratory:
		return IntentProfile{Mode: ModeDeep, Weights: Weights{Keyword: 0.3, Freshness: 0.2, Authority: 0.5}}
	default:
		return IntentExploratory.Profile()
	}
}
