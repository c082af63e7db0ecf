// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/metasearch/internal/providers"
	"github.com/pdiddy/metasearch/pkg/types"
)

// stubProvider is a scriptable provider for orchestration tests. Its
// search function may be called concurrently.
type stubProvider struct {
	name       string
	configured bool
	answer     string

	mu    sync.Mutex
	calls []string
	fn    func(query string) ([]types.RawHit, error)
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Configured() bool { return s.configured }

func (s *stubProvider) Search(ctx context.Context, query string, opts providers.Options) ([]types.RawHit, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(query)
	}
	return []types.RawHit{{
		Title:    fmt.Sprintf("%s result for %s", s.name, query),
		URL:      fmt.Sprintf("https://%s.example/%s", s.name, query),
		Provider: s.name,
	}}, nil
}

func (s *stubProvider) SearchWithAnswer(ctx context.Context, query string, opts providers.Options) ([]types.RawHit, string, error) {
	hits, err := s.Search(ctx, query, opts)
	return hits, s.answer, err
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func hitsFor(name string, urls ...string) func(string) ([]types.RawHit, error) {
	return func(query string) ([]types.RawHit, error) {
		var out []types.RawHit
		for _, u := range urls {
			out = append(out, types.RawHit{Title: u, URL: u, Provider: name})
		}
		return out, nil
	}
}

func newTestOrchestrator(cfg types.EngineConfig, ps ...providers.Provider) *Orchestrator {
	return NewOrchestrator(ps, nil, cfg, nil)
}

func TestRetrieveFansOutAllPairs(t *testing.T) {
	exa := &stubProvider{name: "exa", configured: true}
	tavily := &stubProvider{name: "tavily", configured: true}
	grok := &stubProvider{name: "grok", configured: true}
	orch := newTestOrchestrator(types.EngineConfig{}, exa, tavily, grok)

	subqueries := []string{"q1", "q2", "q3"}
	ret, err := orch.Retrieve(context.Background(), subqueries, types.ModeDeep, "")
	require.NoError(t, err)
	require.NotEmpty(t, ret.RequestID)

	assert.Equal(t, 3, exa.callCount())
	assert.Equal(t, 3, tavily.callCount())
	assert.Equal(t, 3, grok.callCount())
	for _, name := range []string{"exa", "tavily", "grok"} {
		assert.Equal(t, types.ProviderOK, ret.ProviderStatus[name].State)
	}
}

func TestRetrieveModeSelectsProviders(t *testing.T) {
	exa := &stubProvider{name: "exa", configured: true}
	tavily := &stubProvider{name: "tavily", configured: true}
	grok := &stubProvider{name: "grok", configured: true}
	orch := newTestOrchestrator(types.EngineConfig{}, exa, tavily, grok)

	_, err := orch.Retrieve(context.Background(), []string{"q"}, types.ModeFast, "")
	require.NoError(t, err)
	assert.Equal(t, 1, exa.callCount())
	assert.Zero(t, tavily.callCount())
	assert.Zero(t, grok.callCount())
}

func TestRetrieveFastFallsBackToGrok(t *testing.T) {
	exa := &stubProvider{name: "exa", configured: false}
	grok := &stubProvider{name: "grok", configured: true}
	orch := newTestOrchestrator(types.EngineConfig{}, exa, grok)

	ret, err := orch.Retrieve(context.Background(), []string{"q"}, types.ModeFast, "")
	require.NoError(t, err)
	assert.Zero(t, exa.callCount())
	assert.Equal(t, 1, grok.callCount())
	assert.Equal(t, types.ProviderSkipped, ret.ProviderStatus["exa"].State)
	assert.Equal(t, string(providers.KindAuthMissing), ret.ProviderStatus["exa"].Reason)
	assert.Equal(t, types.ProviderOK, ret.ProviderStatus["grok"].State)
}

// A provider failing on every sub-query yields an empty-but-valid
// response, never an error.
func TestRetrieveAllFailuresIsNotFatal(t *testing.T) {
	boom := &providers.ProviderError{Provider: "exa", Kind: providers.KindTimeout, Err: context.DeadlineExceeded}
	exa := &stubProvider{name: "exa", configured: true, fn: func(string) ([]types.RawHit, error) { return nil, boom }}
	orch := newTestOrchestrator(types.EngineConfig{}, exa)

	ret, err := orch.Retrieve(context.Background(), []string{"q1", "q2"}, types.ModeFast, "")
	require.NoError(t, err)
	assert.Empty(t, ret.Results)
	assert.Equal(t, types.ProviderSkipped, ret.ProviderStatus["exa"].State)
	assert.Equal(t, string(providers.KindTimeout), ret.ProviderStatus["exa"].Reason)
}

func TestRetrievePartialFailureIsDegraded(t *testing.T) {
	var n int
	var mu sync.Mutex
	exa := &stubProvider{name: "exa", configured: true, fn: func(query string) ([]types.RawHit, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		if query == "bad" {
			return nil, &providers.ProviderError{Provider: "exa", Kind: providers.KindRateLimited}
		}
		return []types.RawHit{{Title: query, URL: "https://exa.example/" + query, Provider: "exa"}}, nil
	}}
	orch := newTestOrchestrator(types.EngineConfig{}, exa)

	ret, err := orch.Retrieve(context.Background(), []string{"good", "bad"}, types.ModeFast, "")
	require.NoError(t, err)
	assert.Len(t, ret.Results, 1)
	assert.Equal(t, types.ProviderDegraded, ret.ProviderStatus["exa"].State)
	assert.Equal(t, string(providers.KindRateLimited), ret.ProviderStatus["exa"].Reason)
}

func TestRetrieveNoProvidersFatal(t *testing.T) {
	exa := &stubProvider{name: "exa", configured: false}
	orch := newTestOrchestrator(types.EngineConfig{}, exa)

	_, err := orch.Retrieve(context.Background(), []string{"q"}, types.ModeDeep, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoProviders))
}

func TestRetrieveNoProvidersWithBaselineSucceeds(t *testing.T) {
	exa := &stubProvider{name: "exa", configured: false}
	orch := newTestOrchestrator(types.EngineConfig{BaselineAvailable: true}, exa)

	ret, err := orch.Retrieve(context.Background(), []string{"q"}, types.ModeDeep, "")
	require.NoError(t, err)
	assert.Empty(t, ret.Results)
	assert.Equal(t, types.ProviderSkipped, ret.ProviderStatus["exa"].State)
}

func TestRetrieveBaselineProviderAlwaysDispatched(t *testing.T) {
	baseline := &stubProvider{name: BaselineName, configured: true}
	orch := NewOrchestrator(nil, baseline, types.EngineConfig{}, nil)

	ret, err := orch.Retrieve(context.Background(), []string{"q"}, types.ModeDeep, "")
	require.NoError(t, err)
	assert.Equal(t, 1, baseline.callCount())
	assert.Len(t, ret.Results, 1)
}

// Identical provider outcomes must yield identical merged output no
// matter how goroutines interleave.
func TestRetrieveDeterministicOrder(t *testing.T) {
	mk := func() *Orchestrator {
		exa := &stubProvider{name: "exa", configured: true, fn: hitsFor("exa", "https://shared.example/a", "https://exa.example/1")}
		tavily := &stubProvider{name: "tavily", configured: true, fn: hitsFor("tavily", "https://shared.example/a", "https://tavily.example/1")}
		grok := &stubProvider{name: "grok", configured: true, fn: hitsFor("grok", "https://grok.example/1")}
		return newTestOrchestrator(types.EngineConfig{MaxParallel: 2}, exa, tavily, grok)
	}

	first, err := mk().Retrieve(context.Background(), []string{"q1", "q2"}, types.ModeDeep, "")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := mk().Retrieve(context.Background(), []string{"q1", "q2"}, types.ModeDeep, "")
		require.NoError(t, err)
		require.Len(t, again.Results, len(first.Results))
		for j := range first.Results {
			assert.Equal(t, first.Results[j].URL, again.Results[j].URL)
			assert.Equal(t, first.Results[j].Sources, again.Results[j].Sources)
		}
	}
}

// A provider that fails every call yields the same merged results as one
// with no credentials at all; only provider_status differs.
func TestRetrieveDegradationEquivalence(t *testing.T) {
	limited := &stubProvider{name: "tavily", configured: true, fn: func(string) ([]types.RawHit, error) {
		return nil, &providers.ProviderError{Provider: "tavily", Kind: providers.KindRateLimited}
	}}
	absent := &stubProvider{name: "tavily", configured: false}
	exaHits := hitsFor("exa", "https://exa.example/a", "https://exa.example/b")

	withLimited := newTestOrchestrator(types.EngineConfig{},
		&stubProvider{name: "exa", configured: true, fn: exaHits}, limited)
	withAbsent := newTestOrchestrator(types.EngineConfig{},
		&stubProvider{name: "exa", configured: true, fn: exaHits}, absent)

	a, err := withLimited.Retrieve(context.Background(), []string{"q"}, types.ModeDeep, "")
	require.NoError(t, err)
	b, err := withAbsent.Retrieve(context.Background(), []string{"q"}, types.ModeDeep, "")
	require.NoError(t, err)

	require.Len(t, a.Results, len(b.Results))
	for i := range a.Results {
		assert.Equal(t, b.Results[i].URL, a.Results[i].URL)
	}
	assert.Equal(t, types.ProviderSkipped, a.ProviderStatus["tavily"].State)
	assert.Equal(t, string(providers.KindRateLimited), a.ProviderStatus["tavily"].Reason)
	assert.Equal(t, string(providers.KindAuthMissing), b.ProviderStatus["tavily"].Reason)
}

func TestRetrieveAnswerMode(t *testing.T) {
	tavily := &stubProvider{name: "tavily", configured: true, answer: "Go 1.25 was released in August 2025."}
	orch := newTestOrchestrator(types.EngineConfig{}, tavily)

	ret, err := orch.Retrieve(context.Background(), []string{"when was go 1.25 released"}, types.ModeAnswer, "")
	require.NoError(t, err)
	assert.Equal(t, "Go 1.25 was released in August 2025.", ret.Answer)
}

func TestRetrieveNoAnswerOutsideAnswerMode(t *testing.T) {
	tavily := &stubProvider{name: "tavily", configured: true, answer: "should not surface"}
	orch := newTestOrchestrator(types.EngineConfig{}, tavily)

	ret, err := orch.Retrieve(context.Background(), []string{"q"}, types.ModeDeep, "")
	require.NoError(t, err)
	assert.Empty(t, ret.Answer)
}
