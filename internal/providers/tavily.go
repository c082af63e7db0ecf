// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/metasearch/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// Tavily queries the Tavily web search API. The only provider that can
// return an AI-generated answer, so answer mode routes through it.
type Tavily struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	limiter   *rate.Limiter
}

// NewTavily builds the Tavily adapter. An empty apiKey leaves the adapter
// unconfigured.
func NewTavily(client *http.Client, apiKey, userAgent string) *Tavily {
	return &Tavily{Client: client, APIKey: apiKey, UserAgent: userAgent, limiter: newLimiter(5, 5)}
}

// Name returns the provider identifier.
func (t *Tavily) Name() string { return "tavily" }

// Configured reports whether an API key is present.
func (t *Tavily) Configured() bool { return t.APIKey != "" }

// Search queries Tavily and returns normalized hits.
func (t *Tavily) Search(ctx context.Context, query string, opts Options) ([]types.RawHit, error) {
	hits, _, err := t.SearchWithAnswer(ctx, query, opts)
	return hits, err
}

// SearchWithAnswer queries Tavily, optionally requesting its AI answer.
// The answer string is empty unless opts.IncludeAnswer is set and Tavily
// produced one.
func (t *Tavily) SearchWithAnswer(ctx context.Context, query string, opts Options) ([]types.RawHit, string, error) {
	if !t.Configured() {
		return nil, "", authMissing(t.Name())
	}
	if perr := waitLimiter(ctx, t.Name(), t.limiter); perr != nil {
		return nil, "", perr
	}

	payload := map[string]any{
		"api_key":        t.APIKey,
		"query":          query,
		"max_results":    numOrDefault(opts.NumResults),
		"include_answer": opts.IncludeAnswer,
	}
	if days := freshnessDays(opts.Freshness); days > 0 {
		payload["days"] = days
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", malformed(t.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, "", wrapTransport(t.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.UserAgent)

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, "", wrapTransport(t.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", wrapStatus(t.Name(), resp.StatusCode)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, "", malformed(t.Name(), fmt.Errorf("parsing response: %w", err))
	}

	var hits []types.RawHit
	for _, r := range tr.Results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, types.RawHit{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Content,
			PublishedAt: parseDate(r.PublishedDate),
			Provider:    t.Name(),
			NativeScore: r.Score,
		})
	}
	return hits, tr.Answer, nil
}

// Tavily API JSON structures.
type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	PublishedDate string  `json:"published_date"`
	Score         float64 `json:"score"`
}
