// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/metasearch/pkg/types"
)

// exaAPIBase is the Exa search endpoint. Declared as a var so tests can
// substitute an httptest server.
var exaAPIBase = "https://api.exa.ai/search"

// Exa queries the Exa semantic search API. Strong for technical and
// academic content; the primary provider in fast mode.
type Exa struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	limiter   *rate.Limiter
}

// NewExa builds the Exa adapter. An empty apiKey leaves the adapter
// unconfigured.
func NewExa(client *http.Client, apiKey, userAgent string) *Exa {
	return &Exa{Client: client, APIKey: apiKey, UserAgent: userAgent, limiter: newLimiter(5, 5)}
}

// Name returns the provider identifier.
func (e *Exa) Name() string { return "exa" }

// Configured reports whether an API key is present.
func (e *Exa) Configured() bool { return e.APIKey != "" }

// Search queries Exa and returns normalized hits.
func (e *Exa) Search(ctx context.Context, query string, opts Options) ([]types.RawHit, error) {
	if !e.Configured() {
		return nil, authMissing(e.Name())
	}
	if perr := waitLimiter(ctx, e.Name(), e.limiter); perr != nil {
		return nil, perr
	}

	body, err := json.Marshal(map[string]any{
		"query":      query,
		"numResults": numOrDefault(opts.NumResults),
		"type":       "auto",
	})
	if err != nil {
		return nil, malformed(e.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, exaAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, wrapTransport(e.Name(), err)
	}
	req.Header.Set("x-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, wrapTransport(e.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wrapStatus(e.Name(), resp.StatusCode)
	}

	var er exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, malformed(e.Name(), fmt.Errorf("parsing response: %w", err))
	}

	var hits []types.RawHit
	for _, r := range er.Results {
		if r.URL == "" {
			continue
		}
		snippet := r.Text
		if snippet == "" {
			snippet = r.Snippet
		}
		hits = append(hits, types.RawHit{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     snippet,
			PublishedAt: parseDate(r.PublishedDate),
			Provider:    e.Name(),
			NativeScore: r.Score,
		})
	}
	return hits, nil
}

// Exa API JSON structures.
type exaResponse struct {
	Results []exaResult `json:"results"`
}

type exaResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Text          string  `json:"text"`
	Snippet       string  `json:"snippet"`
	PublishedDate string  `json:"publishedDate"`
	Score         float64 `json:"score"`
}

func numOrDefault(n int) int {
	if n <= 0 {
		return 5
	}
	return n
}

// parseDate tries the date layouts providers actually emit. A zero time
// means unparseable or absent.
func parseDate(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
