// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,venue,year,citationCount," +
	"influentialCitationCount,url,openAccessPdf,externalIds"

// SemanticScholar queries the Semantic Scholar Academic Graph API. No key
// is required; an optional key raises rate limits.
type SemanticScholar struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	limiter   *rate.Limiter

	// now is stubbed in tests.
	now func() time.Time
}

// NewSemanticScholar builds the adapter. The API key is optional.
func NewSemanticScholar(client *http.Client, apiKey, userAgent string) *SemanticScholar {
	return &SemanticScholar{
		Client:    client,
		APIKey:    apiKey,
		UserAgent: userAgent,
		limiter:   newLimiter(1, 2),
		now:       time.Now,
	}
}

// Name returns the provider identifier.
func (s *SemanticScholar) Name() string { return "semantic_scholar" }

// Configured is always true: the API works without credentials.
func (s *SemanticScholar) Configured() bool { return true }

// Search queries the paper search endpoint and returns hits carrying
// academic metadata (authors, venue, citations, DOI, PDF link).
func (s *SemanticScholar) Search(ctx context.Context, query string, opts Options) ([]types.RawHit, error) {
	if perr := waitLimiter(ctx, s.Name(), s.limiter); perr != nil {
		return nil, perr
	}

	num := numOrDefault(opts.NumResults)
	if num > 100 {
		num = 100
	}
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(num)},
		"fields": {semanticFields},
	}
	if year := s.yearFrom(opts.Freshness); year > 0 {
		params.Set("year", fmt.Sprintf("%d-", year))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, wrapTransport(s.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, wrapTransport(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wrapStatus(s.Name(), resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, malformed(s.Name(), fmt.Errorf("parsing response: %w", err))
	}

	var hits []types.RawHit
	for _, paper := range sr.Data {
		hit, ok := s.toHit(paper)
		if !ok {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *SemanticScholar) toHit(paper semanticPaper) (types.RawHit, bool) {
	doi := paper.ExternalIDs.DOI
	paperURL := paper.URL
	if paperURL == "" && doi != "" {
		paperURL = "https://doi.org/" + doi
	}
	if paperURL == "" {
		return types.RawHit{}, false
	}

	snippet := paper.Abstract
	if len(snippet) > 300 {
		snippet = snippet[:300] + "..."
	}

	meta := map[string]string{}
	if a := formatAuthors(paper.Authors); a != "" {
		meta["authors"] = a
	}
	if paper.Venue != "" {
		meta["venue"] = paper.Venue
	}
	if paper.Year > 0 {
		meta["year"] = strconv.Itoa(paper.Year)
	}
	meta["citations"] = strconv.Itoa(paper.CitationCount)
	if paper.InfluentialCitationCount > 0 {
		meta["influential_citations"] = strconv.Itoa(paper.InfluentialCitationCount)
	}
	if doi != "" {
		meta["doi"] = doi
	}
	if paper.ExternalIDs.ArXiv != "" {
		meta["arxiv_id"] = paper.ExternalIDs.ArXiv
	}
	if paper.OpenAccessPdf.URL != "" {
		meta["pdf_url"] = paper.OpenAccessPdf.URL
	}

	var published time.Time
	if paper.Year > 0 {
		published = time.Date(paper.Year, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	return types.RawHit{
		Title:       paper.Title,
		URL:         paperURL,
		Snippet:     snippet,
		PublishedAt: published,
		Provider:    s.Name(),
		Metadata:    meta,
	}, true
}

// yearFrom converts a freshness window into a lower-bound publication year.
func (s *SemanticScholar) yearFrom(f types.Freshness) int {
	switch f {
	case types.FreshnessDay, types.FreshnessWeek, types.FreshnessMonth:
		return s.now().UTC().Year()
	case types.FreshnessYear:
		return s.now().UTC().Year() - 1
	default:
		return 0
	}
}

// formatAuthors joins the first three author names, with "et al." beyond.
func formatAuthors(authors []semanticAuthor) string {
	var names []string
	for _, a := range authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
		if len(names) == 3 {
			break
		}
	}
	out := strings.Join(names, ", ")
	if len(authors) > 3 && out != "" {
		out += " et al."
	}
	return out
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID                  string              `json:"paperId"`
	Title                    string              `json:"title"`
	Abstract                 string              `json:"abstract"`
	Venue                    string              `json:"venue"`
	Year                     int                 `json:"year"`
	CitationCount            int                 `json:"citationCount"`
	InfluentialCitationCount int                 `json:"influentialCitationCount"`
	URL                      string              `json:"url"`
	Authors                  []semanticAuthor    `json:"authors"`
	OpenAccessPdf            semanticPdf         `json:"openAccessPdf"`
	ExternalIDs              semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticPdf struct {
	URL string `json:"url"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
