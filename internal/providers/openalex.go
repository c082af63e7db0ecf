// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/metasearch/pkg/types"
)

// openAlexAPIBase is the OpenAlex Works search endpoint. Declared as a var
// so tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex Works API. No key is required; a contact
// email grants access to the polite pool.
type OpenAlex struct {
	Client    *http.Client
	Email     string
	UserAgent string
	limiter   *rate.Limiter

	// now is stubbed in tests.
	now func() time.Time
}

// NewOpenAlex builds the adapter. The email is optional.
func NewOpenAlex(client *http.Client, email, userAgent string) *OpenAlex {
	return &OpenAlex{Client: client, Email: email, UserAgent: userAgent, limiter: newLimiter(5, 5), now: time.Now}
}

// Name returns the provider identifier.
func (o *OpenAlex) Name() string { return "openalex" }

// Configured is always true: the API works without credentials.
func (o *OpenAlex) Configured() bool { return true }

// Search queries the Works endpoint and returns hits carrying academic
// metadata.
func (o *OpenAlex) Search(ctx context.Context, query string, opts Options) ([]types.RawHit, error) {
	if perr := waitLimiter(ctx, o.Name(), o.limiter); perr != nil {
		return nil, perr
	}

	num := numOrDefault(opts.NumResults)
	if num > 200 {
		num = 200
	}
	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(num)},
		"page":     {"1"},
	}
	if from := o.fromDate(opts.Freshness); !from.IsZero() {
		params.Set("filter", "from_publication_date:"+from.Format("2006-01-02"))
	}
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, wrapTransport(o.Name(), err)
	}
	req.Header.Set("User-Agent", o.UserAgent)

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, wrapTransport(o.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wrapStatus(o.Name(), resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, malformed(o.Name(), fmt.Errorf("parsing response: %w", err))
	}

	var hits []types.RawHit
	for _, work := range oar.Results {
		hit, ok := o.toHit(work)
		if !ok {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (o *OpenAlex) toHit(work openAlexWork) (types.RawHit, bool) {
	workURL := work.DOI // OpenAlex DOIs are full https://doi.org/ URLs
	if workURL == "" {
		workURL = work.ID
	}
	if workURL == "" {
		return types.RawHit{}, false
	}

	snippet := reconstructAbstract(work.AbstractInvertedIndex)
	if len(snippet) > 300 {
		snippet = snippet[:300] + "..."
	}

	meta := map[string]string{}
	var names []string
	for _, a := range work.Authorships {
		if a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}
		if len(names) == 3 {
			break
		}
	}
	if len(names) > 0 {
		authors := strings.Join(names, ", ")
		if len(work.Authorships) > 3 {
			authors += " et al."
		}
		meta["authors"] = authors
	}
	if work.DOI != "" {
		meta["doi"] = strings.TrimPrefix(work.DOI, "https://doi.org/")
	}
	if work.PublicationYear > 0 {
		meta["year"] = strconv.Itoa(work.PublicationYear)
	}
	meta["citations"] = strconv.Itoa(work.CitedByCount)
	if work.OpenAccess.OAURL != "" {
		meta["pdf_url"] = work.OpenAccess.OAURL
	}

	var published time.Time
	if t, err := time.Parse("2006-01-02", work.PublicationDate); err == nil {
		published = t
	} else if work.PublicationYear > 0 {
		published = time.Date(work.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	return types.RawHit{
		Title:       work.Title,
		URL:         workURL,
		Snippet:     snippet,
		PublishedAt: published,
		Provider:    o.Name(),
		Metadata:    meta,
	}, true
}

// fromDate converts a freshness window into a from_publication_date filter.
func (o *OpenAlex) fromDate(f types.Freshness) time.Time {
	days := freshnessDays(f)
	if days == 0 {
		return time.Time{}
	}
	return o.now().UTC().AddDate(0, 0, -days)
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}
