// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/metasearch/pkg/types"
)

func sampleResponse(scored bool) *Response {
	return &Response{
		RequestID: "11111111-2222-3333-4444-555555555555",
		Intent:    types.IntentAcademic,
		Scored:    scored,
		Mode:      types.ModeAcademic,
		Queries:   []string{"raft consensus"},
		Results: []types.MergedResult{
			{
				URL:         "https://arxiv.org/abs/1409.0001",
				Title:       "In Search of an Understandable Consensus Algorithm",
				Snippet:     "Raft is a consensus algorithm for managing a replicated log.",
				PublishedAt: time.Date(2014, 5, 20, 0, 0, 0, 0, time.UTC),
				Sources:     []string{"semantic_scholar", "openalex"},
				Score:       0.91,
				Components:  &types.ScoreComponents{KeywordMatch: 1, FreshnessScore: 0.1, AuthorityScore: 1},
				Metadata: map[string]string{
					"authors":   "Diego Ongaro, John Ousterhout",
					"venue":     "USENIX ATC",
					"year":      "2014",
					"citations": "5000",
					"doi":       "10.5555/2643634.2643666",
				},
			},
			{
				URL:     "https://example.com/raft-notes",
				Title:   "Raft notes",
				Sources: []string{"tavily"},
				Score:   0.42,
			},
		},
		ProviderStatus: map[string]types.ProviderStatus{
			"tavily": {State: types.ProviderOK},
		},
	}
}

func TestExportJSONScored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResponse(true), FormatJSON))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "academic", env["mode"])
	assert.Equal(t, "academic", env["intent"])
	assert.EqualValues(t, 2, env["count"])

	results := env["results"].([]any)
	first := results[0].(map[string]any)
	assert.InDelta(t, 0.91, first["score"], 1e-9)
	assert.Equal(t, "2014-05-20", first["published_date"])
	assert.Contains(t, first, "components")
}

func TestExportJSONUnscoredOmitsScores(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResponse(false), FormatJSON))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	first := env["results"].([]any)[0].(map[string]any)
	assert.NotContains(t, first, "score")
	assert.NotContains(t, first, "components")
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResponse(true), FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"rank", "title", "url", "published_date", "sources", "score"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "semantic_scholar;openalex", rows[1][4])
	assert.Equal(t, "", rows[2][3], "undated result leaves date empty")
}

func TestExportBibTeX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResponse(true), FormatBibTeX))
	out := buf.String()

	assert.Contains(t, out, "@article{ongaro2014,")
	assert.Contains(t, out, "author = {Diego Ongaro and John Ousterhout},")
	assert.Contains(t, out, "journal = {USENIX ATC},")
	assert.Contains(t, out, "doi = {10.5555/2643634.2643666},")
	assert.Contains(t, out, "@misc{result2,", "no-metadata result falls back to positional key")
}

func TestExportCitations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResponse(true), FormatCitations))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[1] Diego Ongaro, John Ousterhout."))
	assert.Contains(t, lines[0], "(cited by 5000)")
	assert.NotContains(t, lines[1], "cited by")
}

func TestExportMarkdown(t *testing.T) {
	resp := sampleResponse(true)
	resp.Answer = "Raft was published in 2014."
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, resp, FormatMarkdown))
	out := buf.String()

	assert.Contains(t, out, "Intent: academic · Mode: academic")
	assert.Contains(t, out, "> Raft was published in 2014.")
	assert.Contains(t, out, "1. [In Search of an Understandable Consensus Algorithm](https://arxiv.org/abs/1409.0001) — 0.910")
	assert.Contains(t, out, "via semantic_scholar, openalex")
}

func TestParseFormat(t *testing.T) {
	for _, name := range Formats() {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat accepted unknown format")
	}
}
