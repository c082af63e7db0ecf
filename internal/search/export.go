// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/metasearch/pkg/types"
)

// Format selects an export encoding for a response.
type Format string

const (
	FormatJSON      Format = "json"
	FormatMarkdown  Format = "markdown"
	FormatCSV       Format = "csv"
	FormatBibTeX    Format = "bibtex"
	FormatCitations Format = "citations"
)

// ParseFormat validates a format name from the CLI.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatMarkdown, FormatCSV, FormatBibTeX, FormatCitations:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Export writes the response to w in the requested format.
func Export(w io.Writer, resp *Response, format Format) error {
	switch format {
	case FormatJSON:
		return exportJSON(w, resp)
	case FormatMarkdown:
		return exportMarkdown(w, resp)
	case FormatCSV:
		return exportCSV(w, resp)
	case FormatBibTeX:
		return exportBibTeX(w, resp)
	case FormatCitations:
		return exportCitations(w, resp)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// jsonResult mirrors types.MergedResult but omits score fields for
// unscored responses, where a 0.0 score would read as a judgment.
type jsonResult struct {
	URL         string                 `json:"url"`
	Title       string                 `json:"title"`
	Snippet     string                 `json:"snippet,omitempty"`
	PublishedAt string                 `json:"published_date,omitempty"`
	Sources     []string               `json:"sources"`
	Score       *float64               `json:"score,omitempty"`
	Components  *types.ScoreComponents `json:"components,omitempty"`
	Metadata    map[string]string      `json:"metadata,omitempty"`
}

type jsonEnvelope struct {
	RequestID      string                          `json:"request_id"`
	Mode           string                          `json:"mode"`
	Intent         string                          `json:"intent,omitempty"`
	Queries        []string                        `json:"queries"`
	Count          int                             `json:"count"`
	Results        []jsonResult                    `json:"results"`
	Answer         string                          `json:"answer,omitempty"`
	ProviderStatus map[string]types.ProviderStatus `json:"provider_status"`
}

func exportJSON(w io.Writer, resp *Response) error {
	env := jsonEnvelope{
		RequestID:      resp.RequestID,
		Mode:           string(resp.Mode),
		Intent:         string(resp.Intent),
		Queries:        resp.Queries,
		Count:          len(resp.Results),
		Results:        make([]jsonResult, 0, len(resp.Results)),
		Answer:         resp.Answer,
		ProviderStatus: resp.ProviderStatus,
	}
	for _, r := range resp.Results {
		jr := jsonResult{
			URL:      r.URL,
			Title:    r.Title,
			Snippet:  r.Snippet,
			Sources:  r.Sources,
			Metadata: r.Metadata,
		}
		if !r.PublishedAt.IsZero() {
			jr.PublishedAt = r.PublishedAt.Format("2006-01-02")
		}
		if resp.Scored {
			score := r.Score
			jr.Score = &score
			jr.Components = r.Components
		}
		env.Results = append(env.Results, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func exportMarkdown(w io.Writer, resp *Response) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search results\n\n")
	if resp.Intent != "" {
		fmt.Fprintf(&b, "Intent: %s · Mode: %s\n\n", resp.Intent, resp.Mode)
	} else {
		fmt.Fprintf(&b, "Mode: %s\n\n", resp.Mode)
	}
	if resp.Answer != "" {
		fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(resp.Answer, "\n", "\n> "))
	}
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. [%s](%s)", i+1, mdEscape(r.Title), r.URL)
		if resp.Scored {
			fmt.Fprintf(&b, " — %.3f", r.Score)
		}
		b.WriteString("\n")
		if !r.PublishedAt.IsZero() {
			fmt.Fprintf(&b, "   %s · ", r.PublishedAt.Format("2006-01-02"))
		} else {
			b.WriteString("   ")
		}
		fmt.Fprintf(&b, "via %s\n", strings.Join(r.Sources, ", "))
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func mdEscape(s string) string {
	return strings.NewReplacer("[", "\\[", "]", "\\]").Replace(s)
}

func exportCSV(w io.Writer, resp *Response) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "title", "url", "published_date", "sources", "score"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, r := range resp.Results {
		date := ""
		if !r.PublishedAt.IsZero() {
			date = r.PublishedAt.Format("2006-01-02")
		}
		score := ""
		if resp.Scored {
			score = fmt.Sprintf("%.4f", r.Score)
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			r.Title,
			r.URL,
			date,
			strings.Join(r.Sources, ";"),
			score,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportBibTeX emits one @misc (or @article, when a venue is known) entry
// per result. Works best for academic-mode results, where provider
// metadata carries authors, year, and DOI.
func exportBibTeX(w io.Writer, resp *Response) error {
	for i, r := range resp.Results {
		kind := "misc"
		if r.Metadata["venue"] != "" {
			kind = "article"
		}
		fmt.Fprintf(w, "@%s{%s,\n", kind, bibKey(r, i))
		fmt.Fprintf(w, "  title = {%s},\n", bibEscape(r.Title))
		if authors := r.Metadata["authors"]; authors != "" {
			fmt.Fprintf(w, "  author = {%s},\n", bibEscape(strings.ReplaceAll(authors, ", ", " and ")))
		}
		if venue := r.Metadata["venue"]; venue != "" {
			fmt.Fprintf(w, "  journal = {%s},\n", bibEscape(venue))
		}
		if year := bibYear(r); year != "" {
			fmt.Fprintf(w, "  year = {%s},\n", year)
		}
		if doi := r.Metadata["doi"]; doi != "" {
			fmt.Fprintf(w, "  doi = {%s},\n", doi)
		}
		fmt.Fprintf(w, "  url = {%s},\n", r.URL)
		fmt.Fprintf(w, "}\n\n")
	}
	return nil
}

func bibYear(r types.MergedResult) string {
	if y := r.Metadata["year"]; y != "" {
		return y
	}
	if !r.PublishedAt.IsZero() {
		return fmt.Sprintf("%d", r.PublishedAt.Year())
	}
	return ""
}

// bibKey derives a citation key from the first author's surname and
// year, falling back to a positional key.
func bibKey(r types.MergedResult, i int) string {
	year := bibYear(r)
	authors := r.Metadata["authors"]
	if authors == "" {
		return fmt.Sprintf("result%d%s", i+1, year)
	}
	first := strings.SplitN(authors, ",", 2)[0]
	parts := strings.Fields(first)
	if len(parts) == 0 {
		return fmt.Sprintf("result%d%s", i+1, year)
	}
	surname := strings.ToLower(parts[len(parts)-1])
	var clean strings.Builder
	for _, ch := range surname {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			clean.WriteRune(ch)
		}
	}
	if clean.Len() == 0 {
		return fmt.Sprintf("result%d%s", i+1, year)
	}
	return clean.String() + year
}

func bibEscape(s string) string {
	return strings.NewReplacer("{", "\\{", "}", "\\}", "&", "\\&", "%", "\\%").Replace(s)
}

// exportCitations writes numbered plain-text references, with citation
// counts appended when the provider reported them.
func exportCitations(w io.Writer, resp *Response) error {
	for i, r := range resp.Results {
		var b strings.Builder
		fmt.Fprintf(&b, "[%d] ", i+1)
		if authors := r.Metadata["authors"]; authors != "" {
			fmt.Fprintf(&b, "%s. ", authors)
		}
		fmt.Fprintf(&b, "%s.", r.Title)
		if venue := r.Metadata["venue"]; venue != "" {
			fmt.Fprintf(&b, " %s.", venue)
		}
		if year := bibYear(r); year != "" {
			fmt.Fprintf(&b, " %s.", year)
		}
		fmt.Fprintf(&b, " %s", r.URL)
		if c := r.Metadata["citations"]; c != "" {
			fmt.Fprintf(&b, " (cited by %s)", c)
		}
		b.WriteString("\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// Formats lists the valid export format names, for CLI help text.
func Formats() []string {
	names := []string{
		string(FormatJSON),
		string(FormatMarkdown),
		string(FormatCSV),
		string(FormatBibTeX),
		string(FormatCitations),
	}
	sort.Strings(names)
	return names
}
