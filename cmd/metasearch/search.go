// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/internal/history"
	"github.com/pdiddy/metasearch/internal/providers"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search providers and rank the merged results",
	Long: `Search fans the query out to the providers selected by the mode,
deduplicates results across them, and prints the merged list.

Without --intent or --classify the query is sent as-is and results keep
their raw merge order. With an intent (explicit or classified) the query
is expanded into up to three sub-queries and results are scored by the
intent's keyword/freshness/authority weights.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subQueries, _ := cmd.Flags().GetStringSlice("queries")

		var query string
		switch {
		case len(args) == 1 && len(subQueries) > 0:
			return fmt.Errorf("pass either a query argument or --queries, not both")
		case len(args) == 1:
			query = strings.TrimSpace(args[0])
		case len(subQueries) > 0:
			query = subQueries[0]
		}
		if query == "" {
			return fmt.Errorf("query must not be empty")
		}

		req := search.Request{Query: query, SubQueries: subQueries}

		if v, _ := cmd.Flags().GetString("intent"); v != "" {
			it, err := types.ParseIntent(v)
			if err != nil {
				return err
			}
			req.Intent = &it
		}
		req.AutoClassify, _ = cmd.Flags().GetBool("classify")

		if v, _ := cmd.Flags().GetString("mode"); v != "" {
			mode, err := types.ParseMode(v)
			if err != nil {
				return err
			}
			req.Mode = mode
		}
		if v, _ := cmd.Flags().GetString("freshness"); v != "" {
			f, err := types.ParseFreshness(v)
			if err != nil {
				return err
			}
			req.Freshness = f
		}
		req.DomainBoosts, _ = cmd.Flags().GetStringSlice("domain-boost")

		formatName, _ := cmd.Flags().GetString("export")
		format, err := search.ParseFormat(formatName)
		if err != nil {
			return err
		}

		cfg := engineConfig(cmd)
		tbl, err := loadAuthority()
		if err != nil {
			return err
		}

		engine := search.NewEngine(newOrchestrator(cfg), tbl, logger)

		ctx := cmd.Context()
		if cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()
		}

		resp, err := engine.Run(ctx, req)
		if err != nil {
			return searchErr(err)
		}
		return emit(cmd, query, resp, format)
	},
}

func init() {
	searchCmd.Flags().String("intent", "", "explicit intent (factual, status, comparison, tutorial, exploratory, news, resource, academic)")
	searchCmd.Flags().Bool("classify", false, "auto-classify intent from the query text")
	searchCmd.Flags().String("mode", "", "retrieval mode (fast, deep, answer, academic); default follows the intent")
	searchCmd.Flags().String("freshness", "", "recency window (pd, pw, pm, py); default follows the intent")
	searchCmd.Flags().StringSlice("queries", nil, "explicit sub-queries, bypassing expansion (instead of a query argument)")
	searchCmd.Flags().StringSlice("domain-boost", nil, "domains whose results get an authority boost")
	searchCmd.Flags().IntP("num", "n", 0, "results per provider per sub-query")
	searchCmd.Flags().String("export", "json", "output format: "+strings.Join(search.Formats(), ", "))
	searchCmd.Flags().Duration("timeout", 0, "per-provider call timeout")
	searchCmd.Flags().Bool("save", false, "archive this search in history")

	rootCmd.AddCommand(searchCmd)
}

// engineConfig merges config file values with flag overrides.
func engineConfig(cmd *cobra.Command) types.EngineConfig {
	cfg := types.EngineConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		NumResults:        viper.GetInt("num_results"),
		RequestTimeout:    viper.GetDuration("request_timeout"),
		MaxParallel:       viper.GetInt("max_parallel"),
		BaselineAvailable: viper.GetBool("baseline_available"),
	}
	if n, _ := cmd.Flags().GetInt("num"); n > 0 {
		cfg.NumResults = n
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// newOrchestrator wires the provider registry from resolved credentials.
func newOrchestrator(cfg types.EngineConfig) *search.Orchestrator {
	client := &http.Client{Timeout: cfg.Timeout}
	registry := []providers.Provider{
		providers.NewExa(client, creds.ExaAPIKey, cfg.UserAgent),
		providers.NewTavily(client, creds.TavilyAPIKey, cfg.UserAgent),
		providers.NewGrok(client, creds.GrokAPIURL, creds.GrokAPIKey, creds.GrokModel, cfg.UserAgent),
		providers.NewSemanticScholar(client, creds.SemanticScholarAPIKey, cfg.UserAgent),
		providers.NewOpenAlex(client, creds.OpenAlexEmail, cfg.UserAgent),
	}
	return search.NewOrchestrator(registry, nil, cfg, logger)
}

// loadAuthority reads the authority table named in config, falling back
// to the built-in tiers.
func loadAuthority() (*authority.Table, error) {
	path := viper.GetString("authority_file")
	tbl, err := authority.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading authority table: %w", err)
	}
	return tbl, nil
}

// emit writes the response in the selected format and archives it when
// --save is set.
func emit(cmd *cobra.Command, query string, resp *search.Response, format search.Format) error {
	if err := search.Export(os.Stdout, resp, format); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := history.Open(historyConfig())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()
		rec, err := store.SaveResponse(cmd.Context(), query, string(resp.Intent), string(resp.Mode), resp.Results)
		if err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved search %s\n", rec.ID)
	}
	return nil
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		Path:    viper.GetString("history.path"),
		MaxList: viper.GetInt("history.max_list"),
	}
}

// searchErr maps engine failures to user-facing messages.
func searchErr(err error) error {
	if errors.Is(err, search.ErrNoProviders) {
		return fmt.Errorf("no providers available: configure at least one API key in .secrets/ or the environment")
	}
	return err
}
