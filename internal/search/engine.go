// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/internal/expand"
	"github.com/pdiddy/metasearch/internal/intent"
	"github.com/pdiddy/metasearch/pkg/types"
)

// Request carries one search invocation. Zero values mean "let the
// intent profile decide": an unset Mode or Freshness is filled from the
// resolved intent, while explicit values always win.
type Request struct {
	Query        string
	SubQueries   []string // explicit sub-queries, used verbatim
	Intent       *types.Intent
	AutoClassify bool
	Mode         types.Mode
	Freshness    types.Freshness
	DomainBoosts []string
}

// Response is the engine's output for one request.
type Response struct {
	RequestID      string
	Intent         types.Intent
	Scored         bool
	Mode           types.Mode
	Queries        []string
	Results        []types.MergedResult
	Answer         string
	ProviderStatus map[string]types.ProviderStatus
}

// Engine runs the full pipeline: intent resolution, query expansion,
// concurrent retrieval, scoring, and ranking.
type Engine struct {
	orch      *Orchestrator
	authority *authority.Table
	logger    *zap.Logger
	now       func() time.Time // test hook
}

// NewEngine wires an engine over an orchestrator and an authority table.
// A nil table falls back to the built-in tiers.
func NewEngine(orch *Orchestrator, tbl *authority.Table, logger *zap.Logger) *Engine {
	if tbl == nil {
		tbl = authority.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{orch: orch, authority: tbl, logger: logger, now: time.Now}
}

// Run executes one search request. Without an explicit intent or
// AutoClassify the query passes through untouched: a single sub-query,
// no scoring, results in raw merge order.
func (e *Engine) Run(ctx context.Context, req Request) (*Response, error) {
	scored := req.Intent != nil || req.AutoClassify

	var it types.Intent
	mode := req.Mode
	freshness := req.Freshness
	queries := []string{req.Query}
	if len(req.SubQueries) > 0 {
		queries = req.SubQueries
	}

	if scored {
		it = intent.Classify(req.Query, req.Intent)
		profile := it.Profile()
		if mode == "" {
			mode = profile.Mode
		}
		if freshness == "" {
			freshness = profile.Freshness
		}
		queries = expand.Expand(req.Query, req.SubQueries, it)
	} else if mode == "" {
		mode = types.ModeDeep
	}

	e.logger.Debug("request resolved",
		zap.String("intent", string(it)),
		zap.Bool("scored", scored),
		zap.String("mode", string(mode)),
		zap.String("freshness", string(freshness)),
		zap.Strings("queries", queries))

	ret, err := e.orch.Retrieve(ctx, queries, mode, freshness)
	if err != nil {
		return nil, err
	}

	results := ret.Results
	if scored {
		terms := QueryTerms(req.Query)
		weights := it.Profile().Weights
		now := e.now()
		for i := range results {
			comps, total := Score(results[i], terms, weights, e.authority, req.DomainBoosts, now)
			results[i].Components = &comps
			results[i].Score = total
		}
		Rank(results)
	}

	return &Response{
		RequestID:      ret.RequestID,
		Intent:         it,
		Scored:         scored,
		Mode:           mode,
		Queries:        queries,
		Results:        results,
		Answer:         ret.Answer,
		ProviderStatus: ret.ProviderStatus,
	}, nil
}
