// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/metasearch/internal/providers"
	"github.com/pdiddy/metasearch/pkg/types"
)

// ErrNoProviders is the only fatal retrieval condition: no eligible
// provider for the requested mode and no baseline tool to fall back on.
var ErrNoProviders = errors.New("no providers available")

// BaselineName tags the caller-injected baseline search tool in sources
// and provider status.
const BaselineName = "baseline"

// modeProviders is the participation matrix: which providers each mode
// fans out to, in dedup priority order. Represented as data so new
// providers or modes are additive.
var modeProviders = map[types.Mode][]string{
	types.ModeFast:     {"exa"},
	types.ModeDeep:     {"exa", "tavily", "grok"},
	types.ModeAnswer:   {"tavily"},
	types.ModeAcademic: {"tavily", "openalex", "semantic_scholar"},
}

// modeFallbacks substitutes a provider when the primary for a mode has no
// credentials: fast mode falls back from Exa to Grok.
var modeFallbacks = map[types.Mode]map[string]string{
	types.ModeFast: {"exa": "grok"},
}

const (
	defaultNumResults  = 5
	defaultCallTimeout = 10 * time.Second
	defaultMaxParallel = 8
)

// Orchestrator dispatches every (sub-query × eligible provider) pair
// concurrently and degrades gracefully when providers fail. It holds no
// per-request state; one Orchestrator serves any number of requests.
type Orchestrator struct {
	registry map[string]providers.Provider
	baseline providers.Provider
	cfg      types.EngineConfig
	logger   *zap.Logger
}

// NewOrchestrator builds an orchestrator over a provider set. baseline is
// the caller-supplied credential-free search tool; it may be nil, in which
// case cfg.BaselineAvailable still records whether the caller could fall
// back to one on its own.
func NewOrchestrator(registry []providers.Provider, baseline providers.Provider, cfg types.EngineConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]providers.Provider, len(registry))
	for _, p := range registry {
		byName[p.Name()] = p
	}
	return &Orchestrator{registry: byName, baseline: baseline, cfg: cfg, logger: logger}
}

// Retrieval is the orchestrator's output for one request.
type Retrieval struct {
	RequestID      string
	Results        []types.MergedResult
	Answer         string
	ProviderStatus map[string]types.ProviderStatus
}

// callSlot holds one (provider × sub-query) task outcome. Slots are
// written by exactly one goroutine each and read only after the join.
type callSlot struct {
	hits   []types.RawHit
	answer string
	err    error
}

// Retrieve fans the sub-queries out to every eligible provider for the
// mode, collects within the request deadline, merges across providers,
// and reports per-provider status. Provider failures never abort the
// request; the only error returned is ErrNoProviders.
func (o *Orchestrator) Retrieve(ctx context.Context, subqueries []string, mode types.Mode, freshness types.Freshness) (*Retrieval, error) {
	requestID := uuid.NewString()
	status := make(map[string]types.ProviderStatus)
	eligible := o.eligible(mode, status)

	// dispatch includes the baseline tool, lowest priority, for every mode.
	dispatch := eligible
	if o.baseline != nil {
		dispatch = append(append([]providers.Provider{}, eligible...), o.baseline)
	}

	if len(dispatch) == 0 {
		if !o.cfg.BaselineAvailable {
			return nil, ErrNoProviders
		}
		// The caller still has its own baseline tool; an empty result set
		// with statuses is a valid, non-fatal outcome.
		return &Retrieval{RequestID: requestID, ProviderStatus: status}, nil
	}

	callTimeout := o.cfg.Timeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	maxParallel := o.cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}

	opts := providers.Options{
		NumResults: o.cfg.NumResults,
		Freshness:  freshness,
	}
	if opts.NumResults <= 0 {
		opts.NumResults = defaultNumResults
	}

	// One slot per (provider × sub-query); tasks never share slots, so the
	// join point is the only coordination.
	slots := make([][]callSlot, len(dispatch))
	for i := range slots {
		slots[i] = make([]callSlot, len(subqueries))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for pi, p := range dispatch {
		for qi, q := range subqueries {
			p, q := p, q
			slot := &slots[pi][qi]
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(gctx, callTimeout)
				defer cancel()

				callOpts := opts
				if ap, ok := p.(providers.AnswerProvider); ok && mode == types.ModeAnswer {
					callOpts.IncludeAnswer = true
					hits, answer, err := ap.SearchWithAnswer(cctx, q, callOpts)
					slot.hits, slot.answer, slot.err = hits, answer, err
				} else {
					hits, err := p.Search(cctx, q, callOpts)
					slot.hits, slot.err = hits, err
				}
				if slot.err != nil {
					o.logger.Warn("provider call failed",
						zap.String("request_id", requestID),
						zap.String("provider", p.Name()),
						zap.String("subquery", q),
						zap.Error(slot.err))
				}
				return nil
			})
		}
	}
	g.Wait()

	// Collect in fixed (provider priority, sub-query order) — never
	// arrival order — so the first-seen merge tie-break is reproducible.
	var all []types.RawHit
	var answer string
	for pi, p := range dispatch {
		succeeded, failed := 0, 0
		var firstErr error
		for qi := range subqueries {
			slot := slots[pi][qi]
			if slot.err != nil {
				failed++
				if firstErr == nil {
					firstErr = slot.err
				}
				continue
			}
			succeeded++
			all = append(all, slot.hits...)
			if answer == "" && slot.answer != "" {
				answer = slot.answer
			}
		}
		status[p.Name()] = callStatus(succeeded, failed, firstErr)
	}

	merged := Merge(all)
	o.logger.Info("retrieval complete",
		zap.String("request_id", requestID),
		zap.String("mode", string(mode)),
		zap.Int("subqueries", len(subqueries)),
		zap.Int("providers", len(dispatch)),
		zap.Int("merged_results", len(merged)))

	return &Retrieval{
		RequestID:      requestID,
		Results:        merged,
		Answer:         answer,
		ProviderStatus: status,
	}, nil
}

// eligible resolves the participation matrix for a mode: unconfigured
// providers are excluded (recorded as skipped/auth_missing) and fallback
// substitutions applied.
func (o *Orchestrator) eligible(mode types.Mode, status map[string]types.ProviderStatus) []providers.Provider {
	var out []providers.Provider
	for _, name := range modeProviders[mode] {
		p, ok := o.registry[name]
		if ok && p.Configured() {
			out = append(out, p)
			continue
		}
		status[name] = types.ProviderStatus{State: types.ProviderSkipped, Reason: string(providers.KindAuthMissing)}

		if sub := modeFallbacks[mode][name]; sub != "" {
			if sp, ok := o.registry[sub]; ok && sp.Configured() {
				out = append(out, sp)
			}
		}
	}
	return out
}

// callStatus summarizes one provider's calls: all succeeded → ok, some →
// degraded, none → skipped with the first error's kind as reason.
func callStatus(succeeded, failed int, firstErr error) types.ProviderStatus {
	switch {
	case failed == 0:
		return types.ProviderStatus{State: types.ProviderOK}
	case succeeded > 0:
		return types.ProviderStatus{State: types.ProviderDegraded, Reason: errReason(firstErr)}
	default:
		return types.ProviderStatus{State: types.ProviderSkipped, Reason: errReason(firstErr)}
	}
}

func errReason(err error) string {
	var perr *providers.ProviderError
	if errors.As(err, &perr) {
		return string(perr.Kind)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
