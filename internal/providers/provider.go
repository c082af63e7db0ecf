// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package providers implements the search provider adapters. Each adapter
// wraps one external search API behind a uniform Search contract and maps
// that API's failure modes into the shared ProviderError taxonomy.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/metasearch/pkg/types"
)

// Options carries per-call search parameters.
type Options struct {
	// NumResults is the number of results to request (default 5).
	NumResults int
	// Freshness restricts results to a recency window when the provider
	// supports it; adapters without date filtering ignore it.
	Freshness types.Freshness
	// IncludeAnswer asks Tavily for its AI-generated answer; other
	// providers ignore it.
	IncludeAnswer bool
}

// Provider searches a single external source. Adapters carry no shared
// state; each one is independently swappable.
type Provider interface {
	Name() string
	// Configured reports whether the adapter has the credentials it needs.
	// Unconfigured providers are excluded from the participation matrix.
	Configured() bool
	Search(ctx context.Context, query string, opts Options) ([]types.RawHit, error)
}

// AnswerProvider is implemented by adapters that can return an
// AI-generated answer alongside results.
type AnswerProvider interface {
	Provider
	SearchWithAnswer(ctx context.Context, query string, opts Options) ([]types.RawHit, string, error)
}

// ErrorKind classifies a provider failure. Adapters never fail with
// anything outside this taxonomy.
type ErrorKind string

const (
	KindAuthMissing       ErrorKind = "auth_missing"
	KindRateLimited       ErrorKind = "rate_limited"
	KindTimeout           ErrorKind = "timeout"
	KindTransient         ErrorKind = "transient"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// ProviderError is the only error type adapters return.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// authMissing is the fail-fast error for adapters with no credentials.
// It is returned before any network call.
func authMissing(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindAuthMissing}
}

// wrapTransport maps a transport-level error into the taxonomy:
// context deadline and net timeouts become KindTimeout, everything else
// KindTransient.
func wrapTransport(provider string, err error) *ProviderError {
	kind := KindTransient
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// wrapStatus maps a non-200 HTTP status into the taxonomy.
func wrapStatus(provider string, status int) *ProviderError {
	kind := KindTransient
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuthMissing
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: fmt.Errorf("HTTP %d", status)}
}

// malformed wraps a parse failure or contract violation.
func malformed(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindMalformedResponse, Err: err}
}

// waitLimiter blocks on the adapter's client-side token bucket. A nil
// limiter means unlimited.
func waitLimiter(ctx context.Context, provider string, l *rate.Limiter) *ProviderError {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return wrapTransport(provider, err)
	}
	return nil
}

// newLimiter builds the default client-side limiter for an adapter:
// a sustained rate with a small burst, well below provider quotas.
func newLimiter(perSecond float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// freshnessDays converts a freshness window into a day count for
// providers that filter by days.
func freshnessDays(f types.Freshness) int {
	switch f {
	case types.FreshnessDay:
		return 1
	case types.FreshnessWeek:
		return 7
	case types.FreshnessMonth:
		return 30
	case types.FreshnessYear:
		return 365
	default:
		return 0
	}
}
