package types

import "time"

// HTTPConfig holds shared HTTP settings used by provider adapters.
type HTTPConfig struct {
	// Timeout is the per-call HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "metasearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EngineConfig holds settings for one retrieval request.
type EngineConfig struct {
	HTTPConfig `yaml:",inline"`

	// NumResults is the number of results requested per provider per
	// sub-query (default 5).
	NumResults int `json:"num_results" yaml:"num_results"`

	// RequestTimeout bounds the whole retrieval fan-out; in-flight provider
	// calls are abandoned when it elapses (default 30s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// MaxParallel caps concurrent provider calls across all sub-queries
	// (default 8).
	MaxParallel int `json:"max_parallel" yaml:"max_parallel"`

	// BaselineAvailable reports whether the caller has a credential-free
	// baseline search tool to fall back on. When false and no engine
	// provider is eligible, retrieval fails outright.
	BaselineAvailable bool `json:"baseline_available" yaml:"baseline_available"`
}

// HistoryConfig holds settings for the optional search history archive.
type HistoryConfig struct {
	// Path is the SQLite database file (default ~/.metasearch/history.db).
	Path string `json:"path" yaml:"path"`

	// MaxList is the default number of rows the history listing shows.
	MaxList int `json:"max_list" yaml:"max_list"`
}
