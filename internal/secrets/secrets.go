// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files, with environment variables taking precedence. Each file in the
// directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: exa-api-key, tavily-api-key, grok-api-key,
// grok-api-url, grok-model, semantic-scholar-api-key, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credentials holds every provider credential the engine knows about.
// Empty fields mean the provider is unconfigured, which excludes it from
// the participation matrix rather than failing the request.
type Credentials struct {
	ExaAPIKey             string
	TavilyAPIKey          string
	GrokAPIKey            string
	GrokAPIURL            string
	GrokModel             string
	SemanticScholarAPIKey string
	OpenAlexEmail         string
}

// keySources maps each credential to its key file name and the environment
// variable that overrides it.
var keySources = []struct {
	file string
	env  string
	set  func(*Credentials, string)
}{
	{"exa-api-key", "EXA_API_KEY", func(c *Credentials, v string) { c.ExaAPIKey = v }},
	{"tavily-api-key", "TAVILY_API_KEY", func(c *Credentials, v string) { c.TavilyAPIKey = v }},
	{"grok-api-key", "GROK_API_KEY", func(c *Credentials, v string) { c.GrokAPIKey = v }},
	{"grok-api-url", "GROK_API_URL", func(c *Credentials, v string) { c.GrokAPIURL = v }},
	{"grok-model", "GROK_MODEL", func(c *Credentials, v string) { c.GrokModel = v }},
	{"semantic-scholar-api-key", "SEMANTIC_SCHOLAR_API_KEY", func(c *Credentials, v string) { c.SemanticScholarAPIKey = v }},
	{"openalex-email", "OPENALEX_EMAIL", func(c *Credentials, v string) { c.OpenAlexEmail = v }},
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory or missing files are not errors; Load
// returns an empty map. Unreadable files produce a warning on stderr but
// do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve builds Credentials from loaded key files, applying environment
// variable overrides. An environment variable always wins over a key file.
func Resolve(fileSecrets map[string]string) Credentials {
	var c Credentials
	for _, src := range keySources {
		value := fileSecrets[src.file]
		if env := os.Getenv(src.env); env != "" {
			value = env
		}
		src.set(&c, value)
	}
	return c
}
