// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Version       string
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DataDir       string `toml:"dataDir" mapstructure:"dataDir"`
	DatabasePath  string `toml:"databasePath" mapstructure:"databasePath"`
	PosterDir     string `toml:"posterDir" mapstructure:"posterDir"`

	// PreferredLang is the poster language asked of providers first.
	PreferredLang string  `toml:"preferredLang" mapstructure:"preferredLang"`
	MinConfidence float64 `toml:"minConfidence" mapstructure:"minConfidence"`

	FetchConcurrency   int `toml:"fetchConcurrency" mapstructure:"fetchConcurrency"`
	HTTPTimeout        int `toml:"httpTimeout" mapstructure:"httpTimeout"`
	ProviderIntervalMs int `toml:"providerIntervalMs" mapstructure:"providerIntervalMs"`
	RateLimitMaxWait   int `toml:"rateLimitMaxWait" mapstructure:"rateLimitMaxWait"`

	TMDBAPIKey      string `toml:"tmdbApiKey" mapstructure:"tmdbApiKey"`
	FanartAPIKey    string `toml:"fanartApiKey" mapstructure:"fanartApiKey"`
	RAWGAPIKey      string `toml:"rawgApiKey" mapstructure:"rawgApiKey"`
	ComicVineAPIKey string `toml:"comicVineApiKey" mapstructure:"comicVineApiKey"`

	TorznabURL    string `toml:"torznabUrl" mapstructure:"torznabUrl"`
	TorznabAPIKey string `toml:"torznabApiKey" mapstructure:"torznabApiKey"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump after
	// each batch command.
	MetricsTextfile string `toml:"metricsTextfile" mapstructure:"metricsTextfile"`

	// NotifyURLs are shoutrrr service urls that receive batch summaries.
	NotifyURLs []string `toml:"notifyUrls" mapstructure:"notifyUrls"`
}

// Redacted returns a copy safe to print or log.
func (c Config) Redacted() Config {
	c.TMDBAPIKey = RedactString(c.TMDBAPIKey)
	c.FanartAPIKey = RedactString(c.FanartAPIKey)
	c.RAWGAPIKey = RedactString(c.RAWGAPIKey)
	c.ComicVineAPIKey = RedactString(c.ComicVineAPIKey)
	c.TorznabAPIKey = RedactString(c.TorznabAPIKey)
	return c
}

// Validate checks values that would otherwise fail late inside a fetch.
func (c *Config) Validate() error {
	var errs []error

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("minConfidence must be between 0 and 1, got %v", c.MinConfidence))
	}
	if c.FetchConcurrency < 0 {
		errs = append(errs, fmt.Errorf("fetchConcurrency must not be negative, got %d", c.FetchConcurrency))
	}
	if lang := strings.TrimSpace(c.PreferredLang); lang != "" && len(lang) != 2 {
		errs = append(errs, fmt.Errorf("preferredLang must be a two letter code, got %q", c.PreferredLang))
	}
	for name, value := range map[string]string{
		"tmdbApiKey":      c.TMDBAPIKey,
		"fanartApiKey":    c.FanartAPIKey,
		"rawgApiKey":      c.RAWGAPIKey,
		"comicVineApiKey": c.ComicVineAPIKey,
		"torznabApiKey":   c.TorznabAPIKey,
	} {
		if IsRedactedString(value) {
			errs = append(errs, fmt.Errorf("%s holds the redaction placeholder instead of a key", name))
		}
	}

	return errors.Join(errs...)
}
