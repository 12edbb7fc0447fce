// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("accepts defaults", func(t *testing.T) {
		cfg := &Config{PreferredLang: "fr", MinConfidence: 0.6}
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects out of range confidence", func(t *testing.T) {
		cfg := &Config{MinConfidence: 1.5}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "minConfidence")
	})

	t.Run("rejects long language codes", func(t *testing.T) {
		cfg := &Config{PreferredLang: "french"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "preferredLang")
	})

	t.Run("rejects pasted redacted keys", func(t *testing.T) {
		cfg := &Config{TMDBAPIKey: RedactedStr, FetchConcurrency: -1}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tmdbApiKey")
		assert.Contains(t, err.Error(), "fetchConcurrency")
	})
}

func TestConfigRedacted(t *testing.T) {
	cfg := Config{TMDBAPIKey: "abc", FanartAPIKey: "", PosterDir: "/data/posters"}

	red := cfg.Redacted()
	assert.Equal(t, RedactedStr, red.TMDBAPIKey)
	assert.Empty(t, red.FanartAPIKey)
	assert.Equal(t, "/data/posters", red.PosterDir)
	assert.Equal(t, "abc", cfg.TMDBAPIKey)
}

func TestRedactHelpers(t *testing.T) {
	assert.Empty(t, RedactString(""))
	assert.Equal(t, RedactedStr, RedactString(" "))
	assert.Equal(t, RedactedStr, RedactString("tmdb-v3-key"))

	assert.True(t, IsRedactedString(RedactedStr))
	assert.False(t, IsRedactedString(" "+RedactedStr))
	assert.False(t, IsRedactedString(""))
}
