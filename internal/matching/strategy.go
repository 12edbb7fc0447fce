// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"github.com/autobrr/marquee/internal/providers/score"
	"github.com/autobrr/marquee/pkg/categories"
)

const (
	// DefaultMinConfidence gates catalog search hits.
	DefaultMinConfidence = 0.6
	// DefaultEpisodeGuideMinConfidence gates episode guide hits, which
	// block the tv fallback chain when accepted.
	DefaultEpisodeGuideMinConfidence = 0.85
)

// Providers are the catalog clients strategies draw from. A nil provider
// is not configured and its step is skipped.
type Providers struct {
	TMDBMovie   Provider
	TMDBTV      Provider
	FanartMovie Provider
	FanartTV    Provider
	TVMaze      Provider
	Jikan       Provider
	RAWG        Provider
	DeezerTrack Provider
	DeezerAlbum Provider
	OpenLibrary Provider
	ComicVine   Provider
}

type Options struct {
	Fetcher ImageFetcher
	// ValidateImage rejects downloaded bodies that are not usable posters.
	// A rejected body counts as an empty image and the waterfall moves on.
	ValidateImage             func([]byte) error
	Recorder                  Recorder
	MinConfidence             float64
	EpisodeGuideMinConfidence float64
}

func (o Options) withDefaults() Options {
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	if o.EpisodeGuideMinConfidence <= 0 {
		o.EpisodeGuideMinConfidence = DefaultEpisodeGuideMinConfidence
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

// effectiveMediaType trusts an explicit media type. Only a missing one
// falls back to the unified category. An unrecognized one is kept and ends
// up with the generic strategy.
func effectiveMediaType(mediaType string, cat categories.Unified) string {
	if mediaType == "" || mediaType == categories.MediaOther {
		return cat.MediaType()
	}
	return mediaType
}

func minConfidence(threshold float64) func(Subject, *Candidate) bool {
	return func(_ Subject, c *Candidate) bool {
		return c.Confidence >= threshold
	}
}

// hasPosterSource accepts id-only lookups (fanart), which carry no
// confidence of their own.
func hasPosterSource(_ Subject, c *Candidate) bool {
	return len(c.Posters) > 0
}

// episodeGuideAccept requires an exact year when both sides know it and
// downgrades generic titles before the threshold applies.
func episodeGuideAccept(threshold float64) func(Subject, *Candidate) bool {
	return func(s Subject, c *Candidate) bool {
		if s.Year > 0 && c.Year > 0 && s.Year != c.Year {
			return false
		}
		return score.Adjust(s.Title, c.Confidence) >= threshold
	}
}
