// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"

	"github.com/autobrr/marquee/pkg/categories"
)

// VideoStrategy resolves movies, series and broadcast programs.
type VideoStrategy struct {
	movies *waterfall
	series *waterfall
}

func NewVideoStrategy(p Providers, opts Options) *VideoStrategy {
	opts = opts.withDefaults()
	return &VideoStrategy{
		movies: newWaterfall("video/movie", opts,
			step{provider: p.TMDBMovie, accept: minConfidence(opts.MinConfidence)},
			step{provider: p.FanartMovie, requires: KeyTMDB, accept: hasPosterSource},
		),
		series: newWaterfall("video/series", opts,
			step{provider: p.TVMaze, accept: episodeGuideAccept(opts.EpisodeGuideMinConfidence)},
			step{provider: p.TMDBTV, accept: minConfidence(opts.MinConfidence), posters: preferredLangOnly},
			step{provider: p.FanartTV, requires: KeyTVDB, accept: hasPosterSource},
		),
	}
}

func (v *VideoStrategy) Name() string { return "video" }

func (v *VideoStrategy) CanHandle(mediaType string, cat categories.Unified) bool {
	switch effectiveMediaType(mediaType, cat) {
	case categories.MediaMovie, categories.MediaSeries, categories.MediaEmission:
		return true
	default:
		return false
	}
}

func (v *VideoStrategy) TryMatch(ctx context.Context, s Subject) (*Match, error) {
	if effectiveMediaType(s.MediaType, s.Category) == categories.MediaMovie {
		return v.movies.run(ctx, s)
	}
	return v.series.run(ctx, s)
}
