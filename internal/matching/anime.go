// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"

	"github.com/autobrr/marquee/pkg/categories"
)

// AnimeStrategy asks the anime database only. A miss is terminal.
type AnimeStrategy struct {
	wf *waterfall
}

func NewAnimeStrategy(p Providers, opts Options) *AnimeStrategy {
	opts = opts.withDefaults()
	return &AnimeStrategy{wf: newWaterfall("anime", opts,
		step{provider: p.Jikan, accept: minConfidence(opts.MinConfidence)},
	)}
}

func (a *AnimeStrategy) Name() string { return "anime" }

func (a *AnimeStrategy) CanHandle(mediaType string, cat categories.Unified) bool {
	return effectiveMediaType(mediaType, cat) == categories.MediaAnime
}

func (a *AnimeStrategy) TryMatch(ctx context.Context, s Subject) (*Match, error) {
	return a.wf.run(ctx, s)
}
