// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"

	"github.com/autobrr/marquee/pkg/categories"
)

// GameStrategy asks the game database only. A miss is terminal.
type GameStrategy struct {
	wf *waterfall
}

func NewGameStrategy(p Providers, opts Options) *GameStrategy {
	opts = opts.withDefaults()
	return &GameStrategy{wf: newWaterfall("game", opts,
		step{provider: p.RAWG, accept: minConfidence(opts.MinConfidence)},
	)}
}

func (g *GameStrategy) Name() string { return "game" }

func (g *GameStrategy) CanHandle(mediaType string, cat categories.Unified) bool {
	return effectiveMediaType(mediaType, cat) == categories.MediaGame
}

func (g *GameStrategy) TryMatch(ctx context.Context, s Subject) (*Match, error) {
	return g.wf.run(ctx, s)
}
