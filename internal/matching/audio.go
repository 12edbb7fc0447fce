// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"

	"github.com/autobrr/marquee/pkg/categories"
)

// AudioStrategy searches tracks first and albums second.
type AudioStrategy struct {
	wf *waterfall
}

func NewAudioStrategy(p Providers, opts Options) *AudioStrategy {
	opts = opts.withDefaults()
	return &AudioStrategy{wf: newWaterfall("audio", opts,
		step{provider: p.DeezerTrack, accept: minConfidence(opts.MinConfidence)},
		step{provider: p.DeezerAlbum, accept: minConfidence(opts.MinConfidence)},
	)}
}

func (a *AudioStrategy) Name() string { return "audio" }

func (a *AudioStrategy) CanHandle(mediaType string, cat categories.Unified) bool {
	return effectiveMediaType(mediaType, cat) == categories.MediaAudio
}

func (a *AudioStrategy) TryMatch(ctx context.Context, s Subject) (*Match, error) {
	return a.wf.run(ctx, s)
}
