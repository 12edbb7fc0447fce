// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/pkg/categories"
)

// Orchestrator hands a subject to the first strategy that claims it.
// Exactly one strategy runs per subject.
type Orchestrator struct {
	strategies []Strategy
}

func NewOrchestrator(strategies ...Strategy) *Orchestrator {
	return &Orchestrator{strategies: strategies}
}

// New builds the orchestrator with the strategies in their fixed order:
// video, game, anime, audio, generic.
func New(p Providers, opts Options) *Orchestrator {
	return NewOrchestrator(
		NewVideoStrategy(p, opts),
		NewGameStrategy(p, opts),
		NewAnimeStrategy(p, opts),
		NewAudioStrategy(p, opts),
		NewGenericStrategy(p, opts),
	)
}

// Select returns the strategy for a media type and category, or nil.
func (o *Orchestrator) Select(mediaType string, cat categories.Unified) Strategy {
	for _, st := range o.strategies {
		if st.CanHandle(mediaType, cat) {
			return st
		}
	}
	return nil
}

// Match resolves s. It returns ErrNoMatch when the selected strategy runs
// out of providers, or the context error when cancelled.
func (o *Orchestrator) Match(ctx context.Context, s Subject) (*Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := o.Select(s.MediaType, s.Category)
	if st == nil {
		return nil, ErrNoMatch
	}

	m, err := st.TryMatch(ctx, s)
	if err != nil {
		log.Debug().Err(err).Str("strategy", st.Name()).Int64("release_id", s.ReleaseID).Str("title", s.Title).Msg("no poster match")
		return nil, err
	}

	log.Debug().Str("strategy", st.Name()).Int64("release_id", s.ReleaseID).Str("provider", m.Provider).
		Str("source", m.Source).Float64("confidence", m.Confidence).Msg("poster matched")
	return m, nil
}
