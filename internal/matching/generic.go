// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"

	"github.com/autobrr/marquee/pkg/categories"
)

// GenericStrategy takes everything no other strategy claimed. Books and
// comics have a catalog each; anything else is not found.
type GenericStrategy struct {
	books  *waterfall
	comics *waterfall
}

func NewGenericStrategy(p Providers, opts Options) *GenericStrategy {
	opts = opts.withDefaults()
	return &GenericStrategy{
		books: newWaterfall("generic/book", opts,
			step{provider: p.OpenLibrary, accept: minConfidence(opts.MinConfidence)},
		),
		comics: newWaterfall("generic/comic", opts,
			step{provider: p.ComicVine, accept: minConfidence(opts.MinConfidence)},
		),
	}
}

func (g *GenericStrategy) Name() string { return "generic" }

func (g *GenericStrategy) CanHandle(string, categories.Unified) bool { return true }

func (g *GenericStrategy) TryMatch(ctx context.Context, s Subject) (*Match, error) {
	switch {
	case s.Category == categories.Comic || effectiveMediaType(s.MediaType, s.Category) == categories.MediaComic:
		return g.comics.run(ctx, s)
	case s.Category == categories.Book || effectiveMediaType(s.MediaType, s.Category) == categories.MediaBook:
		return g.books.run(ctx, s)
	default:
		return nil, ErrNoMatch
	}
}
