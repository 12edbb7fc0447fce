// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package posters

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/pkg/categories"
	"github.com/autobrr/marquee/pkg/releases"
	"github.com/autobrr/marquee/pkg/stringutils"
)

// Classification is what Classify wrote back for a release.
type Classification struct {
	StdID     *int
	SpecID    *int
	Unified   categories.Unified
	MediaType string
}

// Classify resolves the release's unified category and media type and
// stores them.
func (s *Service) Classify(ctx context.Context, releaseID int64) (Classification, error) {
	release, err := s.releases.GetForPoster(ctx, releaseID)
	if err != nil {
		return Classification{}, err
	}
	release, err = s.classify(ctx, release)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		StdID:     release.StdCategoryID,
		SpecID:    release.SpecCategoryID,
		Unified:   release.UnifiedCategory,
		MediaType: release.MediaType,
	}, nil
}

// Resolver builds a resolver from the built-in and stored overrides.
func (s *Service) Resolver(ctx context.Context) (*categories.Resolver, error) {
	stored, err := s.overrides.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category overrides: %w", err)
	}
	return categories.NewResolver(stored...), nil
}

func (s *Service) classify(ctx context.Context, release *models.Release) (*models.Release, error) {
	resolver, err := s.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	std, spec := categories.ResolveStdSpec(release.StdCategoryID, release.SpecCategoryID, release.CategoryIDs)
	unified := resolver.Resolve(release.SourceName, release.StdCategoryID, release.SpecCategoryID, release.CategoryIDs)

	// Indexers without usable ids fall back to the title.
	info := releases.DetectMedia(s.parser.Parse(release.Title))
	if unified == categories.Other {
		if key, ok := categories.ClassifyByTokens(stringutils.Tokenize(release.Title)); ok {
			unified, _ = categories.UnifiedForKey(key)
		}
	}
	if unified == categories.Other {
		unified = releases.UnifiedForMedia(info)
	}

	mediaType := unified.MediaType()
	if mediaType == categories.MediaOther && info.MediaType != "" {
		mediaType = info.MediaType
	}

	if err := s.releases.UpdateClassification(ctx, release.ID, std, spec, unified, mediaType); err != nil {
		return nil, fmt.Errorf("failed to store classification: %w", err)
	}

	log.Debug().
		Int64("release_id", release.ID).
		Str("source", release.SourceName).
		Str("unified", unified.String()).
		Str("media_type", mediaType).
		Msg("[POSTERS] Classified release")

	out := *release
	out.StdCategoryID = std
	out.SpecCategoryID = spec
	out.UnifiedCategory = unified
	out.MediaType = mediaType
	return &out, nil
}
