// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/internal/testdb"
	"github.com/autobrr/marquee/pkg/categories"
)

func TestReleaseStore_CreateAndGet(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewReleaseStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, &Release{
		SourceName:      "Torr9",
		Title:           "The.Matrix.1999.1080p.BluRay.x264",
		NormalizedTitle: "the matrix",
		Year:            intPtr(1999),
		CategoryIDs:     []int{2000, 2040, 102040},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []int{2000, 2040, 102040}, created.CategoryIDs)
	assert.Equal(t, categories.Other, created.UnifiedCategory)
	assert.Equal(t, categories.MediaOther, created.MediaType)
	assert.False(t, created.HasPoster())

	got, err := store.GetForPoster(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	require.NotNil(t, got.Year)
	assert.Equal(t, 1999, *got.Year)

	_, err = store.Get(ctx, 999999)
	assert.True(t, errors.Is(err, ErrReleaseNotFound))

	_, err = store.Create(ctx, &Release{SourceName: "x"})
	require.Error(t, err)
}

func TestReleaseStore_Updates(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewReleaseStore(db)
	ctx := context.Background()

	r, err := store.Create(ctx, &Release{SourceName: "Torr9", Title: "One Piece", CategoryIDs: []int{5000, 5070}})
	require.NoError(t, err)

	require.NoError(t, store.UpdateClassification(ctx, r.ID, intPtr(5070), nil, categories.Anime, categories.MediaAnime))
	require.NoError(t, store.UpdateExternalDetails(ctx, r.ID, "jikan", "21"))
	require.NoError(t, store.UpdatePoster(ctx, r.ID, PosterUpdate{File: "ab/cd.jpg", Provider: "jikan", ProviderID: "21"}))

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, categories.Anime, got.UnifiedCategory)
	assert.Equal(t, categories.MediaAnime, got.MediaType)
	require.NotNil(t, got.StdCategoryID)
	assert.Equal(t, 5070, *got.StdCategoryID)
	assert.Nil(t, got.SpecCategoryID)
	assert.Equal(t, "jikan", got.ExternalProvider)
	assert.Equal(t, "21", got.ExternalProviderID)
	assert.True(t, got.HasPoster())
	assert.Equal(t, "ab/cd.jpg", got.PosterFile)
	assert.NotNil(t, got.PosterUpdatedAt)

	require.Error(t, store.UpdatePoster(ctx, r.ID, PosterUpdate{}))
	assert.True(t, errors.Is(store.UpdateExternalDetails(ctx, 424242, "tmdb", "1"), ErrReleaseNotFound))
}

func TestReleaseStore_GetManyAndList(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewReleaseStore(db)
	ctx := context.Background()

	var ids []int64
	for i := range 5 {
		r, err := store.Create(ctx, &Release{SourceName: "Torr9", Title: "Release " + string(rune('A'+i))})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	require.NoError(t, store.UpdatePoster(ctx, ids[1], PosterUpdate{File: "x.jpg"}))

	got, err := store.GetMany(ctx, append(ids, 999999))
	require.NoError(t, err)
	assert.Len(t, got, 5)

	missing, err := store.ListIDs(ctx, true, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2], ids[3], ids[4]}, missing)

	limited, err := store.ListIDs(ctx, false, 2)
	require.NoError(t, err)
	assert.Equal(t, ids[:2], limited)

	stats, err := store.PosterStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, PosterStats{Unified: categories.Other, Total: 5, WithPoster: 1}, stats[0])
}

func TestParseCategoryIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{5000, 5070}, parseCategoryIDs("5000, 5070"))
	assert.Equal(t, []int{7000}, parseCategoryIDs("7000,,abc"))
	assert.Empty(t, parseCategoryIDs(""))
	assert.Equal(t, "1,2,3", formatCategoryIDs([]int{1, 2, 3}))
}
