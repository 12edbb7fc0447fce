// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package categories

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       int
		tokens   []string
		expected string
		ok       bool
	}{
		{1000, nil, KeyGames, true},
		{1999, nil, KeyGames, true},
		{4050, nil, KeyGames, true},
		{2000, nil, KeyFilms, true},
		{2999, nil, KeyFilms, true},
		{3040, nil, KeyAudio, true},
		{5000, nil, KeySeries, true},
		{5070, nil, KeySeries, true},
		{5040, []string{"One", "Piece", "ANIME"}, KeyAnime, true},
		{5040, []string{"serie"}, KeySeries, true},
		{6000, nil, KeyXXX, true},
		{7030, nil, KeyBooks, true},
		{8010, nil, KeyOther, true},
		{999, nil, "", false},
		{9000, nil, "", false},
		{105000, nil, "", false},
		{-5, nil, "", false},
	}

	for _, tt := range tests {
		got, ok := ClassifyByID(tt.id, tt.tokens)
		assert.Equal(t, tt.ok, ok, "id %d", tt.id)
		assert.Equal(t, tt.expected, got, "id %d", tt.id)
	}
}

func TestClassifyByIDAnimeTokensOnlyPromoteSeries(t *testing.T) {
	t.Parallel()

	got, ok := ClassifyByID(2040, []string{"anime"})
	require.True(t, ok)
	assert.Equal(t, KeyFilms, got)
}

func TestClassifyByTokens(t *testing.T) {
	t.Parallel()

	t.Run("exact membership", func(t *testing.T) {
		got, ok := ClassifyByTokens([]string{"the", "Anime"})
		require.True(t, ok)
		assert.Equal(t, KeyAnime, got)

		_, ok = ClassifyByTokens([]string{"animeseries"})
		assert.False(t, ok)
	})

	t.Run("diacritics fold", func(t *testing.T) {
		got, ok := ClassifyByTokens([]string{"Émission"})
		require.True(t, ok)
		assert.Equal(t, KeyEmissions, got)
	})

	t.Run("first keyword wins", func(t *testing.T) {
		got, ok := ClassifyByTokens([]string{"serie", "anime"})
		require.True(t, ok)
		assert.Equal(t, KeySeries, got)
	})

	t.Run("blacklist wins over every match", func(t *testing.T) {
		_, ok := ClassifyByTokens([]string{"anime", "HENTAI"})
		assert.False(t, ok)

		_, ok = ClassifyByTokens([]string{"xxx", "film"})
		assert.False(t, ok)
	})

	t.Run("blacklist suppresses anime promotion", func(t *testing.T) {
		got, ok := ClassifyByID(5000, []string{"anime", "hentai"})
		require.True(t, ok)
		assert.Equal(t, KeySeries, got)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := ClassifyByTokens(nil)
		assert.False(t, ok)
	})
}

func TestTryNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		expected string
		ok       bool
	}{
		{"film", KeyFilms, true},
		{"Movies", KeyFilms, true},
		{"films", KeyFilms, true},
		{"show", KeyEmissions, true},
		{"shows", KeyEmissions, true},
		{"emission", KeyEmissions, true},
		{"Émission", KeyEmissions, true},
		{"tv", KeySeries, true},
		{" comic ", KeyComics, true},
		{"anime", KeyAnime, true},
		{"", "", false},
		{"   ", "", false},
		{"other", "", false},
		{"OTHER", "", false},
		{"podcast", "", false},
	}

	for _, tt := range tests {
		got, ok := TryNormalizeKey(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw %q", tt.raw)
		assert.Equal(t, tt.expected, got, "raw %q", tt.raw)
	}
}

func TestLabelForKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Films", LabelForKey(KeyFilms))
	assert.Equal(t, "Émissions", LabelForKey(KeyEmissions))
	assert.Empty(t, LabelForKey("film"))

	for _, g := range Groups() {
		assert.NotEmpty(t, LabelForKey(g.Key), g.Key)
	}
	assert.Len(t, Groups(), 10)
}

func TestAssertCanonicalKey(t *testing.T) {
	t.Parallel()

	for _, g := range Groups() {
		require.NoError(t, AssertCanonicalKey(g.Key))
	}

	err := AssertCanonicalKey("film")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonCanonicalKey))

	err = AssertCanonicalKey("other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKey))

	err = AssertCanonicalKey("Films")
	require.Error(t, err)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	parent := GetParentID(5070)
	require.NotNil(t, parent)
	assert.Equal(t, 5000, *parent)

	assert.Nil(t, GetParentID(5000))
	assert.Nil(t, GetParentID(105000))
	assert.Nil(t, GetParentID(5071))

	// the comics window follows the range table
	for _, id := range []int{7030, 7035, 7039} {
		parent := GetParentID(id)
		require.NotNil(t, parent, "id %d", id)
		assert.Equal(t, CategoryBooks, *parent)
		unified, ok := UnifiedForStd(id)
		assert.True(t, ok)
		assert.Equal(t, Comic, unified)
	}
	assert.Nil(t, GetParentID(7099))

	assert.True(t, IsStandardID(7030))
	assert.False(t, IsStandardID(105000))

	all := AllStandard()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	for _, cat := range all {
		assert.True(t, IsStandardID(cat.ID))
		if cat.ParentID != nil {
			assert.True(t, IsTopLevel(*cat.ParentID))
		}
	}
}

func TestUnifiedHelpers(t *testing.T) {
	t.Parallel()

	assert.Greater(t, Anime.Rank(), Serie.Rank())
	assert.Greater(t, Comic.Rank(), Book.Rank())
	assert.Greater(t, Film.Rank(), Other.Rank())

	u, err := ParseUnified("jeuwindows")
	require.NoError(t, err)
	assert.Equal(t, JeuWindows, u)

	_, err = ParseUnified("bogus")
	require.Error(t, err)

	assert.Equal(t, MediaMovie, Film.MediaType())
	assert.Equal(t, MediaGame, JeuMobile.MediaType())
	assert.Equal(t, MediaEmission, Emission.MediaType())
	assert.Equal(t, MediaOther, Xxx.MediaType())

	for _, g := range Groups() {
		u, ok := UnifiedForKey(g.Key)
		assert.True(t, ok, g.Key)
		assert.True(t, u.Valid())
	}
}
