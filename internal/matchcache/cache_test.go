// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matchcache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/internal/testdb"
	"github.com/autobrr/marquee/pkg/categories"
)

func intPtr(v int) *int { return &v }

func TestBuildFingerprint(t *testing.T) {
	t.Parallel()

	a := BuildFingerprint("movie", "The Matrix", 1999, nil, nil)
	b := BuildFingerprint(" Movie ", "the  matrix", 1999, nil, nil)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "v1-"))

	assert.NotEqual(t, a, BuildFingerprint("movie", "The Matrix", 2003, nil, nil))
	assert.NotEqual(t, a, BuildFingerprint("series", "The Matrix", 1999, nil, nil))
	assert.NotEqual(t,
		BuildFingerprint("series", "Dark", 2017, intPtr(1), nil),
		BuildFingerprint("series", "Dark", 2017, intPtr(1), intPtr(2)),
	)
	// season 1 with no episode must not collide with no season and episode 1
	assert.NotEqual(t,
		BuildFingerprint("series", "Dark", 2017, intPtr(1), nil),
		BuildFingerprint("series", "Dark", 2017, nil, intPtr(1)),
	)
}

func TestFingerprintForRelease(t *testing.T) {
	t.Parallel()

	r := &models.Release{Title: "The Matrix", Year: intPtr(1999), UnifiedCategory: categories.Film}
	assert.Equal(t, BuildFingerprint("movie", "the matrix", 1999, nil, nil), FingerprintForRelease(r))

	r.NormalizedTitle = "matrix"
	r.MediaType = categories.MediaMovie
	assert.Equal(t, BuildFingerprint("movie", "matrix", 1999, nil, nil), FingerprintForRelease(r))
}

func TestCache_TryGetAndInvalidate(t *testing.T) {
	db := testdb.Open(t, "matchcache")
	cache := New(db)
	ctx := context.Background()

	release := &models.Release{ID: 7, Title: "The Matrix", Year: intPtr(1999), MediaType: categories.MediaMovie}
	fp := FingerprintForRelease(release)

	_, ok := cache.TryGet(ctx, fp)
	assert.False(t, ok)

	conf := 0.9
	require.NoError(t, cache.Upsert(ctx, models.PosterMatchUpsert{
		Fingerprint:    fp,
		MediaType:      categories.MediaMovie,
		PosterFile:     "ab/matrix.jpg",
		PosterProvider: "tmdb",
		Confidence:     &conf,
	}))

	m, ok := cache.TryGet(ctx, fp)
	require.True(t, ok)
	assert.Equal(t, "ab/matrix.jpg", m.PosterFile)

	deleted, err := cache.Invalidate(ctx, release)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok = cache.TryGet(ctx, fp)
	assert.False(t, ok)
}

func TestCache_CorruptRowIsMiss(t *testing.T) {
	db := testdb.Open(t, "matchcache")
	cache := New(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO poster_matches (fingerprint, media_type, normalized_title, ids_json, confidence, created_ts, last_seen_ts, last_attempt_ts)
		VALUES ('v1-corrupt', 'movie', 'x', '[[[', 0.4, 1, 1, 1)
	`)
	require.NoError(t, err)

	_, ok := cache.TryGet(ctx, "v1-corrupt")
	assert.False(t, ok)
}
