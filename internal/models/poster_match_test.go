// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/internal/testdb"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }

func TestPosterMatchStore_MonotonicMerge(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()

	t0 := time.Unix(1_700_000_000, 0)
	fp := "v1-abc"

	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{
		Fingerprint:     fp,
		MediaType:       "movie",
		NormalizedTitle: "the matrix",
		Year:            intPtr(1999),
		IDs:             map[string]string{"tmdb": "603"},
		Confidence:      floatPtr(0.85),
		MatchSource:     "tmdb",
		PosterFile:      "a.jpg",
		PosterProvider:  "tmdb",
		Now:             t0,
	}))

	// blank poster and weaker confidence keep the stored values
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{
		Fingerprint: fp,
		MediaType:   "movie",
		Confidence:  floatPtr(0.70),
		Now:         t0.Add(time.Minute),
	}))

	m, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", m.PosterFile)
	assert.InDelta(t, 0.70, m.Confidence, 1e-9, "positive confidence is last-write-wins")

	// zero and missing confidences never overwrite a positive one
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", Confidence: floatPtr(0.85), Now: t0}))
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", Confidence: floatPtr(0), Now: t0}))
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", Now: t0}))

	m, err = store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", m.PosterFile)
	assert.InDelta(t, 0.85, m.Confidence, 1e-9, "zero confidence never overwrites")
	assert.Equal(t, map[string]string{"tmdb": "603"}, m.IDs)
	assert.Equal(t, "tmdb", m.PosterProvider)
	assert.Equal(t, "the matrix", m.NormalizedTitle)
	require.NotNil(t, m.Year)
	assert.Equal(t, 1999, *m.Year)
	assert.Equal(t, t0.Unix(), m.CreatedAt.Unix())
}

func TestPosterMatchStore_PinnedSequence(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()
	fp := "v1-pinned"

	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", PosterFile: "a.jpg", Confidence: floatPtr(0.85)}))
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", PosterFile: "", Confidence: nil}))

	m, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", m.PosterFile)
	assert.InDelta(t, 0.85, m.Confidence, 1e-9)

	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", Confidence: floatPtr(0.65)}))

	m, err = store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", m.PosterFile)
	assert.InDelta(t, 0.65, m.Confidence, 1e-9)
}

func TestPosterMatchStore_TimestampsAndReplacement(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()
	fp := "v1-ts"

	created := time.Unix(1_600_000_000, 0)
	later := created.Add(48 * time.Hour)

	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "series", PosterFile: "old.jpg", PosterLang: "en", Now: created}))
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "series", PosterFile: "new.jpg", LastError: "timeout", Now: later}))

	m, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "new.jpg", m.PosterFile)
	assert.Equal(t, "en", m.PosterLang)
	assert.Equal(t, "timeout", m.LastError)
	assert.Equal(t, created.Unix(), m.CreatedAt.Unix())
	assert.Equal(t, later.Unix(), m.LastSeenAt.Unix())
	assert.Equal(t, later.Unix(), m.LastAttemptAt.Unix())
}

func TestPosterMatchStore_GetMissingAndCorrupt(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrPosterMatchNotFound))

	_, err = db.ExecContext(ctx, `
		INSERT INTO poster_matches (fingerprint, media_type, normalized_title, ids_json, confidence, created_ts, last_seen_ts, last_attempt_ts)
		VALUES ('v1-bad', 'movie', 'x', '{not json', 0.5, 1, 1, 1)
	`)
	require.NoError(t, err)

	_, err = store.Get(ctx, "v1-bad")
	assert.True(t, errors.Is(err, ErrPosterMatchCorrupt))

	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	// a good write repairs the row
	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: "v1-bad", MediaType: "movie", IDs: map[string]string{"tmdb": "1"}, PosterFile: "x.jpg"}))
	m, err := store.Get(ctx, "v1-bad")
	require.NoError(t, err)
	assert.Equal(t, "x.jpg", m.PosterFile)
}

func TestPosterMatchStore_Delete(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: "v1-del", MediaType: "game", PosterFile: "g.jpg"}))

	deleted, err := store.Delete(ctx, "v1-del")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "v1-del")
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPosterMatchStore_ConcurrentUpsertsKeepPoster(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()
	fp := "v1-race"

	require.NoError(t, store.Upsert(ctx, PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", PosterFile: "keep.jpg", Confidence: floatPtr(0.9)}))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := PosterMatchUpsert{Fingerprint: fp, MediaType: "movie"}
			if i%2 == 0 {
				u.Confidence = floatPtr(0)
			}
			assert.NoError(t, store.Upsert(ctx, u))
		}(i)
	}
	wg.Wait()

	m, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "keep.jpg", m.PosterFile)
	assert.InDelta(t, 0.9, m.Confidence, 1e-9)
}

func TestPosterMatchStore_ConcurrentWritersMergeMonotonically(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)
	ctx := context.Background()
	fp := "v1-fresh-race"

	var wg sync.WaitGroup
	for i := range 12 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := PosterMatchUpsert{Fingerprint: fp, MediaType: "movie", NormalizedTitle: "the matrix"}
			switch i % 3 {
			case 0:
				u.PosterFile = "winner.png"
				u.PosterProvider = "tmdb"
				u.Confidence = floatPtr(0.8)
				u.IDs = map[string]string{"tmdb": "603"}
			case 1:
				u.LastError = "provider timeout"
			default:
				u.Confidence = floatPtr(0)
			}
			assert.NoError(t, store.Upsert(ctx, u))
		}(i)
	}
	wg.Wait()

	m, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "winner.png", m.PosterFile)
	assert.Equal(t, "tmdb", m.PosterProvider)
	assert.InDelta(t, 0.8, m.Confidence, 1e-9)
	assert.Equal(t, "603", m.IDs["tmdb"])
	assert.Equal(t, "the matrix", m.NormalizedTitle)
}

func TestPosterMatchStore_Validation(t *testing.T) {
	db := testdb.Open(t, "models")
	store := NewPosterMatchStore(db)

	require.Error(t, store.Upsert(context.Background(), PosterMatchUpsert{MediaType: "movie"}))
	require.Error(t, store.Upsert(context.Background(), PosterMatchUpsert{Fingerprint: "x"}))
}
