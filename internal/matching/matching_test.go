// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/pkg/categories"
)

type fakeProvider struct {
	key   string
	mu    sync.Mutex
	calls []Query
	fn    func(q Query) (*Candidate, error)
}

func (f *fakeProvider) Key() string { return f.key }

func (f *fakeProvider) Search(_ context.Context, q Query) (*Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(q)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func hit(c Candidate) func(Query) (*Candidate, error) {
	return func(Query) (*Candidate, error) { return &c, nil }
}

type fakeFetcher struct {
	images map[string][]byte
	urls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	data, ok := f.images[url]
	if !ok {
		return nil, errors.New("404")
	}
	return data, nil
}

type countingRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *countingRecorder) ProviderCall(provider, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[provider+"/"+outcome]++
}

func matrix() Subject {
	return Subject{Title: "The Matrix", Year: 1999, MediaType: categories.MediaMovie, Category: categories.Film}
}

func TestOrchestrator_Select(t *testing.T) {
	t.Parallel()

	o := New(Providers{}, Options{})

	tests := []struct {
		mediaType string
		cat       categories.Unified
		want      string
	}{
		{categories.MediaMovie, categories.Film, "video"},
		{"", categories.Animation, "video"},
		{"", categories.Serie, "video"},
		{"", categories.Emission, "video"},
		{"", categories.Spectacle, "video"},
		{"", categories.JeuMac, "game"},
		{categories.MediaGame, categories.Other, "game"},
		{"", categories.Anime, "anime"},
		{"", categories.Audio, "audio"},
		{"", categories.Book, "generic"},
		{"", categories.Comic, "generic"},
		{"", categories.Other, "generic"},
		{"", categories.Xxx, "generic"},
		{"podcast", categories.Film, "generic"},
		{categories.MediaOther, categories.Film, "video"},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.mediaType+"/"+string(tt.cat), func(t *testing.T) {
			st := o.Select(tt.mediaType, tt.cat)
			require.NotNil(t, st)
			assert.Equal(t, tt.want, st.Name())
		})
	}
}

func TestMatrixEndToEnd_PrimaryProvider(t *testing.T) {
	t.Parallel()

	tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{
		ProviderID: "603", Title: "The Matrix", Year: 1999, Confidence: 0.95,
		Posters: []Poster{{URL: "https://tmdb/603.jpg", Lang: "en", Size: "w500"}},
	})}
	fanart := &fakeProvider{key: KeyFanart}
	fetcher := &fakeFetcher{images: map[string][]byte{"https://tmdb/603.jpg": []byte("tmdb-image")}}

	o := New(Providers{TMDBMovie: tmdb, FanartMovie: fanart}, Options{Fetcher: fetcher})
	m, err := o.Match(context.Background(), matrix())
	require.NoError(t, err)

	assert.Equal(t, KeyTMDB, m.Provider)
	assert.Equal(t, KeyTMDB, m.Source)
	assert.Equal(t, "603", m.ProviderID)
	assert.Equal(t, []byte("tmdb-image"), m.Image)
	assert.Equal(t, "603", m.IDs[KeyTMDB])
	assert.Zero(t, fanart.callCount())
}

func TestMatrixEndToEnd_FanartFallback(t *testing.T) {
	t.Parallel()

	tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{
		ProviderID: "603", Title: "The Matrix", Year: 1999, Confidence: 0.95,
	})}
	fanart := &fakeProvider{key: KeyFanart, fn: func(q Query) (*Candidate, error) {
		if q.IDs[KeyTMDB] != "603" {
			return nil, nil
		}
		return &Candidate{ProviderID: "603", Posters: []Poster{{URL: "https://fanart/603.jpg", Lang: "en"}}}, nil
	}}
	fetcher := &fakeFetcher{images: map[string][]byte{"https://fanart/603.jpg": []byte("fanart-image")}}

	o := New(Providers{TMDBMovie: tmdb, FanartMovie: fanart}, Options{Fetcher: fetcher})
	m, err := o.Match(context.Background(), matrix())
	require.NoError(t, err)

	assert.Equal(t, KeyFanart, m.Provider)
	assert.Equal(t, KeyTMDB, m.Source)
	assert.InDelta(t, 0.95, m.Confidence, 1e-9)
	assert.Equal(t, []byte("fanart-image"), m.Image)
	assert.Equal(t, 1, tmdb.callCount())
	assert.Equal(t, 1, fanart.callCount())
}

func TestEmptyImageFallsThrough(t *testing.T) {
	t.Parallel()

	tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{
		ProviderID: "603", Title: "The Matrix", Year: 1999, Confidence: 0.95,
		Posters: []Poster{{URL: "https://tmdb/empty.jpg"}},
	})}
	fanart := &fakeProvider{key: KeyFanart, fn: hit(Candidate{Posters: []Poster{{URL: "https://fanart/ok.jpg"}}})}
	fetcher := &fakeFetcher{images: map[string][]byte{
		"https://tmdb/empty.jpg": {},
		"https://fanart/ok.jpg":  []byte("ok"),
	}}
	rec := &countingRecorder{}

	o := New(Providers{TMDBMovie: tmdb, FanartMovie: fanart}, Options{Fetcher: fetcher, Recorder: rec})
	m, err := o.Match(context.Background(), matrix())
	require.NoError(t, err)
	assert.Equal(t, KeyFanart, m.Provider)
	assert.Equal(t, 1, rec.calls["tmdb/empty_image"])
	assert.Equal(t, 1, rec.calls["fanart/hit"])
}

func TestUndecodableImageFallsThrough(t *testing.T) {
	t.Parallel()

	tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{
		ProviderID: "603", Title: "The Matrix", Year: 1999, Confidence: 0.95,
		Posters: []Poster{{URL: "https://tmdb/603.jpg"}},
	})}
	fanart := &fakeProvider{key: KeyFanart, fn: hit(Candidate{Posters: []Poster{{URL: "https://fanart/603.png"}}})}
	fetcher := &fakeFetcher{images: map[string][]byte{
		"https://tmdb/603.jpg":   []byte("<html>cloudflare</html>"),
		"https://fanart/603.png": []byte("\x89PNG fanart"),
	}}
	rec := &countingRecorder{}
	validate := func(data []byte) error {
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			return errors.New("not an image")
		}
		return nil
	}

	o := New(Providers{TMDBMovie: tmdb, FanartMovie: fanart}, Options{Fetcher: fetcher, Recorder: rec, ValidateImage: validate})
	m, err := o.Match(context.Background(), matrix())
	require.NoError(t, err)
	assert.Equal(t, KeyFanart, m.Provider)
	assert.Equal(t, KeyTMDB, m.Source)
	assert.Equal(t, []byte("\x89PNG fanart"), m.Image)
	assert.Equal(t, 1, rec.calls["tmdb/empty_image"])
	assert.Equal(t, 1, rec.calls["fanart/hit"])

	// every body rejected is a miss
	o = New(Providers{TMDBMovie: tmdb}, Options{Fetcher: fetcher, ValidateImage: func([]byte) error { return errors.New("nope") }})
	_, err = o.Match(context.Background(), matrix())
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestFanartSkippedWithoutCrossRef(t *testing.T) {
	t.Parallel()

	fanart := &fakeProvider{key: KeyFanart}
	o := New(Providers{TMDBMovie: &fakeProvider{key: KeyTMDB}, FanartMovie: fanart}, Options{Fetcher: &fakeFetcher{}})

	_, err := o.Match(context.Background(), matrix())
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Zero(t, fanart.callCount())
}

func TestGameMissIsTerminal(t *testing.T) {
	t.Parallel()

	rawg := &fakeProvider{key: KeyRAWG}
	tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{ProviderID: "1", Confidence: 1, Posters: []Poster{{URL: "u"}}})}
	jikan := &fakeProvider{key: KeyJikan, fn: hit(Candidate{ProviderID: "1", Confidence: 1, Posters: []Poster{{URL: "u"}}})}
	fetcher := &fakeFetcher{images: map[string][]byte{"u": []byte("x")}}

	o := New(Providers{RAWG: rawg, TMDBMovie: tmdb, TMDBTV: tmdb, Jikan: jikan}, Options{Fetcher: fetcher})
	_, err := o.Match(context.Background(), Subject{Title: "Hades", Category: categories.JeuWindows})

	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Equal(t, 1, rawg.callCount())
	assert.Zero(t, tmdb.callCount())
	assert.Zero(t, jikan.callCount())
	assert.Empty(t, fetcher.urls)
}

func TestProviderErrorIsMiss(t *testing.T) {
	t.Parallel()

	deezerTrack := &fakeProvider{key: KeyDeezer, fn: func(Query) (*Candidate, error) { return nil, errors.New("boom") }}
	deezerAlbum := &fakeProvider{key: KeyDeezer, fn: hit(Candidate{
		ProviderID: "302127", Title: "Discovery", Confidence: 0.9, Posters: []Poster{{URL: "https://deezer/album.jpg"}},
	})}
	fetcher := &fakeFetcher{images: map[string][]byte{"https://deezer/album.jpg": []byte("cover")}}

	o := New(Providers{DeezerTrack: deezerTrack, DeezerAlbum: deezerAlbum}, Options{Fetcher: fetcher})
	m, err := o.Match(context.Background(), Subject{Title: "Discovery", Artist: "Daft Punk", Category: categories.Audio})
	require.NoError(t, err)
	assert.Equal(t, "302127", m.ProviderID)
	assert.Equal(t, 1, deezerTrack.callCount())
}

func TestLowConfidenceRejected(t *testing.T) {
	t.Parallel()

	jikan := &fakeProvider{key: KeyJikan, fn: hit(Candidate{ProviderID: "1", Confidence: 0.3, Posters: []Poster{{URL: "u"}}})}
	fetcher := &fakeFetcher{images: map[string][]byte{"u": []byte("x")}}

	o := New(Providers{Jikan: jikan}, Options{Fetcher: fetcher})
	_, err := o.Match(context.Background(), Subject{Title: "One Piece", Category: categories.Anime})
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Empty(t, fetcher.urls)
}

func TestSeriesWaterfall(t *testing.T) {
	t.Parallel()

	dark := Subject{Title: "Dark", Year: 2017, MediaType: categories.MediaSeries, Category: categories.Serie, PreferredLang: "fr"}

	t.Run("episode guide hit wins", func(t *testing.T) {
		t.Parallel()

		tvmaze := &fakeProvider{key: KeyTVMaze, fn: hit(Candidate{
			ProviderID: "17861", Title: "Dark", Year: 2017, Confidence: 0.95,
			Posters:    []Poster{{URL: "https://tvmaze/dark.jpg"}},
			CrossRefs:  map[string]string{KeyTVDB: "334824"},
		})}
		tmdb := &fakeProvider{key: KeyTMDB}
		fetcher := &fakeFetcher{images: map[string][]byte{"https://tvmaze/dark.jpg": []byte("x")}}

		o := New(Providers{TVMaze: tvmaze, TMDBTV: tmdb}, Options{Fetcher: fetcher})
		m, err := o.Match(context.Background(), dark)
		require.NoError(t, err)
		assert.Equal(t, KeyTVMaze, m.Provider)
		assert.Equal(t, "334824", m.IDs[KeyTVDB])
		assert.Zero(t, tmdb.callCount())
	})

	t.Run("year mismatch falls through to tmdb", func(t *testing.T) {
		t.Parallel()

		tvmaze := &fakeProvider{key: KeyTVMaze, fn: hit(Candidate{
			ProviderID: "1", Title: "Dark", Year: 2009, Confidence: 0.99, Posters: []Poster{{URL: "https://tvmaze/other.jpg"}},
		})}
		tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{
			ProviderID: "70523", Title: "Dark", Year: 2017, Confidence: 0.9,
			Posters:    []Poster{{URL: "https://tmdb/en.jpg", Lang: "en"}, {URL: "https://tmdb/fr.jpg", Lang: "fr"}},
		})}
		fetcher := &fakeFetcher{images: map[string][]byte{
			"https://tvmaze/other.jpg": []byte("x"),
			"https://tmdb/fr.jpg":      []byte("fr"),
			"https://tmdb/en.jpg":      []byte("en"),
		}}

		o := New(Providers{TVMaze: tvmaze, TMDBTV: tmdb}, Options{Fetcher: fetcher})
		m, err := o.Match(context.Background(), dark)
		require.NoError(t, err)
		assert.Equal(t, KeyTMDB, m.Provider)
		assert.Equal(t, "fr", m.Poster.Lang)
		assert.Equal(t, []string{"https://tmdb/fr.jpg"}, fetcher.urls)
	})

	t.Run("no preferred language poster falls through to fanart", func(t *testing.T) {
		t.Parallel()

		tmdb := &fakeProvider{key: KeyTMDB, fn: hit(Candidate{
			ProviderID: "70523", Title: "Dark", Year: 2017, Confidence: 0.9,
			Posters:    []Poster{{URL: "https://tmdb/en.jpg", Lang: "en"}},
			CrossRefs:  map[string]string{KeyTVDB: "334824"},
		})}
		fanart := &fakeProvider{key: KeyFanart, fn: func(q Query) (*Candidate, error) {
			assert.Equal(t, "334824", q.IDs[KeyTVDB])
			return &Candidate{ProviderID: "334824", Posters: []Poster{{URL: "https://fanart/dark.jpg", Lang: "fr"}}}, nil
		}}
		fetcher := &fakeFetcher{images: map[string][]byte{
			"https://tmdb/en.jpg":     []byte("en"),
			"https://fanart/dark.jpg": []byte("fanart"),
		}}

		o := New(Providers{TVMaze: &fakeProvider{key: KeyTVMaze}, TMDBTV: tmdb, FanartTV: fanart}, Options{Fetcher: fetcher})
		m, err := o.Match(context.Background(), dark)
		require.NoError(t, err)
		assert.Equal(t, KeyFanart, m.Provider)
		assert.Equal(t, KeyTMDB, m.Source)
		assert.Equal(t, []string{"https://fanart/dark.jpg"}, fetcher.urls)
	})

	t.Run("generic title is downgraded below the threshold", func(t *testing.T) {
		t.Parallel()

		tvmaze := &fakeProvider{key: KeyTVMaze, fn: hit(Candidate{
			ProviderID: "9", Title: "Le Journal", Confidence: 0.95, Posters: []Poster{{URL: "https://tvmaze/journal.jpg"}},
		})}
		fetcher := &fakeFetcher{images: map[string][]byte{"https://tvmaze/journal.jpg": []byte("x")}}

		o := New(Providers{TVMaze: tvmaze}, Options{Fetcher: fetcher})
		_, err := o.Match(context.Background(), Subject{Title: "Le Journal", Category: categories.Emission})
		assert.True(t, errors.Is(err, ErrNoMatch))
		assert.Empty(t, fetcher.urls)
	})
}

func TestCrossRefsLookedUpOnDemand(t *testing.T) {
	t.Parallel()

	dark := Subject{Title: "Dark", Year: 2017, MediaType: categories.MediaSeries, Category: categories.Serie, PreferredLang: "fr"}

	tmdbHit := func(lookups *atomic.Int32, posters ...Poster) *fakeProvider {
		return &fakeProvider{key: KeyTMDB, fn: func(Query) (*Candidate, error) {
			return &Candidate{
				ProviderID: "70523", Title: "Dark", Year: 2017, Confidence: 0.9, Posters: posters,
				LookupCrossRefs: func(context.Context) (map[string]string, error) {
					lookups.Add(1)
					return map[string]string{KeyTVDB: "334824", KeyIMDB: "tt5753856"}, nil
				},
			}, nil
		}}
	}

	t.Run("not looked up when the hit has a poster", func(t *testing.T) {
		t.Parallel()

		var lookups atomic.Int32
		fanart := &fakeProvider{key: KeyFanart}
		fetcher := &fakeFetcher{images: map[string][]byte{"https://tmdb/fr.jpg": []byte("fr")}}

		o := New(Providers{TMDBTV: tmdbHit(&lookups, Poster{URL: "https://tmdb/fr.jpg", Lang: "fr"}), FanartTV: fanart}, Options{Fetcher: fetcher})
		m, err := o.Match(context.Background(), dark)
		require.NoError(t, err)
		assert.Equal(t, KeyTMDB, m.Provider)
		assert.Zero(t, lookups.Load())
		assert.Zero(t, fanart.callCount())
	})

	t.Run("not looked up for a rejected hit", func(t *testing.T) {
		t.Parallel()

		var lookups atomic.Int32
		tmdb := tmdbHit(&lookups)
		tmdb.fn = func(Query) (*Candidate, error) {
			return &Candidate{ProviderID: "1", Title: "Dark Matter", Confidence: 0.2, LookupCrossRefs: func(context.Context) (map[string]string, error) {
				lookups.Add(1)
				return nil, nil
			}}, nil
		}

		o := New(Providers{TMDBTV: tmdb, FanartTV: &fakeProvider{key: KeyFanart}}, Options{Fetcher: &fakeFetcher{}})
		_, err := o.Match(context.Background(), dark)
		assert.True(t, errors.Is(err, ErrNoMatch))
		assert.Zero(t, lookups.Load())
	})

	t.Run("looked up once when fanart needs the tvdb id", func(t *testing.T) {
		t.Parallel()

		var lookups atomic.Int32
		fanart := &fakeProvider{key: KeyFanart, fn: func(q Query) (*Candidate, error) {
			if q.IDs[KeyTVDB] != "334824" {
				return nil, nil
			}
			return &Candidate{ProviderID: "334824", Posters: []Poster{{URL: "https://fanart/dark.jpg", Lang: "fr"}}}, nil
		}}
		fetcher := &fakeFetcher{images: map[string][]byte{"https://fanart/dark.jpg": []byte("fanart")}}

		o := New(Providers{TMDBTV: tmdbHit(&lookups, Poster{URL: "https://tmdb/en.jpg", Lang: "en"}), FanartTV: fanart}, Options{Fetcher: fetcher})
		m, err := o.Match(context.Background(), dark)
		require.NoError(t, err)
		assert.Equal(t, KeyFanart, m.Provider)
		assert.Equal(t, "tt5753856", m.IDs[KeyIMDB])
		assert.Equal(t, int32(1), lookups.Load())
	})
}

func TestGenericStrategy(t *testing.T) {
	t.Parallel()

	openLibrary := &fakeProvider{key: KeyOpenLibrary, fn: hit(Candidate{ProviderID: "OL1", Confidence: 0.9, Posters: []Poster{{URL: "https://ol/1.jpg"}}})}
	comicVine := &fakeProvider{key: KeyComicVine, fn: hit(Candidate{ProviderID: "4000-1", Confidence: 0.9, Posters: []Poster{{URL: "https://cv/1.jpg"}}})}
	fetcher := &fakeFetcher{images: map[string][]byte{"https://ol/1.jpg": []byte("b"), "https://cv/1.jpg": []byte("c")}}
	o := New(Providers{OpenLibrary: openLibrary, ComicVine: comicVine}, Options{Fetcher: fetcher})

	m, err := o.Match(context.Background(), Subject{Title: "Dune", Category: categories.Book})
	require.NoError(t, err)
	assert.Equal(t, KeyOpenLibrary, m.Provider)

	m, err = o.Match(context.Background(), Subject{Title: "Saga", Category: categories.Comic})
	require.NoError(t, err)
	assert.Equal(t, KeyComicVine, m.Provider)

	_, err = o.Match(context.Background(), Subject{Title: "Some.App", Category: categories.Other})
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	tmdb := &fakeProvider{key: KeyTMDB}
	o := New(Providers{TMDBMovie: tmdb}, Options{Fetcher: &fakeFetcher{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Match(ctx, matrix())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, tmdb.callCount())
}

func TestCancelDuringWaterfall(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tmdb := &fakeProvider{key: KeyTMDB, fn: func(Query) (*Candidate, error) {
		cancel()
		return nil, context.Canceled
	}}
	fanart := &fakeProvider{key: KeyFanart}
	o := New(Providers{TMDBMovie: tmdb, FanartMovie: fanart}, Options{Fetcher: &fakeFetcher{}})

	_, err := o.Match(ctx, matrix())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, fanart.callCount())
}

func TestPreferredOrder(t *testing.T) {
	t.Parallel()

	c := &Candidate{Posters: []Poster{
		{URL: "de", Lang: "de"},
		{URL: "en", Lang: "en"},
		{URL: ""},
		{URL: "none"},
		{URL: "fr", Lang: "FR"},
	}}
	got := preferredOrder(Subject{PreferredLang: "fr"}, c)

	urls := make([]string, 0, len(got))
	for _, p := range got {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{"fr", "none", "en", "de"}, urls)

	only := preferredLangOnly(Subject{PreferredLang: "fr"}, c)
	require.Len(t, only, 1)
	assert.Equal(t, "fr", only[0].URL)
	assert.Len(t, preferredLangOnly(Subject{}, c), 4)
}
