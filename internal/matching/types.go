// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package matching routes a release to the catalog providers that can
// resolve it and walks them in a fixed order until one yields a poster.
package matching

import (
	"context"
	"errors"
	"maps"

	"github.com/autobrr/marquee/pkg/categories"
)

// ErrNoMatch means every provider the selected strategy tried missed.
var ErrNoMatch = errors.New("no provider produced a usable poster")

// Provider keys, also used as keys of cross reference ids.
const (
	KeyTMDB        = "tmdb"
	KeyTVDB        = "tvdb"
	KeyIMDB        = "imdb"
	KeyFanart      = "fanart"
	KeyTVMaze      = "tvmaze"
	KeyJikan       = "jikan"
	KeyRAWG        = "rawg"
	KeyDeezer      = "deezer"
	KeyOpenLibrary = "openlibrary"
	KeyComicVine   = "comicvine"
)

// Subject is what a release resolves to once parsed: the thing a poster is
// wanted for.
type Subject struct {
	ReleaseID       int64
	Title           string
	NormalizedTitle string
	Year            int
	Season          *int
	Episode         *int
	// Artist is set for audio subjects.
	Artist        string
	MediaType     string
	Category      categories.Unified
	PreferredLang string
	// IDs are external ids already known for the subject, keyed by provider.
	IDs map[string]string
}

// Query is what one provider is asked.
type Query struct {
	Title     string
	Year      int
	Season    *int
	Episode   *int
	Artist    string
	MediaType string
	Lang      string
	// IDs carries ids collected from earlier providers in the waterfall.
	IDs map[string]string
}

type Poster struct {
	URL  string
	Lang string
	Size string
}

// Candidate is a provider's best hit for a query.
type Candidate struct {
	ProviderKey string
	ProviderID  string
	Title       string
	Year        int
	Confidence  float64
	Posters     []Poster
	// CrossRefs are ids of the same subject in other catalogs.
	CrossRefs map[string]string
	// LookupCrossRefs, when set, fetches cross references that cost an
	// extra request. It is only called when the hit yields no poster and a
	// later step needs an id not known yet.
	LookupCrossRefs func(ctx context.Context) (map[string]string, error)
}

// Provider searches one external catalog. A nil candidate with a nil error
// is a miss.
type Provider interface {
	Key() string
	Search(ctx context.Context, q Query) (*Candidate, error)
}

// ImageFetcher downloads poster bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Match is a resolved poster with the image already downloaded.
type Match struct {
	// Provider supplied the poster image.
	Provider   string
	ProviderID string
	// Source is the provider that identified the subject. It differs from
	// Provider when a fallback supplied the image.
	Source     string
	Confidence float64
	Poster     Poster
	Image      []byte
	IDs        map[string]string
}

// Strategy resolves one family of media types.
type Strategy interface {
	Name() string
	CanHandle(mediaType string, cat categories.Unified) bool
	TryMatch(ctx context.Context, s Subject) (*Match, error)
}

// Provider call outcomes reported to a Recorder.
const (
	OutcomeHit        = "hit"
	OutcomeMiss       = "miss"
	OutcomeError      = "error"
	OutcomeRejected   = "rejected"
	OutcomeEmptyImage = "empty_image"
	OutcomeSkipped    = "skipped"
)

// Recorder observes provider calls.
type Recorder interface {
	ProviderCall(provider, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ProviderCall(string, string) {}

func (s Subject) query() Query {
	return Query{
		Title:     s.Title,
		Year:      s.Year,
		Season:    s.Season,
		Episode:   s.Episode,
		Artist:    s.Artist,
		MediaType: s.MediaType,
		Lang:      s.PreferredLang,
		IDs:       maps.Clone(s.IDs),
	}
}
