// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package deezer searches the public Deezer catalog for tracks and albums.
package deezer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/providers/score"
)

const DefaultBaseURL = "https://api.deezer.com"

// Deezer allows 50 requests per 5 seconds.
const (
	QuotaRequests = 50
	QuotaPeriod   = 5 * time.Second
)

// APIError is the error object Deezer returns with a 200 status.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deezer: %s (%d): %s", e.Type, e.Code, e.Message)
}

type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Album struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CoverXL     string `json:"cover_xl"`
	CoverBig    string `json:"cover_big"`
	ReleaseDate string `json:"release_date"`
	Artist      Artist `json:"artist"`
}

type Track struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist Artist `json:"artist"`
	Album  Album  `json:"album"`
}

type trackResponse struct {
	Data  []Track   `json:"data"`
	Error *APIError `json:"error"`
}

type albumResponse struct {
	Data  []Album   `json:"data"`
	Error *APIError `json:"error"`
}

type Client struct {
	baseURL string
	http    *httpx.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithHTTP(client *httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLimiter replaces the quota limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpx.New(),
		limiter: rate.NewLimiter(rate.Every(QuotaPeriod/QuotaRequests), QuotaRequests),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func searchTerm(title, artist string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("query must not be empty")
	}
	if artist = strings.TrimSpace(artist); artist != "" {
		return fmt.Sprintf("artist:%q track:%q", artist, title), nil
	}
	return title, nil
}

func (c *Client) get(ctx context.Context, path, term string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.http.GetJSON(ctx, httpx.Request{
		Provider: "deezer",
		URL:      c.baseURL + path,
		Params:   url.Values{"q": {term}, "limit": {"10"}},
	}, out)
}

func (c *Client) SearchTracks(ctx context.Context, title, artist string) ([]Track, error) {
	term, err := searchTerm(title, artist)
	if err != nil {
		return nil, err
	}
	var payload trackResponse
	if err := c.get(ctx, "/search/track", term, &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, payload.Error
	}
	return payload.Data, nil
}

func (c *Client) SearchAlbums(ctx context.Context, title, artist string) ([]Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("query must not be empty")
	}
	term := title
	if artist = strings.TrimSpace(artist); artist != "" {
		term = fmt.Sprintf("artist:%q album:%q", artist, title)
	}
	var payload albumResponse
	if err := c.get(ctx, "/search/album", term, &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, payload.Error
	}
	return payload.Data, nil
}

// mixed weighs the title against the artist when the query names one.
func mixed(q matching.Query, title, artist string) float64 {
	t := score.TitleSimilarity(q.Title, title)
	if strings.TrimSpace(q.Artist) == "" {
		return t
	}
	return 0.7*t + 0.3*score.TitleSimilarity(q.Artist, artist)
}

func cover(a Album) []matching.Poster {
	var out []matching.Poster
	for _, u := range []string{a.CoverXL, a.CoverBig} {
		if u != "" {
			out = append(out, matching.Poster{URL: u})
		}
	}
	return out
}

type trackProvider struct{ c *Client }

type albumProvider struct{ c *Client }

// Tracks matches single releases against Deezer tracks and serves the
// album cover of the best track.
func (c *Client) Tracks() matching.Provider { return trackProvider{c: c} }

// Albums matches releases against Deezer albums.
func (c *Client) Albums() matching.Provider { return albumProvider{c: c} }

func (trackProvider) Key() string { return matching.KeyDeezer }

func (p trackProvider) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	tracks, err := p.c.SearchTracks(ctx, q.Title, q.Artist)
	if err != nil || len(tracks) == 0 {
		return nil, err
	}
	best, bestConf := 0, -1.0
	for i, t := range tracks {
		if s := mixed(q, t.Title, t.Artist.Name); s > bestConf {
			best, bestConf = i, s
		}
	}
	t := tracks[best]
	return &matching.Candidate{
		ProviderKey: matching.KeyDeezer,
		ProviderID:  strconv.FormatInt(t.ID, 10),
		Title:       t.Title,
		Confidence:  bestConf,
		Posters:     cover(t.Album),
	}, nil
}

func (albumProvider) Key() string { return matching.KeyDeezer }

func (p albumProvider) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	albums, err := p.c.SearchAlbums(ctx, q.Title, q.Artist)
	if err != nil || len(albums) == 0 {
		return nil, err
	}
	best, bestConf := 0, -1.0
	for i, a := range albums {
		s := mixed(q, a.Title, a.Artist.Name)
		if q.Year > 0 {
			if y := score.YearFromDate(a.ReleaseDate); y > 0 && y != q.Year {
				s *= 0.9
			}
		}
		if s > bestConf {
			best, bestConf = i, s
		}
	}
	a := albums[best]
	return &matching.Candidate{
		ProviderKey: matching.KeyDeezer,
		ProviderID:  "album:" + strconv.FormatInt(a.ID, 10),
		Title:       a.Title,
		Year:        score.YearFromDate(a.ReleaseDate),
		Confidence:  bestConf,
		Posters:     cover(a),
	}, nil
}
