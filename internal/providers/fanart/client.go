// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package fanart looks up posters on fanart.tv by tmdb or tvdb id.
package fanart

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
)

const DefaultBaseURL = "https://webservice.fanart.tv/v3"

type Image struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Lang  string `json:"lang"`
	Likes string `json:"likes"`
}

type MovieImages struct {
	TMDBID       string  `json:"tmdb_id"`
	MoviePosters []Image `json:"movieposter"`
}

type ShowImages struct {
	TVDBID    string  `json:"thetvdb_id"`
	TVPosters []Image `json:"tvposter"`
}

type Client struct {
	apiKey  string
	baseURL string
	http    *httpx.Client
}

type Option func(*Client)

func WithHTTP(client *httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("fanart api key required")
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: httpx.New()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.http.GetJSON(ctx, httpx.Request{
		Provider: "fanart",
		URL:      c.baseURL + path,
		Params:   url.Values{"api_key": {c.apiKey}},
	}, out)
}

// Movie returns the images of a movie by tmdb id. Unknown ids return nil.
func (c *Client) Movie(ctx context.Context, tmdbID string) (*MovieImages, error) {
	var payload MovieImages
	if err := c.get(ctx, "/movies/"+url.PathEscape(tmdbID), &payload); err != nil {
		if httpx.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &payload, nil
}

// Show returns the images of a show by tvdb id. Unknown ids return nil.
func (c *Client) Show(ctx context.Context, tvdbID string) (*ShowImages, error) {
	var payload ShowImages
	if err := c.get(ctx, "/tv/"+url.PathEscape(tvdbID), &payload); err != nil {
		if httpx.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &payload, nil
}

type provider struct {
	client *Client
	tv     bool
}

// Movies looks posters up by the tmdb id found earlier in the waterfall.
func (c *Client) Movies() matching.Provider { return &provider{client: c} }

// TV looks posters up by the tvdb id found earlier in the waterfall.
func (c *Client) TV() matching.Provider { return &provider{client: c, tv: true} }

func (p *provider) Key() string { return matching.KeyFanart }

func (p *provider) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	if p.tv {
		id := q.IDs[matching.KeyTVDB]
		if id == "" {
			return nil, nil
		}
		show, err := p.client.Show(ctx, id)
		if err != nil || show == nil {
			return nil, err
		}
		return candidate(id, show.TVPosters), nil
	}

	id := q.IDs[matching.KeyTMDB]
	if id == "" {
		return nil, nil
	}
	movie, err := p.client.Movie(ctx, id)
	if err != nil || movie == nil {
		return nil, err
	}
	return candidate(id, movie.MoviePosters), nil
}

// candidate orders posters by likes, most liked first.
func candidate(id string, images []Image) *matching.Candidate {
	if len(images) == 0 {
		return nil
	}
	sorted := make([]Image, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, _ := strconv.Atoi(sorted[i].Likes)
		lj, _ := strconv.Atoi(sorted[j].Likes)
		return li > lj
	})

	posters := make([]matching.Poster, 0, len(sorted))
	for _, img := range sorted {
		posters = append(posters, matching.Poster{URL: img.URL, Lang: img.Lang})
	}
	return &matching.Candidate{ProviderKey: matching.KeyFanart, ProviderID: id, Posters: posters}
}
