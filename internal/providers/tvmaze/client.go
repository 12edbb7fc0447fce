// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package tvmaze searches the TVmaze episode guide.
package tvmaze

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/providers/score"
)

const DefaultBaseURL = "https://api.tvmaze.com"

type Show struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
	Language  string `json:"language"`
	Image     *struct {
		Medium   string `json:"medium"`
		Original string `json:"original"`
	} `json:"image"`
	Externals struct {
		TheTVDB *int64 `json:"thetvdb"`
		IMDB    string `json:"imdb"`
	} `json:"externals"`
}

type SearchResult struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

type Client struct {
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

// New creates a TVmaze client. The API needs no key.
func New(baseURL string, opts ...Option) *Client {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpx.New()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SearchShows(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	var payload []SearchResult
	err := c.http.GetJSON(ctx, httpx.Request{
		Provider: "tvmaze",
		URL:      c.baseURL + "/search/shows",
		Params:   url.Values{"q": {query}},
	}, &payload)
	return payload, err
}

func (c *Client) Key() string { return matching.KeyTVMaze }

// Search returns the best scoring show. Confidence comes from title and
// premiere year agreement, not from the TVmaze relevance score.
func (c *Client) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	results, err := c.SearchShows(ctx, q.Title)
	if err != nil || len(results) == 0 {
		return nil, err
	}

	titles := make([]string, len(results))
	years := make([]int, len(results))
	for i, r := range results {
		titles[i] = r.Show.Name
		years[i] = score.YearFromDate(r.Show.Premiered)
	}
	idx, confidence := score.Best(q.Title, q.Year, titles, years)
	show := results[idx].Show

	cand := &matching.Candidate{
		ProviderKey: matching.KeyTVMaze,
		ProviderID:  strconv.FormatInt(show.ID, 10),
		Title:       show.Name,
		Year:        years[idx],
		Confidence:  confidence,
		CrossRefs:   map[string]string{},
	}
	if show.Image != nil {
		if show.Image.Original != "" {
			cand.Posters = append(cand.Posters, matching.Poster{URL: show.Image.Original, Size: "original"})
		}
		if show.Image.Medium != "" {
			cand.Posters = append(cand.Posters, matching.Poster{URL: show.Image.Medium, Size: "medium"})
		}
	}
	if show.Externals.TheTVDB != nil && *show.Externals.TheTVDB > 0 {
		cand.CrossRefs[matching.KeyTVDB] = strconv.FormatInt(*show.Externals.TheTVDB, 10)
	}
	if show.Externals.IMDB != "" {
		cand.CrossRefs[matching.KeyIMDB] = show.Externals.IMDB
	}
	return cand, nil
}
