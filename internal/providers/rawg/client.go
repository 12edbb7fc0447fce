// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package rawg searches the RAWG video game database.
package rawg

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

const DefaultBaseURL = "https://api.rawg.io/api"

type Game struct {
	ID              int64  `json:"id"`
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	Released        string `json:"released"`
	BackgroundImage string `json:"background_image"`
}

type searchResponse struct {
	Count   int    `json:"count"`
	Results []Game `json:"results"`
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
		return nil, errors.New("rawg api key required")
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

func (c *Client) SearchGames(ctx context.Context, query string) ([]Game, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	var payload searchResponse
	err := c.http.GetJSON(ctx, httpx.Request{
		Provider: "rawg",
		URL:      c.baseURL + "/games",
		Params:   url.Values{"key": {c.apiKey}, "search": {query}, "page_size": {"10"}},
	}, &payload)
	return payload.Results, err
}

func (c *Client) Key() string { return matching.KeyRAWG }

func (c *Client) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	games, err := c.SearchGames(ctx, q.Title)
	if err != nil || len(games) == 0 {
		return nil, err
	}

	titles := make([]string, len(games))
	years := make([]int, len(games))
	for i, g := range games {
		titles[i] = g.Name
		years[i] = score.YearFromDate(g.Released)
	}
	idx, confidence := score.Best(q.Title, q.Year, titles, years)
	g := games[idx]

	cand := &matching.Candidate{
		ProviderKey: matching.KeyRAWG,
		ProviderID:  strconv.FormatInt(g.ID, 10),
		Title:       g.Name,
		Year:        years[idx],
		Confidence:  confidence,
	}
	if g.BackgroundImage != "" {
		cand.Posters = []matching.Poster{{URL: g.BackgroundImage}}
	}
	return cand, nil
}
