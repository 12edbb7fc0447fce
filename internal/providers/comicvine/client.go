// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package comicvine searches Comic Vine volumes.
package comicvine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/providers/score"
)

const DefaultBaseURL = "https://comicvine.gamespot.com/api"

// statusOK is the Comic Vine status_code for a successful call.
const statusOK = 1

type Volume struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartYear string `json:"start_year"`
	Image     *struct {
		OriginalURL string `json:"original_url"`
		MediumURL   string `json:"medium_url"`
	} `json:"image"`
}

type searchResponse struct {
	Error      string   `json:"error"`
	StatusCode int      `json:"status_code"`
	Results    []Volume `json:"results"`
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
		return nil, errors.New("comicvine api key required")
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

func (c *Client) SearchVolumes(ctx context.Context, query string) ([]Volume, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	var payload searchResponse
	if err := c.http.GetJSON(ctx, httpx.Request{
		Provider: "comicvine",
		URL:      c.baseURL + "/search/",
		Params: url.Values{
			"api_key":   {c.apiKey},
			"format":    {"json"},
			"resources": {"volume"},
			"query":     {query},
			"limit":     {"10"},
		},
	}, &payload); err != nil {
		return nil, err
	}
	if payload.StatusCode != statusOK {
		return nil, fmt.Errorf("comicvine: %s (status %d)", payload.Error, payload.StatusCode)
	}
	return payload.Results, nil
}

func (c *Client) Key() string { return matching.KeyComicVine }

func (c *Client) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	volumes, err := c.SearchVolumes(ctx, q.Title)
	if err != nil || len(volumes) == 0 {
		return nil, err
	}

	titles := make([]string, len(volumes))
	years := make([]int, len(volumes))
	for i, v := range volumes {
		titles[i] = v.Name
		years[i] = score.YearFromDate(v.StartYear)
	}
	idx, confidence := score.Best(q.Title, q.Year, titles, years)
	v := volumes[idx]

	cand := &matching.Candidate{
		ProviderKey: matching.KeyComicVine,
		ProviderID:  strconv.FormatInt(v.ID, 10),
		Title:       v.Name,
		Year:        years[idx],
		Confidence:  confidence,
	}
	if v.Image != nil {
		for _, u := range []string{v.Image.OriginalURL, v.Image.MediumURL} {
			if u != "" {
				cand.Posters = append(cand.Posters, matching.Poster{URL: u})
			}
		}
	}
	return cand, nil
}
