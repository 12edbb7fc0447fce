// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package jikan searches MyAnimeList through the Jikan API.
package jikan

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/providers/score"
)

const (
	DefaultBaseURL = "https://api.jikan.moe/v4"
	// MinInterval keeps clients under the public API limit of 3 requests
	// per second.
	MinInterval = 400 * time.Millisecond
)

type imageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type Anime struct {
	MalID        int64  `json:"mal_id"`
	Title        string `json:"title"`
	TitleEnglish string `json:"title_english"`
	Year         int    `json:"year"`
	Aired        struct {
		From string `json:"from"`
	} `json:"aired"`
	Images struct {
		JPG  imageSet `json:"jpg"`
		WebP imageSet `json:"webp"`
	} `json:"images"`
}

func (a Anime) year() int {
	if a.Year > 0 {
		return a.Year
	}
	return score.YearFromDate(a.Aired.From)
}

type searchResponse struct {
	Data []Anime `json:"data"`
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

func (c *Client) SearchAnime(ctx context.Context, query string) ([]Anime, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	var payload searchResponse
	err := c.http.GetJSON(ctx, httpx.Request{
		Provider: "jikan",
		URL:      c.baseURL + "/anime",
		Params:   url.Values{"q": {query}, "limit": {"10"}, "sfw": {"true"}},
	}, &payload)
	return payload.Data, err
}

func (c *Client) Key() string { return matching.KeyJikan }

// Search scores both the romaji and the English title of every result.
func (c *Client) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	results, err := c.SearchAnime(ctx, q.Title)
	if err != nil || len(results) == 0 {
		return nil, err
	}

	var (
		best     = -1
		bestConf float64
	)
	for i, a := range results {
		idx, conf := score.Best(q.Title, q.Year, []string{a.Title, a.TitleEnglish}, []int{a.year(), a.year()})
		if idx >= 0 && conf > bestConf {
			best, bestConf = i, conf
		}
	}
	if best < 0 {
		return nil, nil
	}

	a := results[best]
	cand := &matching.Candidate{
		ProviderKey: matching.KeyJikan,
		ProviderID:  strconv.FormatInt(a.MalID, 10),
		Title:       a.Title,
		Year:        a.year(),
		Confidence:  bestConf,
	}
	for _, u := range []string{a.Images.JPG.LargeImageURL, a.Images.WebP.LargeImageURL, a.Images.JPG.ImageURL} {
		if u != "" {
			cand.Posters = append(cand.Posters, matching.Poster{URL: u})
		}
	}
	return cand, nil
}
