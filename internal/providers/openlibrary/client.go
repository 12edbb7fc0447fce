// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package openlibrary searches Open Library and serves its book covers.
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/providers/score"
)

const (
	DefaultBaseURL      = "https://openlibrary.org"
	DefaultCoverBaseURL = "https://covers.openlibrary.org"
)

type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int64    `json:"cover_i"`
	Language         []string `json:"language"`
}

type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

type Client struct {
	baseURL      string
	coverBaseURL string
	http         *httpx.Client
}

type Option func(*Client)

func WithHTTP(client *httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

func WithCoverBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.coverBaseURL = strings.TrimRight(base, "/")
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		coverBaseURL: DefaultCoverBaseURL,
		http:         httpx.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SearchBooks(ctx context.Context, title string) ([]Doc, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("query must not be empty")
	}
	var payload searchResponse
	err := c.http.GetJSON(ctx, httpx.Request{
		Provider: "openlibrary",
		URL:      c.baseURL + "/search.json",
		Params: url.Values{
			"title":  {title},
			"limit":  {"10"},
			"fields": {"key,title,author_name,first_publish_year,cover_i,language"},
		},
	}, &payload)
	return payload.Docs, err
}

// CoverURL asks for the large cover and a 404 instead of the blank default.
func (c *Client) CoverURL(coverID int64) string {
	return fmt.Sprintf("%s/b/id/%d-L.jpg?default=false", c.coverBaseURL, coverID)
}

func (c *Client) Key() string { return matching.KeyOpenLibrary }

// Search only considers works that carry a cover.
func (c *Client) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	docs, err := c.SearchBooks(ctx, q.Title)
	if err != nil {
		return nil, err
	}

	var (
		covered []Doc
		titles  []string
		years   []int
	)
	for _, d := range docs {
		if d.CoverID <= 0 {
			continue
		}
		covered = append(covered, d)
		titles = append(titles, d.Title)
		years = append(years, d.FirstPublishYear)
	}
	idx, confidence := score.Best(q.Title, q.Year, titles, years)
	if idx < 0 {
		return nil, nil
	}

	d := covered[idx]
	return &matching.Candidate{
		ProviderKey: matching.KeyOpenLibrary,
		ProviderID:  strings.TrimPrefix(d.Key, "/works/"),
		Title:       d.Title,
		Year:        d.FirstPublishYear,
		Confidence:  confidence,
		Posters:     []matching.Poster{{URL: c.CoverURL(d.CoverID)}},
	}, nil
}
