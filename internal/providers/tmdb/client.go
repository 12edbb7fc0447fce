// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package tmdb searches The Movie Database for movies and tv shows.
package tmdb

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/autobrr/marquee/internal/providers/httpx"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	posterSize          = "w500"
)

// Result is a single TMDB search match.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	Popularity   float64 `json:"popularity"`
}

// DisplayTitle is the movie title or the show name.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Date is the release date or the first air date.
func (r Result) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// Response models the paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

type Image struct {
	FilePath    string  `json:"file_path"`
	Language    string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	Width       int     `json:"width"`
}

type Images struct {
	Posters []Image `json:"posters"`
}

type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	http         *httpx.Client
}

// Option configures a Client.
type Option func(*Client)

func WithHTTP(client *httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.imageBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// New creates a TMDB client. language is the preferred poster language.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: DefaultImageBaseURL,
		language:     strings.TrimSpace(language),
		http:         httpx.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	return c.http.GetJSON(ctx, httpx.Request{Provider: "tmdb", URL: c.baseURL + path, Params: params}, out)
}

func (c *Client) search(ctx context.Context, kind, query string, year int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if year > 0 {
		if kind == "movie" {
			params.Set("primary_release_year", strconv.Itoa(year))
		} else {
			params.Set("first_air_date_year", strconv.Itoa(year))
		}
	}

	var payload Response
	if err := c.get(ctx, "/search/"+kind, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchMovie searches movies, filtered by primary release year when known.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*Response, error) {
	return c.search(ctx, "movie", query, year)
}

// SearchTV searches shows, filtered by first air year when known.
func (c *Client) SearchTV(ctx context.Context, query string, year int) (*Response, error) {
	return c.search(ctx, "tv", query, year)
}

// Details fetches one movie or show by id. kind is "movie" or "tv".
func (c *Client) Details(ctx context.Context, kind string, id int64) (*Result, error) {
	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}
	var payload Result
	if err := c.get(ctx, "/"+kind+"/"+strconv.FormatInt(id, 10), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Images lists posters in the preferred language, English and untagged.
func (c *Client) Images(ctx context.Context, kind string, id int64) (*Images, error) {
	langs := []string{"en", "null"}
	if c.language != "" && c.language != "en" {
		langs = append([]string{c.language}, langs...)
	}
	params := url.Values{}
	params.Set("include_image_language", strings.Join(langs, ","))

	var payload Images
	if err := c.get(ctx, "/"+kind+"/"+strconv.FormatInt(id, 10)+"/images", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TVExternalIDs returns the ids of a show in other catalogs.
func (c *Client) TVExternalIDs(ctx context.Context, id int64) (*ExternalIDs, error) {
	var payload ExternalIDs
	if err := c.get(ctx, "/tv/"+strconv.FormatInt(id, 10)+"/external_ids", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + posterSize + path
}
