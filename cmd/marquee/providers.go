// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/domain"
	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/comicvine"
	"github.com/autobrr/marquee/internal/providers/deezer"
	"github.com/autobrr/marquee/internal/providers/fanart"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/providers/jikan"
	"github.com/autobrr/marquee/internal/providers/openlibrary"
	"github.com/autobrr/marquee/internal/providers/rawg"
	"github.com/autobrr/marquee/internal/providers/tmdb"
	"github.com/autobrr/marquee/internal/providers/tvmaze"
)

// configureLimiter applies per-provider intervals stricter than the default.
func configureLimiter(limiter *httpx.RateLimiter) {
	limiter.SetInterval(matching.KeyJikan, jikan.MinInterval)
}

// buildProviders creates every catalog client the config allows. Catalogs
// that need a key are left nil without one, which skips their waterfall step.
func buildProviders(cfg *domain.Config, client *httpx.Client) matching.Providers {
	var p matching.Providers

	if cfg.TMDBAPIKey != "" {
		if c, err := tmdb.New(cfg.TMDBAPIKey, "", cfg.PreferredLang, tmdb.WithHTTP(client)); err == nil {
			p.TMDBMovie = c.Movies()
			p.TMDBTV = c.TV()
		} else {
			log.Warn().Err(err).Msg("tmdb disabled")
		}
	}
	if cfg.FanartAPIKey != "" {
		if c, err := fanart.New(cfg.FanartAPIKey, "", fanart.WithHTTP(client)); err == nil {
			p.FanartMovie = c.Movies()
			p.FanartTV = c.TV()
		} else {
			log.Warn().Err(err).Msg("fanart disabled")
		}
	}
	if cfg.RAWGAPIKey != "" {
		if c, err := rawg.New(cfg.RAWGAPIKey, "", rawg.WithHTTP(client)); err == nil {
			p.RAWG = c
		} else {
			log.Warn().Err(err).Msg("rawg disabled")
		}
	}
	if cfg.ComicVineAPIKey != "" {
		if c, err := comicvine.New(cfg.ComicVineAPIKey, "", comicvine.WithHTTP(client)); err == nil {
			p.ComicVine = c
		} else {
			log.Warn().Err(err).Msg("comicvine disabled")
		}
	}

	p.TVMaze = tvmaze.New("", tvmaze.WithHTTP(client))
	p.Jikan = jikan.New("", jikan.WithHTTP(client))
	p.OpenLibrary = openlibrary.New("", openlibrary.WithHTTP(client))

	dz := deezer.New("", deezer.WithHTTP(client))
	p.DeezerTrack = dz.Tracks()
	p.DeezerAlbum = dz.Albums()

	return p
}

// enabledProviders lists the catalog keys a Providers value can reach.
func enabledProviders(p matching.Providers) []string {
	var keys []string
	add := func(key string, providers ...matching.Provider) {
		for _, pr := range providers {
			if pr != nil {
				keys = append(keys, key)
				return
			}
		}
	}
	add(matching.KeyTMDB, p.TMDBMovie, p.TMDBTV)
	add(matching.KeyFanart, p.FanartMovie, p.FanartTV)
	add(matching.KeyTVMaze, p.TVMaze)
	add(matching.KeyJikan, p.Jikan)
	add(matching.KeyRAWG, p.RAWG)
	add(matching.KeyDeezer, p.DeezerTrack, p.DeezerAlbum)
	add(matching.KeyOpenLibrary, p.OpenLibrary)
	add(matching.KeyComicVine, p.ComicVine)
	return keys
}
