// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tmdb

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/score"
)

type provider struct {
	client *Client
	kind   string
}

// Movies is the movie search provider.
func (c *Client) Movies() matching.Provider { return &provider{client: c, kind: "movie"} }

// TV is the show search provider.
func (c *Client) TV() matching.Provider { return &provider{client: c, kind: "tv"} }

func (p *provider) Key() string { return matching.KeyTMDB }

func (p *provider) Search(ctx context.Context, q matching.Query) (*matching.Candidate, error) {
	result, confidence, err := p.find(ctx, q)
	if err != nil || result == nil {
		return nil, err
	}

	c := &matching.Candidate{
		ProviderKey: matching.KeyTMDB,
		ProviderID:  strconv.FormatInt(result.ID, 10),
		Title:       result.DisplayTitle(),
		Year:        score.YearFromDate(result.Date()),
		Confidence:  confidence,
		Posters:     p.posters(ctx, result),
	}

	if p.kind == "tv" {
		id := result.ID
		c.LookupCrossRefs = func(ctx context.Context) (map[string]string, error) {
			return p.crossRefs(ctx, id)
		}
	}
	return c, nil
}

// crossRefs costs one request, so the waterfall asks for it only when a
// later step needs the tvdb id.
func (p *provider) crossRefs(ctx context.Context, id int64) (map[string]string, error) {
	ext, err := p.client.TVExternalIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	refs := map[string]string{}
	if ext.TVDBID > 0 {
		refs[matching.KeyTVDB] = strconv.FormatInt(ext.TVDBID, 10)
	}
	if ext.IMDBID != "" {
		refs[matching.KeyIMDB] = ext.IMDBID
	}
	return refs, nil
}

// find uses a known tmdb id when the subject has one and searches otherwise.
func (p *provider) find(ctx context.Context, q matching.Query) (*Result, float64, error) {
	if raw := q.IDs[matching.KeyTMDB]; raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			result, err := p.client.Details(ctx, p.kind, id)
			if err != nil {
				return nil, 0, err
			}
			return result, 1, nil
		}
	}

	resp, err := p.client.search(ctx, p.kind, q.Title, q.Year)
	if err != nil {
		return nil, 0, err
	}
	if len(resp.Results) == 0 && q.Year > 0 {
		// indexers often carry the year of a later season or a re-release
		if resp, err = p.client.search(ctx, p.kind, q.Title, 0); err != nil {
			return nil, 0, err
		}
	}
	if len(resp.Results) == 0 {
		return nil, 0, nil
	}

	titles := make([]string, len(resp.Results))
	years := make([]int, len(resp.Results))
	for i, r := range resp.Results {
		titles[i] = r.DisplayTitle()
		years[i] = score.YearFromDate(r.Date())
	}
	idx, confidence := score.Best(q.Title, q.Year, titles, years)
	return &resp.Results[idx], confidence, nil
}

func (p *provider) posters(ctx context.Context, result *Result) []matching.Poster {
	images, err := p.client.Images(ctx, p.kind, result.ID)
	if err != nil || len(images.Posters) == 0 {
		if err != nil {
			log.Debug().Err(err).Int64("tmdb_id", result.ID).Msg("tmdb images lookup failed, using search poster")
		}
		if result.PosterPath == "" {
			return nil
		}
		return []matching.Poster{{URL: p.client.posterURL(result.PosterPath), Lang: p.client.language, Size: posterSize}}
	}

	out := make([]matching.Poster, 0, len(images.Posters))
	for _, img := range images.Posters {
		if img.FilePath == "" {
			continue
		}
		out = append(out, matching.Poster{URL: p.client.posterURL(img.FilePath), Lang: img.Language, Size: posterSize})
	}
	return out
}
