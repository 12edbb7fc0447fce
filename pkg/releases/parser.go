// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package releases parses raw release names into the hints used to match
// a release against external catalogs.
package releases

import (
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/moistari/rls"
)

const defaultParseTTL = 5 * time.Minute

// Parser caches rls parses. Feeds announce the same names repeatedly, and
// classification and fetching both parse the title of a release.
type Parser struct {
	cache *ttlcache.Cache[string, *rls.Release]
}

func NewParser(ttl time.Duration) *Parser {
	if ttl <= 0 {
		ttl = defaultParseTTL
	}
	return &Parser{
		cache: ttlcache.New(ttlcache.Options[string, *rls.Release]{}.SetDefaultTTL(ttl)),
	}
}

func NewDefaultParser() *Parser {
	return NewParser(defaultParseTTL)
}

// Parse returns the parsed release for name. The result is shared and must
// not be modified.
func (p *Parser) Parse(name string) *rls.Release {
	name = strings.TrimSpace(name)
	if p == nil || name == "" {
		return &rls.Release{}
	}
	if cached, ok := p.cache.Get(name); ok {
		return cached
	}

	release := rls.ParseString(name)
	p.cache.Set(name, &release, ttlcache.DefaultTTL)
	return &release
}

func (p *Parser) Clear(name string) {
	name = strings.TrimSpace(name)
	if p == nil || name == "" {
		return
	}
	p.cache.Delete(name)
}

// Hints is what matching needs from a release name.
type Hints struct {
	Title   string
	Year    int
	Season  *int
	Episode *int
	// Artist is set for music releases; Title then holds the album or track.
	Artist    string
	MediaType string
	Adult     bool
}

// Hints parses name and reduces it to matching hints.
func (p *Parser) Hints(name string) Hints {
	release := p.Parse(name)
	info := DetectMedia(release)

	h := Hints{
		Title:     strings.TrimSpace(release.Title),
		Year:      release.Year,
		Artist:    strings.TrimSpace(release.Artist),
		MediaType: info.MediaType,
		Adult:     info.Adult,
	}
	if release.Series > 0 {
		s := release.Series
		h.Season = &s
	}
	if release.Episode > 0 {
		e := release.Episode
		h.Episode = &e
	}
	if h.Title == "" {
		h.Title = strings.TrimSpace(name)
	}
	return h
}
