// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package categories

import (
	"fmt"
	"strings"
)

// Unified is the single category every release is routed by.
type Unified string

const (
	Film       Unified = "Film"
	Serie      Unified = "Serie"
	Animation  Unified = "Animation"
	Anime      Unified = "Anime"
	Emission   Unified = "Emission"
	Spectacle  Unified = "Spectacle"
	JeuWindows Unified = "JeuWindows"
	JeuMac     Unified = "JeuMac"
	JeuConsole Unified = "JeuConsole"
	JeuMobile  Unified = "JeuMobile"
	Book       Unified = "Book"
	Comic      Unified = "Comic"
	Audio      Unified = "Audio"
	Xxx        Unified = "Xxx"
	Other      Unified = "Other"
)

var unifiedRanks = map[Unified]int{
	Other:      0,
	Film:       1,
	Serie:      1,
	Book:       1,
	Audio:      1,
	Xxx:        1,
	JeuWindows: 1,
	JeuConsole: 1,
	Animation:  2,
	Anime:      2,
	Emission:   2,
	Spectacle:  2,
	Comic:      2,
	JeuMac:     2,
	JeuMobile:  2,
}

// Rank is the specificity of u. Higher ranks win over lower ones when std
// ids disagree with an indexer mapping. Unknown values rank as Other.
func (u Unified) Rank() int {
	return unifiedRanks[u]
}

// Valid reports whether u is one of the known unified categories.
func (u Unified) Valid() bool {
	_, ok := unifiedRanks[u]
	return ok
}

func (u Unified) String() string {
	return string(u)
}

// IsGame reports whether u is one of the game variants.
func (u Unified) IsGame() bool {
	switch u {
	case JeuWindows, JeuMac, JeuConsole, JeuMobile:
		return true
	}
	return false
}

// ParseUnified accepts a stored unified category name, case-insensitively.
func ParseUnified(raw string) (Unified, error) {
	raw = strings.TrimSpace(raw)
	for u := range unifiedRanks {
		if strings.EqualFold(string(u), raw) {
			return u, nil
		}
	}
	return Other, fmt.Errorf("unknown unified category %q", raw)
}

// Media types a release can be routed with.
const (
	MediaMovie    = "movie"
	MediaSeries   = "series"
	MediaEmission = "emission"
	MediaGame     = "game"
	MediaAnime    = "anime"
	MediaAudio    = "audio"
	MediaBook     = "book"
	MediaComic    = "comic"
	MediaOther    = "other"
)

// MediaType is the matching media type for a unified category.
func (u Unified) MediaType() string {
	switch u {
	case Film, Animation:
		return MediaMovie
	case Serie:
		return MediaSeries
	case Emission, Spectacle:
		return MediaEmission
	case Anime:
		return MediaAnime
	case JeuWindows, JeuMac, JeuConsole, JeuMobile:
		return MediaGame
	case Audio:
		return MediaAudio
	case Book:
		return MediaBook
	case Comic:
		return MediaComic
	default:
		return MediaOther
	}
}

// UnifiedForKey maps a canonical group key to its unified category.
func UnifiedForKey(key string) (Unified, bool) {
	switch key {
	case KeyFilms:
		return Film, true
	case KeySeries:
		return Serie, true
	case KeyAnimation:
		return Animation, true
	case KeyAnime:
		return Anime, true
	case KeyGames:
		return JeuWindows, true
	case KeyComics:
		return Comic, true
	case KeyBooks:
		return Book, true
	case KeyAudio:
		return Audio, true
	case KeySpectacle:
		return Spectacle, true
	case KeyEmissions:
		return Emission, true
	}
	return Other, false
}

// rangeRule maps an inclusive id range to both the coarse classifier key and
// the unified category. The classifier and the resolver both read this one
// table, so they cannot drift apart.
type rangeRule struct {
	lo, hi  int
	key     string
	unified Unified
}

// Ordered most specific first; lookups take the first hit.
var rangeRules = []rangeRule{
	{CategoryTVAnime, CategoryTVAnime, KeySeries, Anime},
	{CategoryTVSport, CategoryTVSport, KeySeries, Emission},
	{CategoryTVDocumentary, CategoryTVDocumentary, KeySeries, Emission},
	{CategoryBooksComics, CategoryBooksComicsLast, KeyBooks, Comic},
	{CategoryPCMac, CategoryPCMac, KeyGames, JeuMac},
	{CategoryPCMobileOther, CategoryPCMobileOther, KeyGames, JeuMobile},
	{CategoryPCMobileIOS, CategoryPCAndroid, KeyGames, JeuMobile},

	{1000, 1999, KeyGames, JeuConsole},
	{2000, 2999, KeyFilms, Film},
	{3000, 3999, KeyAudio, Audio},
	{4000, 4999, KeyGames, JeuWindows},
	{5000, 5999, KeySeries, Serie},
	{6000, 6999, KeyXXX, Xxx},
	{7000, 7999, KeyBooks, Book},
	{8000, 8999, KeyOther, Other},
}

func lookupRange(id int) (rangeRule, bool) {
	for _, rule := range rangeRules {
		if id >= rule.lo && id <= rule.hi {
			return rule, true
		}
	}
	return rangeRule{}, false
}

// UnifiedForStd maps a standard id to its unified category through the
// range table. Ids outside every range map to Other with ok=false.
func UnifiedForStd(id int) (Unified, bool) {
	rule, ok := lookupRange(id)
	if !ok {
		return Other, false
	}
	return rule.unified, true
}
