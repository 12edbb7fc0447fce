// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package categories

import (
	"errors"
	"fmt"

	"github.com/autobrr/marquee/pkg/stringutils"
)

// Canonical category keys. This set is closed.
const (
	KeyFilms     = "films"
	KeySeries    = "series"
	KeyAnimation = "animation"
	KeyAnime     = "anime"
	KeyGames     = "games"
	KeyComics    = "comics"
	KeyBooks     = "books"
	KeyAudio     = "audio"
	KeySpectacle = "spectacle"
	KeyEmissions = "emissions"
)

// Classifier-only keys. They are valid classification results but not
// canonical group keys.
const (
	KeyXXX   = "xxx"
	KeyOther = "other"
)

var (
	ErrUnknownKey      = errors.New("unknown category key")
	ErrNonCanonicalKey = errors.New("category key is an alias, not canonical")
)

// Group is a canonical category key with its display label and the aliases
// that fold onto it.
type Group struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Aliases []string `json:"aliases,omitempty"`
}

var groups = []Group{
	{Key: KeyFilms, Label: "Films", Aliases: []string{"film", "movie", "movies"}},
	{Key: KeySeries, Label: "Séries", Aliases: []string{"serie", "tv", "tvshow", "tvshows"}},
	{Key: KeyAnimation, Label: "Animation", Aliases: []string{"animations", "cartoon", "cartoons"}},
	{Key: KeyAnime, Label: "Anime", Aliases: []string{"animes"}},
	{Key: KeyGames, Label: "Jeux", Aliases: []string{"game", "jeu", "jeux", "jeux video"}},
	{Key: KeyComics, Label: "Comics", Aliases: []string{"comic", "bd", "manga", "mangas"}},
	{Key: KeyBooks, Label: "Livres", Aliases: []string{"book", "livre", "livres", "ebook", "ebooks"}},
	{Key: KeyAudio, Label: "Audio", Aliases: []string{"music", "musique", "musiques"}},
	{Key: KeySpectacle, Label: "Spectacle", Aliases: []string{"spectacles", "concert", "concerts"}},
	{Key: KeyEmissions, Label: "Émissions", Aliases: []string{"emission", "show", "shows"}},
}

var (
	groupByKey = make(map[string]Group, len(groups))
	aliasToKey = make(map[string]string)
)

func init() {
	for _, g := range groups {
		groupByKey[g.Key] = g
		aliasToKey[g.Key] = g.Key
		for _, alias := range g.Aliases {
			aliasToKey[stringutils.FoldKey(alias)] = g.Key
		}
	}
}

// Groups returns the canonical groups in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// TryNormalizeKey maps a raw key or alias onto its canonical key. Empty
// input, "other" and unknown strings are rejected.
func TryNormalizeKey(raw string) (string, bool) {
	folded := stringutils.FoldKey(raw)
	if folded == "" || folded == KeyOther {
		return "", false
	}
	key, ok := aliasToKey[folded]
	return key, ok
}

// LabelForKey returns the display label of a canonical key, or "" if key is
// not canonical.
func LabelForKey(key string) string {
	return groupByKey[key].Label
}

// AssertCanonicalKey fails when key is not one of the canonical keys,
// including when it is a known alias of one.
func AssertCanonicalKey(key string) error {
	if _, ok := groupByKey[key]; ok {
		return nil
	}
	if canonical, ok := TryNormalizeKey(key); ok {
		return fmt.Errorf("%w: %q (use %q)", ErrNonCanonicalKey, key, canonical)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}
