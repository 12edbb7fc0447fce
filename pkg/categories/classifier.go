// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package categories

import "github.com/autobrr/marquee/pkg/stringutils"

// tokenKeywords is matched by exact token membership, never substrings, so
// "series" never fires on "miniseriesbox".
var tokenKeywords = map[string]string{
	"anime":        KeyAnime,
	"animes":       KeyAnime,
	"animation":    KeyAnimation,
	"serie":        KeySeries,
	"series":       KeySeries,
	"saison":       KeySeries,
	"season":       KeySeries,
	"film":         KeyFilms,
	"films":        KeyFilms,
	"movie":        KeyFilms,
	"emission":     KeyEmissions,
	"documentaire": KeyEmissions,
	"spectacle":    KeySpectacle,
	"concert":      KeySpectacle,
	"comic":        KeyComics,
	"comics":       KeyComics,
	"bd":           KeyComics,
	"manga":        KeyComics,
	"ebook":        KeyBooks,
	"livre":        KeyBooks,
	"epub":         KeyBooks,
	"jeu":          KeyGames,
	"jeux":         KeyGames,
	"game":         KeyGames,
	"album":        KeyAudio,
	"discographie": KeyAudio,
	"flac":         KeyAudio,
}

// Any of these tokens voids the classification.
var tokenBlacklist = map[string]struct{}{
	"xxx":    {},
	"porn":   {},
	"porno":  {},
	"adult":  {},
	"adulte": {},
	"hentai": {},
	"erotic": {},
	"nsfw":   {},
}

// ClassifyByTokens returns the key of the first token found in the keyword
// table. A blacklisted token anywhere in the set wins over every match.
func ClassifyByTokens(tokens []string) (string, bool) {
	folded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		f := stringutils.FoldKey(token)
		if f == "" {
			continue
		}
		if _, blocked := tokenBlacklist[f]; blocked {
			return "", false
		}
		folded = append(folded, f)
	}

	for _, f := range folded {
		if key, ok := tokenKeywords[f]; ok {
			return key, true
		}
	}
	return "", false
}

// ClassifyByID classifies a numeric category id by range. A series result is
// promoted to anime when the tokens say so. Ids outside every range are not
// classified.
func ClassifyByID(id int, tokens []string) (string, bool) {
	rule, ok := lookupRange(id)
	if !ok {
		return "", false
	}

	if rule.key == KeySeries && len(tokens) > 0 {
		if key, ok := ClassifyByTokens(tokens); ok && key == KeyAnime {
			return KeyAnime, true
		}
	}
	return rule.key, true
}
