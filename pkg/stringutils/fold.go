// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unicodeMemo = newMemo(defaultCacheTTL, stripDiacritics)
	titleMemo   = newMemo(defaultCacheTTL, normalizeTitle)
)

// letters NFKD leaves alone
var ligatureReplacer = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ß", "ss",
)

func stripDiacritics(s string) string {
	s = ligatureReplacer.Replace(s)

	// transform.Chain is stateful, build one per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeUnicode removes diacritics and decomposes ligatures.
//   - "Émission" → "Emission"
//   - "Amélie" → "Amelie"
//   - "Cœur" → "Coeur"
func NormalizeUnicode(s string) string {
	return unicodeMemo.apply(s)
}

// FoldKey lowercases, trims and strips diacritics. Used for alias and
// keyword lookups where "Émission", "emission " and "EMISSION" must agree.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(NormalizeUnicode(s)))
}

func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(NormalizeUnicode(s)))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\'' || r == '’' || r == '‘' || r == '`':
			// "Bob's" → "bobs"
		case r == '&':
			b.WriteString(" and ")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeTitle produces the comparison form of a title: folded, with
// punctuation turned into single spaces.
//   - "Spider-Man: No Way Home" → "spider man no way home"
//   - "Bob's Burgers" → "bobs burgers"
//   - "Fast & Furious" → "fast and furious"
func NormalizeTitle(s string) string {
	return titleMemo.apply(s)
}

// Tokenize splits a title into folded word tokens.
func Tokenize(s string) []string {
	return strings.Fields(NormalizeTitle(s))
}
