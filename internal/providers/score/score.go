// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package score turns title and year agreement into a match confidence.
package score

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/autobrr/marquee/pkg/stringutils"
)

const (
	titleWeight = 0.8
	yearWeight  = 0.2
)

// TitleSimilarity is 1 for equal normalized titles and falls with edit
// distance. A query fully contained in the candidate keeps a floor so
// "Dune" still scores against "Dune Part One".
func TitleSimilarity(query, candidate string) float64 {
	q := stringutils.NormalizeTitle(query)
	c := stringutils.NormalizeTitle(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}

	longest := max(utf8.RuneCountInString(q), utf8.RuneCountInString(c))
	sim := 1 - float64(fuzzy.LevenshteinDistance(q, c))/float64(longest)
	if sim < 0 {
		sim = 0
	}
	if fuzzy.MatchNormalizedFold(q, c) && strings.Contains(c, q) && sim < 0.6 {
		sim = 0.6
	}
	return sim
}

// YearSimilarity is 1 for an exact match, 0.5 when either side is unknown
// or off by one, else 0.
func YearSimilarity(query, candidate int) float64 {
	switch {
	case query <= 0 || candidate <= 0:
		return 0.5
	case query == candidate:
		return 1
	case query-candidate == 1 || candidate-query == 1:
		return 0.5
	default:
		return 0
	}
}

// YearFromDate reads the leading year of "2017", "2017-12-01" and similar.
func YearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y < 1800 {
		return 0
	}
	return y
}

// Confidence combines title and year agreement into [0,1].
func Confidence(query string, queryYear int, candidate string, candidateYear int) float64 {
	return titleWeight*TitleSimilarity(query, candidate) + yearWeight*YearSimilarity(queryYear, candidateYear)
}

// Best returns the index of the highest scoring title, or -1 when titles is
// empty. Ties keep the earliest entry, so provider ranking breaks them.
func Best(query string, queryYear int, titles []string, years []int) (int, float64) {
	best, bestScore := -1, -1.0
	for i, t := range titles {
		y := 0
		if i < len(years) {
			y = years[i]
		}
		if s := Confidence(query, queryYear, t, y); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}

var genericTitles = map[string]struct{}{
	"the show":       {},
	"news":           {},
	"le journal":     {},
	"journal":        {},
	"the news":       {},
	"documentary":    {},
	"live":           {},
	"concert":        {},
	"special":        {},
	"the voice":      {},
	"magazine":       {},
	"reportage":      {},
	"la quotidienne": {},
	"quotidien":      {},
	"telematin":      {},
}

// IsGenericTitle reports titles that many unrelated programs share. Hits on
// them are weak evidence and get downgraded before thresholds apply.
func IsGenericTitle(title string) bool {
	t := stringutils.NormalizeTitle(title)
	if t == "" {
		return true
	}
	if _, ok := genericTitles[t]; ok {
		return true
	}
	return len(strings.Fields(t)) == 1 && utf8.RuneCountInString(t) <= 3
}

// GenericPenalty is applied to confidences of generic-titled hits.
const GenericPenalty = 0.8

// Adjust applies the generic title downgrade.
func Adjust(title string, confidence float64) float64 {
	if IsGenericTitle(title) {
		return confidence * GenericPenalty
	}
	return confidence
}
