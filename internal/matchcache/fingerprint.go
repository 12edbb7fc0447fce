// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matchcache

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/pkg/categories"
	"github.com/autobrr/marquee/pkg/stringutils"
)

const fingerprintVersion = "v1"

// BuildFingerprint returns the cache key for a logical subject. Releases
// that differ only in quality tags, group or punctuation collapse onto the
// same key once their titles are normalized.
func BuildFingerprint(mediaType, normalizedTitle string, year int, season, episode *int) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(mediaType)))
	b.WriteByte('|')
	b.WriteString(stringutils.NormalizeTitle(normalizedTitle))
	b.WriteByte('|')
	if year > 0 {
		b.WriteString(strconv.Itoa(year))
	}
	b.WriteByte('|')
	if season != nil {
		b.WriteString(strconv.Itoa(*season))
	}
	b.WriteByte('|')
	if episode != nil {
		b.WriteString(strconv.Itoa(*episode))
	}

	return fingerprintVersion + "-" + strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// SubjectTitle is the title used to key r: the stored normalized title when
// ingestion provided one, else the raw title normalized on the fly.
func SubjectTitle(r *models.Release) string {
	if t := strings.TrimSpace(r.NormalizedTitle); t != "" {
		return t
	}
	return stringutils.NormalizeTitle(r.Title)
}

// SubjectMediaType is r's media type, falling back to the one implied by
// its unified category.
func SubjectMediaType(r *models.Release) string {
	if mt := strings.TrimSpace(r.MediaType); mt != "" && mt != categories.MediaOther {
		return mt
	}
	return r.UnifiedCategory.MediaType()
}

// FingerprintForRelease keys r on its current title, year and media type.
// Posters are per show, so season and episode are left out.
func FingerprintForRelease(r *models.Release) string {
	year := 0
	if r.Year != nil {
		year = *r.Year
	}
	return BuildFingerprint(SubjectMediaType(r), SubjectTitle(r), year, nil, nil)
}
