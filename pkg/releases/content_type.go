// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"regexp"
	"strings"

	"github.com/moistari/rls"

	"github.com/autobrr/marquee/pkg/categories"
)

// MediaInfo is the media type guessed from a release name alone.
type MediaInfo struct {
	// MediaType is one of the categories.Media* values, or empty when the
	// name carries no usable hint.
	MediaType string
	Adult     bool
}

var (
	reJAV         = regexp.MustCompile(`(?i)\b(?:[A-Z0-9]{3,4})-\d{3,4}\b`)
	reAdultDate   = regexp.MustCompile(`\b\d{6}[_-]\d{3}\b`)
	reBracketDate = regexp.MustCompile(`\[[12]\d{3}\.\d{2}\.\d{2}\]`)
	reAdultXXX    = regexp.MustCompile(`(?i)\bxxx\b`)
	reAnimeGroup  = regexp.MustCompile(`^\[[^\]]+\]`)
)

var videoHints = []string{
	"2160p", "1080p", "720p", "576p", "480p", "remux", "bluray", "blu-ray", "bdrip",
	"web-dl", "webdl", "webrip", "hdtv", "x264", "x265", "hevc",
}

// musicAsVideo catches video releases rls reads as music because of
// dash separated names.
func musicAsVideo(release *rls.Release) bool {
	if release.Resolution != "" || len(release.HDR) > 0 {
		return true
	}
	for _, codec := range release.Codec {
		switch strings.ToLower(codec) {
		case "x264", "x265", "h264", "h265", "hevc", "av1", "xvid", "divx":
			return true
		}
	}
	lower := strings.ToLower(release.Title + " " + release.Group + " " + release.Source)
	for _, hint := range videoHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func isAdult(release *rls.Release) bool {
	title := strings.ToLower(release.Title)
	subtitle := strings.ToLower(release.Subtitle)
	collection := strings.ToLower(release.Collection)

	if reAdultXXX.MatchString(title) || reAdultXXX.MatchString(subtitle) || reAdultXXX.MatchString(collection) {
		// the xXx film franchise
		franchise := strings.HasPrefix(title, "xxx") &&
			(release.Year == 2002 || release.Year == 2005 || release.Year == 2017 ||
				strings.Contains(title, "xander cage") || strings.Contains(title, "state of the union"))
		if !franchise {
			return true
		}
	}
	if reJAV.MatchString(release.Title) {
		return true
	}
	for _, v := range []string{title, subtitle, collection} {
		if reAdultDate.MatchString(v) || reBracketDate.MatchString(v) {
			return true
		}
	}
	return false
}

// DetectMedia maps a parsed release to a media type hint.
func DetectMedia(release *rls.Release) MediaInfo {
	if release == nil {
		return MediaInfo{}
	}
	if isAdult(release) {
		return MediaInfo{Adult: true}
	}

	typ := release.Type
	if typ == rls.Music && musicAsVideo(release) {
		if release.Series > 0 || release.Episode > 0 {
			typ = rls.Episode
		} else {
			typ = rls.Movie
		}
	}

	var info MediaInfo
	switch typ {
	case rls.Movie:
		info.MediaType = categories.MediaMovie
	case rls.Episode, rls.Series:
		info.MediaType = categories.MediaSeries
		if reAnimeGroup.MatchString(strings.TrimSpace(release.Group)) {
			info.MediaType = categories.MediaAnime
		}
	case rls.Music, rls.Audiobook:
		info.MediaType = categories.MediaAudio
	case rls.Book, rls.Education, rls.Magazine:
		info.MediaType = categories.MediaBook
	case rls.Comic:
		info.MediaType = categories.MediaComic
	case rls.Game:
		info.MediaType = categories.MediaGame
	default:
		switch {
		case release.Series > 0 || release.Episode > 0:
			info.MediaType = categories.MediaSeries
		case release.Year > 0 && musicAsVideo(release):
			info.MediaType = categories.MediaMovie
		}
	}
	return info
}

// UnifiedForMedia is the unified category implied by a media type hint,
// used only when an indexer supplied no usable category ids.
func UnifiedForMedia(info MediaInfo) categories.Unified {
	if info.Adult {
		return categories.Xxx
	}
	switch info.MediaType {
	case categories.MediaMovie:
		return categories.Film
	case categories.MediaSeries:
		return categories.Serie
	case categories.MediaAnime:
		return categories.Anime
	case categories.MediaAudio:
		return categories.Audio
	case categories.MediaBook:
		return categories.Book
	case categories.MediaComic:
		return categories.Comic
	case categories.MediaGame:
		return categories.JeuWindows
	default:
		return categories.Other
	}
}
