// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package categories turns torznab category ids into the unified category
// every release is routed by. Everything here is static and safe for
// concurrent use.
package categories

import "sort"

// SpecIDThreshold is the first indexer-specific (vendor) category id.
// Ids at or above it are never standard children.
const SpecIDThreshold = 100000

// StandardCategory is one entry of the open torznab category catalog.
type StandardCategory struct {
	ID       int    `json:"id"`
	ParentID *int   `json:"parentId,omitempty"`
	Label    string `json:"label"`
}

// Top-level torznab categories.
const (
	CategoryConsole = 1000
	CategoryMovies  = 2000
	CategoryAudio   = 3000
	CategoryPC      = 4000
	CategoryTV      = 5000
	CategoryXXX     = 6000
	CategoryBooks   = 7000
	CategoryOther   = 8000
)

// Subcategories the resolver treats specially.
const (
	CategoryPCMac         = 4030
	CategoryPCMobileOther = 4040
	CategoryPCMobileIOS   = 4060
	CategoryPCAndroid     = 4070
	CategoryTVSport       = 5060
	CategoryTVAnime       = 5070
	CategoryTVDocumentary = 5080
	CategoryBooksComics   = 7030

	// CategoryBooksComicsLast closes the comics window. Indexers publish
	// comic subcategories anywhere in 7030..7039.
	CategoryBooksComicsLast = 7039
)

type catalogEntry struct {
	id     int
	parent int
	label  string
}

var standardCatalog = []catalogEntry{
	{1000, 0, "Console"},
	{1010, 1000, "Console/NDS"},
	{1020, 1000, "Console/PSP"},
	{1030, 1000, "Console/Wii"},
	{1040, 1000, "Console/XBox"},
	{1050, 1000, "Console/XBox 360"},
	{1060, 1000, "Console/Wiiware"},
	{1070, 1000, "Console/XBox 360 DLC"},
	{1080, 1000, "Console/PS3"},
	{1090, 1000, "Console/Other"},
	{1110, 1000, "Console/3DS"},
	{1120, 1000, "Console/PS Vita"},
	{1130, 1000, "Console/WiiU"},
	{1140, 1000, "Console/XBox One"},
	{1180, 1000, "Console/PS4"},

	{2000, 0, "Movies"},
	{2010, 2000, "Movies/Foreign"},
	{2020, 2000, "Movies/Other"},
	{2030, 2000, "Movies/SD"},
	{2040, 2000, "Movies/HD"},
	{2045, 2000, "Movies/UHD"},
	{2050, 2000, "Movies/BluRay"},
	{2060, 2000, "Movies/3D"},
	{2070, 2000, "Movies/DVD"},
	{2080, 2000, "Movies/WEB-DL"},
	{2090, 2000, "Movies/Clips"},

	{3000, 0, "Audio"},
	{3010, 3000, "Audio/MP3"},
	{3020, 3000, "Audio/Video"},
	{3030, 3000, "Audio/Audiobook"},
	{3040, 3000, "Audio/Lossless"},
	{3050, 3000, "Audio/Other"},
	{3060, 3000, "Audio/Foreign"},

	{4000, 0, "PC"},
	{4010, 4000, "PC/0day"},
	{4020, 4000, "PC/ISO"},
	{4030, 4000, "PC/Mac"},
	{4040, 4000, "PC/Mobile-Other"},
	{4050, 4000, "PC/Games"},
	{4060, 4000, "PC/Mobile-iOS"},
	{4070, 4000, "PC/Mobile-Android"},

	{5000, 0, "TV"},
	{5010, 5000, "TV/WEB-DL"},
	{5020, 5000, "TV/Foreign"},
	{5030, 5000, "TV/SD"},
	{5040, 5000, "TV/HD"},
	{5045, 5000, "TV/UHD"},
	{5050, 5000, "TV/Other"},
	{5060, 5000, "TV/Sport"},
	{5070, 5000, "TV/Anime"},
	{5080, 5000, "TV/Documentary"},

	{6000, 0, "XXX"},
	{6010, 6000, "XXX/DVD"},
	{6020, 6000, "XXX/WMV"},
	{6030, 6000, "XXX/XviD"},
	{6040, 6000, "XXX/x264"},
	{6045, 6000, "XXX/UHD"},
	{6050, 6000, "XXX/Pack"},
	{6060, 6000, "XXX/ImageSet"},
	{6070, 6000, "XXX/Other"},
	{6080, 6000, "XXX/SD"},
	{6090, 6000, "XXX/WEB-DL"},

	{7000, 0, "Books"},
	{7010, 7000, "Books/Mags"},
	{7020, 7000, "Books/EBook"},
	{7030, 7000, "Books/Comics"},
	{7040, 7000, "Books/Technical"},
	{7050, 7000, "Books/Other"},
	{7060, 7000, "Books/Foreign"},

	{8000, 0, "Other"},
	{8010, 8000, "Other/Misc"},
	{8020, 8000, "Other/Hashed"},
}

var standardByID = func() map[int]catalogEntry {
	m := make(map[int]catalogEntry, len(standardCatalog))
	for _, entry := range standardCatalog {
		m[entry.id] = entry
	}
	return m
}()

// GetParentID returns the declared parent of a standard subcategory. Ids
// in the comics window are children of Books even when not in the catalog.
// It returns nil for top-level ids, other unknown ids and any vendor id.
func GetParentID(id int) *int {
	if id >= SpecIDThreshold {
		return nil
	}
	if id >= CategoryBooksComics && id <= CategoryBooksComicsLast {
		parent := CategoryBooks
		return &parent
	}
	entry, ok := standardByID[id]
	if !ok || entry.parent == 0 {
		return nil
	}
	parent := entry.parent
	return &parent
}

// IsStandardID reports whether id is part of the standard catalog.
func IsStandardID(id int) bool {
	_, ok := standardByID[id]
	return ok
}

// IsTopLevel reports whether id is a standard parent category.
func IsTopLevel(id int) bool {
	entry, ok := standardByID[id]
	return ok && entry.parent == 0
}

// StandardLabel returns the catalog label for id, or "" if unknown.
func StandardLabel(id int) string {
	return standardByID[id].label
}

// AllStandard returns the full standard catalog ordered by id. Category
// listings merge this in so they never depend on what an indexer advertises.
func AllStandard() []StandardCategory {
	out := make([]StandardCategory, 0, len(standardCatalog))
	for _, entry := range standardCatalog {
		cat := StandardCategory{ID: entry.id, Label: entry.label}
		if entry.parent != 0 {
			parent := entry.parent
			cat.ParentID = &parent
		}
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
