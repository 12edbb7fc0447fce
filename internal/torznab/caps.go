// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torznab reads indexer capability documents and builds category
// listings on top of the standard catalog.
package torznab

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/autobrr/marquee/pkg/categories"
)

const defaultLimit = 100

// Caps is the parsed capability and category data of a caps response.
type Caps struct {
	Capabilities []string
	Categories   []Category
	DefaultLimit int
	MaxLimit     int
}

// Category is one category of a listing. Standard is set for ids from the
// standard catalog.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parentId,omitempty"`
	Standard bool   `json:"standard"`
}

type capsResponse struct {
	XMLName    xml.Name       `xml:"caps"`
	Limits     limitsNode     `xml:"limits"`
	Searching  searchingCaps  `xml:"searching"`
	Categories []categoryNode `xml:"categories>category"`
}

type limitsNode struct {
	Default string `xml:"default,attr"`
	Max     string `xml:"max,attr"`
}

type searchingCaps struct {
	Search      searchNode `xml:"search"`
	TVSearch    searchNode `xml:"tv-search"`
	MovieSearch searchNode `xml:"movie-search"`
	MusicSearch searchNode `xml:"music-search"`
	AudioSearch searchNode `xml:"audio-search"`
	BookSearch  searchNode `xml:"book-search"`
}

type searchNode struct {
	Available       string `xml:"available,attr"`
	SupportedParams string `xml:"supportedParams,attr"`
}

type categoryNode struct {
	ID      string       `xml:"id,attr"`
	Name    string       `xml:"name,attr"`
	Subcats []subcatNode `xml:"subcat"`
}

type subcatNode struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// ParseCaps decodes a caps document. Categories with non-numeric ids are
// skipped.
func ParseCaps(r io.Reader) (*Caps, error) {
	var resp capsResponse
	if err := xml.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode caps response: %w", err)
	}

	caps := &Caps{
		DefaultLimit: parseLimit(resp.Limits.Default),
		MaxLimit:     parseLimit(resp.Limits.Max),
	}

	caps.Capabilities = appendCapabilityIf(caps.Capabilities, "search", resp.Searching.Search)
	caps.Capabilities = appendCapabilityIf(caps.Capabilities, "tv-search", resp.Searching.TVSearch)
	caps.Capabilities = appendCapabilityIf(caps.Capabilities, "movie-search", resp.Searching.MovieSearch)
	caps.Capabilities = appendCapabilityIf(caps.Capabilities, "music-search", resp.Searching.MusicSearch)
	caps.Capabilities = appendCapabilityIf(caps.Capabilities, "audio-search", resp.Searching.AudioSearch)
	caps.Capabilities = appendCapabilityIf(caps.Capabilities, "book-search", resp.Searching.BookSearch)

	for _, cat := range resp.Categories {
		parentID, err := strconv.Atoi(strings.TrimSpace(cat.ID))
		if err != nil {
			continue
		}
		caps.Categories = append(caps.Categories, Category{
			ID:       parentID,
			Name:     strings.TrimSpace(cat.Name),
			Standard: categories.IsStandardID(parentID),
		})
		for _, sub := range cat.Subcats {
			subID, err := strconv.Atoi(strings.TrimSpace(sub.ID))
			if err != nil {
				continue
			}
			parent := parentID
			caps.Categories = append(caps.Categories, Category{
				ID:       subID,
				Name:     strings.TrimSpace(sub.Name),
				ParentID: &parent,
				Standard: categories.IsStandardID(subID),
			})
		}
	}

	return caps, nil
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return n
}

// appendCapabilityIf adds name and one "name-param" entry per supported
// parameter when the search mode is available.
func appendCapabilityIf(capabilities []string, name string, node searchNode) []string {
	if !isCapsAvailable(node.Available) {
		return capabilities
	}
	capabilities = append(capabilities, name)
	for _, param := range strings.Split(node.SupportedParams, ",") {
		if param = strings.ToLower(strings.TrimSpace(param)); param != "" {
			capabilities = append(capabilities, name+"-"+param)
		}
	}
	return capabilities
}

func isCapsAvailable(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// MergeWithStandard returns the full standard catalog followed by the
// indexer's own categories that are not part of it, ordered by id. Standard
// ids always carry the catalog label and parent.
func MergeWithStandard(indexer []Category) []Category {
	standard := categories.AllStandard()
	out := make([]Category, 0, len(standard)+len(indexer))
	seen := make(map[int]struct{}, len(standard)+len(indexer))

	for _, sc := range standard {
		out = append(out, Category{ID: sc.ID, Name: sc.Label, ParentID: sc.ParentID, Standard: true})
		seen[sc.ID] = struct{}{}
	}
	for _, c := range indexer {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		c.Standard = false
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Unified maps a listed category onto the unified category a release filed
// only under it would get from source.
func (c Category) Unified(source string, r *categories.Resolver) categories.Unified {
	if r == nil {
		r = categories.NewResolver()
	}
	if c.ID < categories.SpecIDThreshold {
		id := c.ID
		return r.Resolve(source, &id, nil, []int{id})
	}

	spec := c.ID
	ids := []int{spec}
	var std *int
	if c.ParentID != nil && *c.ParentID < categories.SpecIDThreshold {
		p := *c.ParentID
		std = &p
		ids = append([]int{p}, ids...)
	}
	return r.Resolve(source, std, &spec, ids)
}
