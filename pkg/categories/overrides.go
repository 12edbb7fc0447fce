// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package categories

import "strings"

// Override maps an indexer's vendor category onto a unified category.
type Override struct {
	Source  string  `json:"source" yaml:"source"`
	SpecID  int     `json:"specId" yaml:"specId"`
	Unified Unified `json:"unified" yaml:"unified"`
}

type overrideKey struct {
	source string
	specID int
}

// DefaultOverrides are the vendor mappings shipped with the binary. Rows in
// the category_overrides table are layered on top.
var DefaultOverrides = []Override{
	{Source: "C411", SpecID: 105000, Unified: Serie},
}

// Resolver turns a release's raw category ids into its unified category.
type Resolver struct {
	overrides map[overrideKey]Unified
}

// NewResolver builds a resolver from DefaultOverrides plus extra. Later
// entries replace earlier ones for the same source and spec id.
func NewResolver(extra ...Override) *Resolver {
	r := &Resolver{overrides: make(map[overrideKey]Unified, len(DefaultOverrides)+len(extra))}
	for _, o := range DefaultOverrides {
		r.set(o)
	}
	for _, o := range extra {
		r.set(o)
	}
	return r
}

func (r *Resolver) set(o Override) {
	if !o.Unified.Valid() {
		return
	}
	r.overrides[overrideKey{source: normalizeSource(o.Source), specID: o.SpecID}] = o.Unified
}

func normalizeSource(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}

func (r *Resolver) lookup(source string, spec *int) (Unified, bool) {
	if spec == nil {
		return "", false
	}
	u, ok := r.overrides[overrideKey{source: normalizeSource(source), specID: *spec}]
	return u, ok
}

// Resolve returns the unified category for a release.
//
//  1. std and spec are resolved against the normalized id set.
//  2. An override for (source, spec) gives the base category, otherwise the
//     std id's own range mapping does.
//  3. The std id may refine the base when it is strictly more specific.
//  4. Old rows stored as std 7000 with a comics spec (7030-7039) and no
//     child id are forced to Comic.
func (r *Resolver) Resolve(source string, std, spec *int, allIDs []int) Unified {
	finalStd, finalSpec := ResolveStdSpec(std, spec, allIDs)

	fromMap, ok := r.lookup(source, finalSpec)
	if !ok {
		fromMap = Other
		if finalStd != nil {
			fromMap, _ = UnifiedForStd(*finalStd)
		}
	}

	result := ApplyStdOverride(fromMap, finalStd)

	if finalStd != nil && *finalStd == CategoryBooks &&
		finalSpec != nil && *finalSpec >= CategoryBooksComics && *finalSpec <= CategoryBooksComicsLast {
		result = Comic
	}

	return result
}

var defaultResolver = NewResolver()

// Resolve runs the resolver configured with DefaultOverrides only.
func Resolve(source string, std, spec *int, allIDs []int) Unified {
	return defaultResolver.Resolve(source, std, spec, allIDs)
}
