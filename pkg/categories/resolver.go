// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package categories

// NormalizeCategoryIDs folds duplicates and drops every id that is the
// declared parent of another id in the set. Order of first occurrence is
// kept. The function is idempotent.
func NormalizeCategoryIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}

	present := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}

	redundant := make(map[int]struct{})
	for id := range present {
		if parent := GetParentID(id); parent != nil {
			if _, ok := present[*parent]; ok {
				redundant[*parent] = struct{}{}
			}
		}
	}

	out := make([]int, 0, len(present))
	seen := make(map[int]struct{}, len(present))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, drop := redundant[id]; drop {
			continue
		}
		out = append(out, id)
	}
	return out
}

// moreSpecific reports whether candidate beats current as the std id.
// Specificity rank first, then a subcategory over a top-level id. Ties keep
// the earlier id.
func moreSpecific(candidate, current int) bool {
	candUnified, _ := UnifiedForStd(candidate)
	curUnified, _ := UnifiedForStd(current)
	if candUnified.Rank() != curUnified.Rank() {
		return candUnified.Rank() > curUnified.Rank()
	}

	candChild := GetParentID(candidate) != nil
	curChild := GetParentID(current) != nil
	return candChild && !curChild
}

// ResolveStdSpec picks the final std and spec ids for a release.
//
// std is the most specific standard id in the normalized set, so a child
// always beats its parent, whether the parent was in the set or supplied.
// A supplied std that is a declared child of the chosen id is kept. With no
// standard id in the set, the supplied std stands.
//
// spec is the first vendor id in allIDs, else the supplied spec.
func ResolveStdSpec(std, spec *int, allIDs []int) (*int, *int) {
	var chosen *int
	for _, id := range NormalizeCategoryIDs(allIDs) {
		if id <= 0 || id >= SpecIDThreshold {
			continue
		}
		if chosen == nil || moreSpecific(id, *chosen) {
			v := id
			chosen = &v
		}
	}

	outStd := std
	if chosen != nil {
		outStd = chosen
		if std != nil {
			if parent := GetParentID(*std); parent != nil && *parent == *chosen {
				outStd = std
			}
		}
	}

	outSpec := spec
	for _, id := range allIDs {
		if id >= SpecIDThreshold {
			v := id
			outSpec = &v
			break
		}
	}

	return copyIntPtr(outStd), copyIntPtr(outSpec)
}

// ApplyStdOverride lets a std id refine an indexer mapping. fromMap is
// replaced only when the std id maps to a strictly more specific category.
func ApplyStdOverride(fromMap Unified, std *int) Unified {
	if std == nil {
		return fromMap
	}
	mapped, ok := UnifiedForStd(*std)
	if !ok {
		return fromMap
	}
	if mapped.Rank() > fromMap.Rank() {
		return mapped
	}
	return fromMap
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
