// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dbinterface

import (
	"fmt"
	"strings"
)

// BuildQueryWithPlaceholders expands %s in template into numRows groups of
// placeholdersPerRow "?" markers: "(?, ?), (?, ?)".
func BuildQueryWithPlaceholders(template string, placeholdersPerRow, numRows int) string {
	if placeholdersPerRow <= 0 || numRows <= 0 {
		return fmt.Sprintf(template, "")
	}

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", placeholdersPerRow), ", ") + ")"

	var sb strings.Builder
	sb.Grow(numRows * (len(row) + 2))
	for i := range numRows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(row)
	}
	return fmt.Sprintf(template, sb.String())
}

// BuildInList returns "?, ?, ?" for an IN (...) clause of n values.
func BuildInList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
