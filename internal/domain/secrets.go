// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// RedactedStr replaces secrets in logs and config dumps.
const RedactedStr = "<redacted>"

// RedactString returns RedactedStr for any non-empty value.
func RedactString(s string) string {
	if s == "" {
		return ""
	}
	return RedactedStr
}

// IsRedactedString reports whether value is exactly the redaction
// placeholder, e.g. a config dump pasted back unchanged.
func IsRedactedString(value string) bool {
	return value == RedactedStr
}
