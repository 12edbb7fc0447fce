// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type tomlSetting struct {
	key   string
	value string
}

// updateLogSettingsInTOML sets the log keys in content, uncommenting them
// where they appear as comments. Keys that are absent are added before the
// first table header so they stay top level. An empty path leaves logPath
// untouched.
func updateLogSettingsInTOML(content, level, path string, maxSize, maxBackups int) string {
	settings := []tomlSetting{
		{key: "logLevel", value: strconv.Quote(level)},
		{key: "logMaxSize", value: strconv.Itoa(maxSize)},
		{key: "logMaxBackups", value: strconv.Itoa(maxBackups)},
	}
	if path != "" {
		settings = append(settings, tomlSetting{key: "logPath", value: strconv.Quote(path)})
	}

	lines := strings.Split(content, "\n")
	var missing []tomlSetting
	for _, s := range settings {
		re := regexp.MustCompile(`^\s*#?\s*` + regexp.QuoteMeta(s.key) + `\s*=`)
		found := false
		for i, line := range lines {
			if isTableHeader(line) {
				break
			}
			if re.MatchString(line) {
				lines[i] = fmt.Sprintf("%s = %s", s.key, s.value)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, s)
		}
	}

	if len(missing) == 0 {
		return strings.Join(lines, "\n")
	}

	block := []string{"# Log settings"}
	for _, s := range missing {
		block = append(block, fmt.Sprintf("%s = %s", s.key, s.value))
	}
	block = append(block, "")

	insertAt := len(lines)
	for i, line := range lines {
		if isTableHeader(line) {
			insertAt = i
			break
		}
	}
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:insertAt]...)
	out = append(out, block...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

func isTableHeader(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "[")
}
