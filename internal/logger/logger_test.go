// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"TRACE":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"WARNING": zerolog.WarnLevel,
		"ERROR":   zerolog.ErrorLevel,
		"INFO":    zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetupWritesLogFile(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		_ = Close()
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "marquee.log")
	require.NoError(t, Setup(&domain.Config{
		LogLevel:      "DEBUG",
		LogPath:       path,
		LogMaxSize:    1,
		LogMaxBackups: 1,
	}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("release", "The.Matrix.1999").Msg("[POSTERS] test line")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[POSTERS] test line")
	assert.Contains(t, string(data), "The.Matrix.1999")

	SetLevel("ERROR")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}
