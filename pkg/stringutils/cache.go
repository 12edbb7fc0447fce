// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stringutils holds the text folding used for category aliases,
// title normalization and fingerprinting.
package stringutils

import (
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
)

const defaultCacheTTL = 5 * time.Minute

// memo caches the output of an expensive string transform. Release titles
// repeat heavily across feed refreshes, so the same inputs come back often.
type memo struct {
	cache     *ttlcache.Cache[string, string]
	transform func(string) string
}

func newMemo(ttl time.Duration, transform func(string) string) *memo {
	return &memo{
		cache:     ttlcache.New(ttlcache.Options[string, string]{}.SetDefaultTTL(ttl)),
		transform: transform,
	}
}

func (m *memo) apply(s string) string {
	if s == "" {
		return ""
	}
	if cached, ok := m.cache.Get(s); ok {
		return cached
	}

	out := m.transform(s)
	m.cache.Set(s, out, ttlcache.DefaultTTL)
	return out
}
