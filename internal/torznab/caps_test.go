// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torznab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/pkg/categories"
)

func capsDoc(limits string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<caps>
	` + limits + `
	<searching>
		<search available="yes" supportedParams="q"/>
	</searching>
	<categories></categories>
</caps>`
}

func TestParseCaps_Limits(t *testing.T) {
	tests := []struct {
		name        string
		limits      string
		wantDefault int
		wantMax     int
	}{
		{"both values", `<limits default="50" max="100"/>`, 50, 100},
		{"missing", ``, 100, 100},
		{"invalid values", `<limits default="abc" max="xyz"/>`, 100, 100},
		{"only default", `<limits default="50"/>`, 50, 100},
		{"zero values", `<limits default="0" max="0"/>`, 100, 100},
		{"negative values", `<limits default="-10" max="-5"/>`, 100, 100},
		{"large values", `<limits default="500" max="1000"/>`, 500, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps, err := ParseCaps(strings.NewReader(capsDoc(tt.limits)))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, caps.DefaultLimit)
			assert.Equal(t, tt.wantMax, caps.MaxLimit)
		})
	}
}

const c411Caps = `<?xml version="1.0" encoding="UTF-8"?>
<caps>
	<limits default="50" max="100"/>
	<searching>
		<search available="yes" supportedParams="q,imdbid"/>
		<tv-search available="yes" supportedParams="q,tvdbid,season,ep"/>
		<movie-search available="no"/>
	</searching>
	<categories>
		<category id="2000" name="Films">
			<subcat id="102183" name="Films HD"/>
		</category>
		<category id="5000" name="Séries">
			<subcat id="5070" name="Animés"/>
			<subcat id="105000" name="Séries TV"/>
		</category>
		<category id="bogus" name="Broken"/>
	</categories>
</caps>`

func TestParseCaps_Full(t *testing.T) {
	caps, err := ParseCaps(strings.NewReader(c411Caps))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"search", "search-q", "search-imdbid",
		"tv-search", "tv-search-q", "tv-search-tvdbid", "tv-search-season", "tv-search-ep",
	}, caps.Capabilities)

	require.Len(t, caps.Categories, 5)
	assert.Equal(t, 2000, caps.Categories[0].ID)
	assert.True(t, caps.Categories[0].Standard)
	assert.Equal(t, 102183, caps.Categories[1].ID)
	require.NotNil(t, caps.Categories[1].ParentID)
	assert.Equal(t, 2000, *caps.Categories[1].ParentID)
	assert.False(t, caps.Categories[1].Standard)
	assert.Equal(t, "Séries TV", caps.Categories[4].Name)
}

func TestParseCaps_Invalid(t *testing.T) {
	_, err := ParseCaps(strings.NewReader("<rss></rss>"))
	require.Error(t, err)
}

func TestMergeWithStandard(t *testing.T) {
	caps, err := ParseCaps(strings.NewReader(c411Caps))
	require.NoError(t, err)

	merged := MergeWithStandard(caps.Categories)
	standard := categories.AllStandard()
	require.Len(t, merged, len(standard)+2)

	byID := make(map[int]Category, len(merged))
	for i, c := range merged {
		if i > 0 {
			assert.Less(t, merged[i-1].ID, c.ID)
		}
		byID[c.ID] = c
	}
	for _, sc := range standard {
		c, ok := byID[sc.ID]
		require.True(t, ok, "standard id %d missing", sc.ID)
		assert.True(t, c.Standard)
		assert.Equal(t, sc.Label, c.Name)
	}
	assert.False(t, byID[105000].Standard)
	assert.Equal(t, "Films HD", byID[102183].Name)

	// an indexer advertising nothing still gets the full standard set
	assert.Len(t, MergeWithStandard(nil), len(standard))
}

func TestCategoryUnified(t *testing.T) {
	five := 5000
	two := 2000

	tests := []struct {
		name   string
		source string
		cat    Category
		want   categories.Unified
	}{
		{"standard anime child", "Torr9", Category{ID: 5070, ParentID: &five}, categories.Anime},
		{"standard parent", "Torr9", Category{ID: 5000}, categories.Serie},
		{"vendor id inherits parent", "Torr9", Category{ID: 102183, ParentID: &two}, categories.Film},
		{"vendor id with override", "C411", Category{ID: 105000, ParentID: &five}, categories.Serie},
		{"comics", "Torr9", Category{ID: 7030}, categories.Comic},
		{"orphan vendor id", "Torr9", Category{ID: 190000}, categories.Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cat.Unified(tt.source, nil))
		})
	}

	r := categories.NewResolver(categories.Override{Source: "torr9", SpecID: 190000, Unified: categories.Spectacle})
	assert.Equal(t, categories.Spectacle, Category{ID: 190000}.Unified("Torr9", r))
}

func TestFetchCaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "caps", r.URL.Query().Get("t"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		assert.Equal(t, "c411", r.URL.Query().Get("indexer"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(c411Caps))
	}))
	defer srv.Close()

	client := NewClient(httpx.New(httpx.WithRetry(1, time.Millisecond)))
	caps, err := client.FetchCaps(context.Background(), srv.URL+"/api?indexer=c411", "secret")
	require.NoError(t, err)
	assert.Len(t, caps.Categories, 5)

	_, err = client.FetchCaps(context.Background(), " ", "")
	require.Error(t, err)
}
