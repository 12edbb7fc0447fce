// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tvmaze

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/providers/httpx"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/shows", r.URL.Path)
		if r.URL.Query().Get("q") != "Dark" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"score":0.9,"show":{"id":1,"name":"Dark Matter","premiered":"2015-06-12"}},
			{"score":0.8,"show":{"id":17861,"name":"Dark","premiered":"2017-12-01",
				"image":{"medium":"https://static/m.jpg","original":"https://static/o.jpg"},
				"externals":{"thetvdb":334824,"imdb":"tt5753856"}}}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithHTTP(httpx.New(httpx.WithRetry(1, time.Millisecond))))

	c, err := client.Search(context.Background(), matching.Query{Title: "Dark", Year: 2017})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "17861", c.ProviderID)
	assert.Equal(t, 2017, c.Year)
	assert.InDelta(t, 1.0, c.Confidence, 1e-9)
	require.Len(t, c.Posters, 2)
	assert.Equal(t, "https://static/o.jpg", c.Posters[0].URL)
	assert.Equal(t, "334824", c.CrossRefs[matching.KeyTVDB])

	c, err = client.Search(context.Background(), matching.Query{Title: "Nothing"})
	require.NoError(t, err)
	assert.Nil(t, c)
}
