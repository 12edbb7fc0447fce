// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package openlibrary

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

func TestSearchSkipsCoverless(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "Dune", r.URL.Query().Get("title"))
		_, _ = w.Write([]byte(`{"numFound":2,"docs":[
			{"key":"/works/OL1W","title":"Dune","first_publish_year":1965},
			{"key":"/works/OL893415W","title":"Dune","first_publish_year":1965,"cover_i":11481354}
		]}`))
	}))
	defer srv.Close()

	client := New(srv.URL,
		WithCoverBaseURL("https://covers.example"),
		WithHTTP(httpx.New(httpx.WithRetry(1, time.Millisecond))))

	c, err := client.Search(context.Background(), matching.Query{Title: "Dune", Year: 1965})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "OL893415W", c.ProviderID)
	assert.Equal(t, "https://covers.example/b/id/11481354-L.jpg?default=false", c.Posters[0].URL)
}

func TestSearchNoCovers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"key":"/works/OL1W","title":"Dune"}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithHTTP(httpx.New(httpx.WithRetry(1, time.Millisecond))))
	c, err := client.Search(context.Background(), matching.Query{Title: "Dune"})
	require.NoError(t, err)
	assert.Nil(t, c)
}
