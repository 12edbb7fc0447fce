// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rawg

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
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		if r.URL.Query().Get("search") != "Hades" {
			_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":274755,"name":"Hades","released":"2020-09-17","background_image":"https://media/hades.jpg"}]}`))
	}))
	defer srv.Close()

	client, err := New("key", srv.URL, WithHTTP(httpx.New(httpx.WithRetry(1, time.Millisecond))))
	require.NoError(t, err)

	c, err := client.Search(context.Background(), matching.Query{Title: "Hades", Year: 2020})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "274755", c.ProviderID)
	assert.Equal(t, "https://media/hades.jpg", c.Posters[0].URL)

	c, err = client.Search(context.Background(), matching.Query{Title: "Unknown Game"})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := New("", "")
	require.Error(t, err)
}
