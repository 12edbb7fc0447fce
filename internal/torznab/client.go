// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torznab

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/autobrr/marquee/internal/providers/httpx"
)

// Client fetches caps documents from torznab endpoints.
type Client struct {
	http *httpx.Client
}

func NewClient(http *httpx.Client) *Client {
	if http == nil {
		http = httpx.New()
	}
	return &Client{http: http}
}

// FetchCaps requests t=caps from endpoint, e.g.
// http://jackett:9117/api/v2.0/indexers/all/results/torznab.
func (c *Client) FetchCaps(ctx context.Context, endpoint, apiKey string) (*Caps, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("torznab endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	params := u.Query()
	params.Set("t", "caps")
	if apiKey != "" {
		params.Set("apikey", apiKey)
	}
	u.RawQuery = ""

	body, err := c.http.GetRaw(ctx, httpx.Request{
		Provider: "torznab:" + u.Hostname(),
		URL:      u.String(),
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	return ParseCaps(bytes.NewReader(body))
}
