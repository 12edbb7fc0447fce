// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package httpx is the HTTP layer shared by every catalog provider: rate
// limiting, retries of transient failures, JSON decoding and bounded image
// downloads.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/sharedhttp"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/buildinfo"
	"github.com/autobrr/marquee/pkg/httphelpers"
	"github.com/autobrr/marquee/pkg/redact"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultAttempts = 3
	maxJSONBytes    = 8 << 20
	// MaxImageBytes caps a single poster download.
	MaxImageBytes = 15 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d (latency=%v)", e.Provider, e.StatusCode, e.Latency)
}

// Temporary reports whether retrying the request can succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound reports whether err is a 404 from a provider.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	attempts   uint
	retryDelay time.Duration
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithRetry sets the attempt count and base backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout, Transport: sharedhttp.Transport},
		attempts:   defaultAttempts,
		retryDelay: 500 * time.Millisecond,
		userAgent:  buildinfo.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one provider GET.
type Request struct {
	Provider string
	URL      string
	Params   url.Values
	Header   http.Header
}

// GetJSON performs req and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, req Request, out any) error {
	body, err := c.get(ctx, req, maxJSONBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.Provider, err)
	}
	return nil
}

// GetRaw performs req and returns the body undecoded, e.g. for XML feeds.
func (c *Client) GetRaw(ctx context.Context, req Request) ([]byte, error) {
	return c.get(ctx, req, maxJSONBytes)
}

// Fetch downloads an image. It satisfies the matching image fetcher.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("refusing to fetch poster url %q", rawURL)
	}
	return c.get(ctx, Request{Provider: "image:" + u.Hostname(), URL: rawURL}, MaxImageBytes)
}

func (c *Client) get(ctx context.Context, req Request, limit int64) ([]byte, error) {
	endpoint, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", req.Provider, err)
	}
	if len(req.Params) > 0 {
		endpoint.RawQuery = req.Params.Encode()
	}

	var body []byte
	err = retry.Do(
		func() error {
			if err := c.limiter.BeforeRequest(ctx, req.Provider); err != nil {
				return retry.Unrecoverable(err)
			}
			b, err := c.do(ctx, req, endpoint.String(), limit)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Str("provider", req.Provider).Uint("attempt", n+1).Msg("retrying provider request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, req Request, endpoint string, limit int64) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("build request: %w", err))
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("execute %s request (latency=%v): %w", req.Provider, latency, redact.URLError(err))
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.SetCooldown(req.Provider, time.Now().Add(retryAfter(resp.Header.Get("Retry-After"))))
		}
		return nil, &StatusError{Provider: req.Provider, StatusCode: resp.StatusCode, Latency: latency}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.Provider, err)
	}
	if int64(len(body)) > limit {
		return nil, retry.Unrecoverable(fmt.Errorf("%s response exceeds %d bytes", req.Provider, limit))
	}
	return body, nil
}

func isRetryable(err error) bool {
	if !retry.IsRecoverable(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rl *RateLimitWaitError
	if errors.As(err, &rl) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 30 * time.Second
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 30 * time.Second
}
