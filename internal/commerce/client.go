// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package commerce talks to the commerce platform: region seller lookups
// for menu filtering and the catalog category tree for exports.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/olegiv/ocms-megamenu/internal/cache"
	"github.com/olegiv/ocms-megamenu/internal/metrics"
)

// Client defaults
const (
	DefaultTimeout   = 2 * time.Second
	DefaultRetries   = 2
	DefaultSellerTTL = 10 * time.Minute
	MaxResponseLen   = 4 << 20
	UserAgent        = "megamenu/1.0"
)

// Auth headers forwarded to the platform.
const (
	HeaderProxyAuth = "Proxy-Authorization"
	HeaderAuthToken = "VtexIdclientAutCookie"
	HeaderUseHTTPS  = "X-Vtex-Use-Https"
)

// ErrUpstream is wrapped by every non-2xx response error.
var ErrUpstream = errors.New("commerce upstream error")

// StatusError reports an unexpected upstream status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// Options configures a Client.
type Options struct {
	// Account builds the base URL http://{account}.myvtex.com.
	Account string
	// BaseURL overrides the account URL.
	BaseURL string
	// Token is forwarded when the request context carries none.
	Token     string
	Timeout   time.Duration
	Retries   int
	SellerTTL time.Duration
	// Cache stores region sellers. Nil uses an in-memory cache.
	Cache  cache.Cacher
	Logger *slog.Logger
	// Upstream counts requests by endpoint and result.
	Upstream metrics.IncrementalCounter
}

// Client is the commerce platform HTTP client.
type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	token    string
	sellers  *cache.TypedCache[[]Seller]
	logger   *slog.Logger
	upstream metrics.IncrementalCounter
}

// NewClient creates a client. Either Account or BaseURL must be set.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		if opts.Account == "" {
			return nil, errors.New("commerce: account or base URL required")
		}
		base = fmt.Sprintf("http://%s.myvtex.com", opts.Account)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.SellerTTL <= 0 {
		opts.SellerTTL = DefaultSellerTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewSimpleMemoryCache(opts.SellerTTL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = opts.Logger
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:     rc,
		baseURL:  base,
		token:    opts.Token,
		sellers:  cache.NewTypedCache[[]Seller](opts.Cache, "sellers:", opts.SellerTTL),
		logger:   opts.Logger,
		upstream: opts.Upstream,
	}, nil
}

// BaseURL returns the platform base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type tokenKey struct{}

// WithAuthToken returns a context whose requests forward token instead of
// the client default.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) authToken(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok && t != "" {
		return t
	}
	return c.token
}

// getJSON performs a GET on path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) (err error) {
	defer func() {
		if c.upstream != nil {
			c.upstream.Increment(endpoint, metrics.Result(err))
		}
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", endpoint, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderUseHTTPS, "true")
	if token := c.authToken(ctx); token != "" {
		req.Header.Set(HeaderProxyAuth, token)
		req.Header.Set(HeaderAuthToken, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseLen))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseLen)).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}
