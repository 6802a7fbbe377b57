// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package commerce

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-megamenu/internal/testutil"
)

type recordingCounter struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingCounter) Increment(val ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, val)
}

func newTestClient(t *testing.T, h http.HandlerFunc, mutate ...func(*Options)) (*Client, *recordingCounter) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	counter := &recordingCounter{}
	opts := Options{
		BaseURL:  srv.URL,
		Token:    "default-token",
		Retries:  2,
		Logger:   testutil.TestLoggerSilent(),
		Upstream: counter,
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c, counter
}

func TestNewClient_BaseURL(t *testing.T) {
	c, err := NewClient(Options{Account: "mystore"})
	require.NoError(t, err)
	assert.Equal(t, "http://mystore.myvtex.com", c.BaseURL())

	c, err = NewClient(Options{Account: "mystore", BaseURL: "http://localhost:9000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.BaseURL())

	_, err = NewClient(Options{})
	assert.Error(t, err)
}

func TestRegionSellers(t *testing.T) {
	var hits atomic.Int32
	c, counter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/checkout/pub/regions/v2.us", r.URL.Path)
		assert.Equal(t, "default-token", r.Header.Get(HeaderProxyAuth))
		assert.Equal(t, "default-token", r.Header.Get(HeaderAuthToken))
		assert.Equal(t, "true", r.Header.Get(HeaderUseHTTPS))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"v2.us","sellers":[{"id":"s1","name":"One"},{"id":"s2","name":"Two"}]}]`))
	})

	ctx := context.Background()
	sellers, err := c.RegionSellers(ctx, "v2.us")
	require.NoError(t, err)
	assert.Equal(t, []Seller{{ID: "s1", Name: "One"}, {ID: "s2", Name: "Two"}}, sellers)

	set, err := c.SellerSet(ctx, "v2.us")
	require.NoError(t, err)
	assert.Contains(t, set, "s2")

	assert.Equal(t, int32(1), hits.Load(), "second lookup is served from cache")
	assert.Equal(t, [][]string{{"regions", "ok"}}, counter.calls)

	require.NoError(t, c.InvalidateSellers(ctx))
	_, err = c.RegionSellers(ctx, "v2.us")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRegionSellers_EmptyRegion(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	sellers, err := c.RegionSellers(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, sellers)
}

func TestRegionSellers_ForwardsCallerToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "caller-token", r.Header.Get(HeaderAuthToken))
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := WithAuthToken(context.Background(), "caller-token")
	_, err := c.RegionSellers(ctx, "v2.br")
	require.NoError(t, err)
}

func TestRegionSellers_UpstreamError(t *testing.T) {
	var hits atomic.Int32
	c, counter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.RegionSellers(context.Background(), "v2.us")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(3), hits.Load(), "initial request plus two retries")
	assert.Equal(t, [][]string{{"regions", "error"}}, counter.calls)
}

func TestRegionSellers_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.RegionSellers(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRegionSellers_Timeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(o *Options) {
		o.Timeout = 20 * time.Millisecond
		o.Retries = 0
	})

	_, err := c.RegionSellers(context.Background(), "slow")
	assert.Error(t, err)
}

func TestRegionSellers_BadJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.RegionSellers(context.Background(), "v2.us")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUpstream))
}

func TestCategoryTree(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/catalog_system/pub/category/tree/3", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"Shoes","url":"https://store.example.com/shoes","children":[
				{"id":2,"name":"Men","url":"https://store.example.com/shoes/men","children":[]}
			]},
			{"id":3,"name":"Home & Garden","url":"","children":[]}
		]`))
	})

	tree, err := c.CategoryTree(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "shoes", tree[0].Slug)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "men", tree[0].Children[0].Slug)
	assert.Equal(t, int64(2), tree[0].Children[0].ID)
	assert.Equal(t, "home-garden", tree[1].Slug)
	assert.Nil(t, tree[1].Children)
}
