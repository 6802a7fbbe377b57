// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testRegion struct {
	ID      string   `json:"id"`
	Sellers []string `json:"sellers"`
}

func newTestTypedCache(t *testing.T) (*TypedCache[testRegion], *MemoryCache) {
	t.Helper()
	mem := NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	return NewTypedCache[testRegion](mem, "regions:", time.Hour), mem
}

func TestTypedCache_BasicOperations(t *testing.T) {
	c, mem := newTestTypedCache(t)
	ctx := context.Background()

	r := &testRegion{ID: "r1", Sellers: []string{"s1", "s2"}}
	if err := c.Set(ctx, "r1", r); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(ctx, "r1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.ID != "r1" || len(got.Sellers) != 2 {
		t.Errorf("got %+v", got)
	}

	if has, _ := mem.Has(ctx, "regions:r1"); !has {
		t.Error("key should be stored with the prefix")
	}

	if err := c.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.Has(ctx, "r1") {
		t.Error("Has after Delete should be false")
	}
}

func TestTypedCache_CorruptEntryIsMiss(t *testing.T) {
	c, mem := newTestTypedCache(t)
	ctx := context.Background()

	_ = mem.Set(ctx, "regions:bad", []byte("{not json"), 0)
	if _, ok := c.Get(ctx, "bad"); ok {
		t.Error("undecodable entry should be a miss")
	}
}

func TestTypedCache_Invalidate(t *testing.T) {
	c, mem := newTestTypedCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", &testRegion{ID: "a"})
	_ = c.Set(ctx, "b", &testRegion{ID: "b"})
	_ = mem.Set(ctx, "menus:all", []byte("{}"), 0)

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if c.Has(ctx, "a") || c.Has(ctx, "b") {
		t.Error("typed keys should be gone")
	}
	if has, _ := mem.Has(ctx, "menus:all"); !has {
		t.Error("other namespaces must survive")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	c, _ := newTestTypedCache(t)
	ctx := context.Background()

	calls := 0
	load := func() (*testRegion, error) {
		calls++
		return &testRegion{ID: "r1"}, nil
	}

	for range 3 {
		got, err := c.GetOrSet(ctx, "r1", load)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if got.ID != "r1" {
			t.Errorf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	c, _ := newTestTypedCache(t)
	ctx := context.Background()
	wantErr := errors.New("upstream down")

	_, err := c.GetOrSet(ctx, "r1", func() (*testRegion, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
	if c.Has(ctx, "r1") {
		t.Error("failed load must not be cached")
	}
}

func TestTypedCache_GetOrSetCollapsesConcurrentMisses(t *testing.T) {
	c, _ := newTestTypedCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (*testRegion, error) {
		calls.Add(1)
		<-release
		return &testRegion{ID: "r1"}, nil
	}

	var wg sync.WaitGroup
	started := make(chan struct{}, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			if _, err := c.GetOrSet(ctx, "r1", load); err != nil {
				t.Errorf("GetOrSet failed: %v", err)
			}
		}()
	}
	for range 10 {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 2 {
		t.Errorf("loader called %d times, want concurrent misses collapsed", n)
	}
}
