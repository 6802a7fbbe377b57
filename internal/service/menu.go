// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service loads menu trees from their source, caches them and
// narrows them to the shopper's region.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/olegiv/ocms-megamenu/internal/cache"
	"github.com/olegiv/ocms-megamenu/internal/metrics"
	"github.com/olegiv/ocms-megamenu/internal/model"
)

const menusKey = "all"

// SellerLookup resolves the sellers serving a region.
type SellerLookup interface {
	SellerSet(ctx context.Context, regionID string) (map[string]struct{}, error)
}

// Query selects which menus are returned.
type Query struct {
	Region string
	// FilterByRegion drops items whose sellers do not serve Region.
	FilterByRegion bool
}

// MenuServiceOptions configures a MenuService.
type MenuServiceOptions struct {
	Source Source
	// Sellers is optional; without it region filtering is skipped.
	Sellers SellerLookup
	Cache   cache.Cacher
	TTL     time.Duration
	Logger  *slog.Logger
	// Refreshes counts source loads by result.
	Refreshes metrics.IncrementalCounter
}

// MenuService provides the department trees served to the widget.
type MenuService struct {
	source    Source
	sellers   SellerLookup
	menus     *cache.TypedCache[model.MenusResponse]
	logger    *slog.Logger
	refreshes metrics.IncrementalCounter
}

// NewMenuService creates a MenuService. Without a cache, menus are kept in
// memory until the next Refresh or TTL expiry.
func NewMenuService(opts MenuServiceOptions) *MenuService {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewSimpleMemoryCache(opts.TTL)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &MenuService{
		source:    opts.Source,
		sellers:   opts.Sellers,
		menus:     cache.NewTypedCache[model.MenusResponse](opts.Cache, "menus:", opts.TTL),
		logger:    opts.Logger,
		refreshes: opts.Refreshes,
	}
}

// load reads the source and sorts every level by order.
func (s *MenuService) load(ctx context.Context) (resp *model.MenusResponse, err error) {
	defer func() {
		if s.refreshes != nil {
			s.refreshes.Increment(metrics.Result(err))
		}
	}()

	start := time.Now()
	menus, err := s.source.Menus(ctx)
	if err != nil {
		s.logger.Error("failed to load menus", "source", s.source.Name(), "error", err)
		return nil, fmt.Errorf("loading menus from %s: %w", s.source.Name(), err)
	}
	model.SortByOrder(menus)

	s.logger.Info("menus loaded",
		"source", s.source.Name(),
		"departments", len(menus),
		"depth", model.Depth(menus),
		"duration", time.Since(start))
	return &model.MenusResponse{Menus: menus, Revision: strconv.FormatInt(start.UnixNano(), 36)}, nil
}

// Refresh reloads the source and replaces the cached menus. On failure the
// previously cached menus stay in place.
func (s *MenuService) Refresh(ctx context.Context) error {
	resp, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := s.menus.Set(ctx, menusKey, resp); err != nil {
		s.logger.Warn("failed to cache menus", "error", err)
	}
	return nil
}

// Result is the outcome of a menus query.
type Result struct {
	Menus []*model.MenuItem
	// Revision identifies the loaded data set and the region it was
	// narrowed to.
	Revision string
}

// All returns every department, loading them on a cache miss.
func (s *MenuService) All(ctx context.Context) ([]*model.MenuItem, error) {
	resp, err := s.cached(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Menus, nil
}

func (s *MenuService) cached(ctx context.Context) (*model.MenusResponse, error) {
	return s.menus.GetOrSet(ctx, menusKey, func() (*model.MenusResponse, error) {
		return s.load(ctx)
	})
}

// Menus returns the departments for q. A failed seller lookup degrades to
// the unfiltered tree.
func (s *MenuService) Menus(ctx context.Context, q Query) ([]*model.MenuItem, error) {
	res, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Menus, nil
}

// Query is Menus together with the revision of the returned tree.
func (s *MenuService) Query(ctx context.Context, q Query) (Result, error) {
	resp, err := s.cached(ctx)
	if err != nil {
		return Result{}, err
	}
	if !q.FilterByRegion || q.Region == "" || s.sellers == nil {
		return Result{Menus: resp.Menus, Revision: resp.Revision}, nil
	}

	sellers, err := s.sellers.SellerSet(ctx, q.Region)
	if err != nil {
		s.logger.Warn("region seller lookup failed, serving unfiltered menus",
			"region", q.Region, "error", err)
		return Result{Menus: resp.Menus, Revision: resp.Revision}, nil
	}
	return Result{
		Menus:    model.FilterEligible(resp.Menus, sellers),
		Revision: resp.Revision + "/" + q.Region,
	}, nil
}

// Invalidate drops the cached menus.
func (s *MenuService) Invalidate(ctx context.Context) error {
	return s.menus.Invalidate(ctx)
}
