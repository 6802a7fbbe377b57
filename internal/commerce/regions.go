// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package commerce

import (
	"context"
	"net/url"
	"strings"
)

// Seller is a seller serving a region.
type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type region struct {
	ID      string   `json:"id"`
	Sellers []Seller `json:"sellers"`
}

// RegionSellers returns the sellers of regionID. Results are cached and
// concurrent lookups for the same region share one request.
func (c *Client) RegionSellers(ctx context.Context, regionID string) ([]Seller, error) {
	regionID = strings.TrimSpace(regionID)
	if regionID == "" {
		return nil, nil
	}

	sellers, err := c.sellers.GetOrSet(ctx, regionID, func() (*[]Seller, error) {
		var regions []region
		if err := c.getJSON(ctx, "regions", "/api/checkout/pub/regions/"+url.PathEscape(regionID), &regions); err != nil {
			return nil, err
		}

		var out []Seller
		for _, r := range regions {
			out = append(out, r.Sellers...)
		}
		c.logger.Debug("region sellers fetched", "region", regionID, "sellers", len(out))
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return *sellers, nil
}

// SellerSet returns the seller ids of regionID as a set.
func (c *Client) SellerSet(ctx context.Context, regionID string) (map[string]struct{}, error) {
	sellers, err := c.RegionSellers(ctx, regionID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(sellers))
	for _, s := range sellers {
		set[s.ID] = struct{}{}
	}
	return set, nil
}

// InvalidateSellers drops every cached region.
func (c *Client) InvalidateSellers(ctx context.Context) error {
	return c.sellers.Invalidate(ctx)
}
