// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package commerce

import (
	"context"
	"strconv"

	"github.com/olegiv/ocms-megamenu/internal/transfer"
	"github.com/olegiv/ocms-megamenu/internal/util"
)

type catalogCategory struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Children []catalogCategory `json:"children"`
}

// CategoryTree returns the catalog category tree down to depth levels.
func (c *Client) CategoryTree(ctx context.Context, depth int) ([]transfer.Category, error) {
	if depth <= 0 {
		depth = transfer.DefaultDepth
	}

	var tree []catalogCategory
	if err := c.getJSON(ctx, "category_tree", "/api/catalog_system/pub/category/tree/"+strconv.Itoa(depth), &tree); err != nil {
		return nil, err
	}
	return toCategories(tree), nil
}

func toCategories(tree []catalogCategory) []transfer.Category {
	if len(tree) == 0 {
		return nil
	}
	out := make([]transfer.Category, 0, len(tree))
	for _, cat := range tree {
		slug := util.LastSegment(cat.URL)
		if slug == "" {
			slug = util.Slugify(cat.Name)
		}
		out = append(out, transfer.Category{
			ID:       cat.ID,
			Name:     cat.Name,
			Slug:     slug,
			Children: toCategories(cat.Children),
		})
	}
	return out
}
