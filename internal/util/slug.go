// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides the slug and network helpers shared by the catalog,
// export and GeoIP packages.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a category name into a URL slug: diacritics are stripped,
// letters lowercased, apostrophes dropped and every other run of
// non-alphanumeric characters collapsed into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		case r == '\'' || r == '\u2019':
		default:
			hyphen = true
		}
	}
	return b.String()
}

// JoinSlug appends a child slug to a parent path. A child that already
// carries the parent path ("shoes" + "shoes/men") is returned as is, so
// catalogs that store full paths and catalogs that store bare segments
// produce the same result.
func JoinSlug(parent, child string) string {
	parent = strings.TrimRight(parent, "/")
	child = strings.TrimLeft(child, "/")
	switch {
	case child == "":
		return parent
	case parent == "":
		return child
	case strings.HasPrefix(child, parent+"/"):
		return child
	default:
		return parent + "/" + child
	}
}

// LastSegment returns the final path segment of a URL or path, without any
// query string. Useful to derive a category slug from a catalog URL.
func LastSegment(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
