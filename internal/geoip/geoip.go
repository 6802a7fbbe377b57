// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves the shopper's commerce region from the client IP
// using a MaxMind GeoLite2-Country database.
package geoip

import (
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/olegiv/ocms-megamenu/internal/util"
)

// CountryLocal is returned for private and loopback addresses.
const CountryLocal = "LOCAL"

// Lookup maps IP addresses to ISO country codes.
type Lookup struct {
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
	enabled   bool
	mu        sync.RWMutex
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a lookup backed by the database at dbPath. An empty
// path disables lookups without error.
func NewLookup(dbPath string) (*Lookup, error) {
	g := &Lookup{dbPath: dbPath}
	if dbPath == "" {
		return g, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadDatabase(); err != nil {
		return g, err
	}
	return g, nil
}

// loadDatabase loads or reloads the database. Caller must hold g.mu.
func (g *Lookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		g.enabled = false
		if os.IsNotExist(err) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}

	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		g.enabled = false
		return fmt.Errorf("opening GeoIP database: %w", err)
	}

	if g.db != nil {
		_ = g.db.Close()
	}
	g.db = db
	g.dbModTime = info.ModTime()
	g.enabled = true
	return nil
}

// Reload reopens the database if the file changed. Safe to call from a
// cron job.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.loadDatabase()
}

// Country returns the 2-letter ISO country code of ip, CountryLocal for
// private addresses and "" when unknown.
func (g *Lookup) Country(ip net.IP) string {
	if ip == nil {
		return ""
	}
	if ip.IsLoopback() || util.IsPrivateIP(ip) {
		return CountryLocal
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.enabled || g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(ip, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// IsEnabled returns whether a database is loaded.
func (g *Lookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// Close closes the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		err := g.db.Close()
		g.db = nil
		g.enabled = false
		return err
	}
	return nil
}

// CountryLookup is implemented by Lookup.
type CountryLookup interface {
	Country(ip net.IP) string
}

// RegionResolver maps client IPs to commerce region ids through a
// country-to-region table.
type RegionResolver struct {
	lookup   CountryLookup
	regions  map[string]string
	fallback string
}

// NewRegionResolver creates a resolver. Country codes in regions are
// matched case-insensitively; fallback is used when no entry matches.
func NewRegionResolver(lookup CountryLookup, regions map[string]string, fallback string) *RegionResolver {
	normalized := make(map[string]string, len(regions))
	for country, region := range regions {
		normalized[strings.ToUpper(strings.TrimSpace(country))] = strings.TrimSpace(region)
	}
	return &RegionResolver{lookup: lookup, regions: normalized, fallback: fallback}
}

// Region returns the region id for the client at remoteAddr.
func (r *RegionResolver) Region(remoteAddr string) string {
	if r == nil || r.lookup == nil {
		return ""
	}
	country := r.lookup.Country(util.HostIP(remoteAddr))
	if region, ok := r.regions[country]; ok {
		return region
	}
	return r.fallback
}
