// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/ocms-megamenu/internal/auth"
	"github.com/olegiv/ocms-megamenu/internal/model"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"MEGAMENU_SESSION_SECRET,required"`
	ServerHost    string `env:"MEGAMENU_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"MEGAMENU_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"MEGAMENU_ENV" envDefault:"development"`
	LogLevel      string `env:"MEGAMENU_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"MEGAMENU_LOG_FORMAT"` // text or json; empty picks by Env

	// Menu data source: a JSON/CSV file or an HTTP endpoint returning {menus:[...]}
	MenuSourcePath string `env:"MEGAMENU_SOURCE_PATH" envDefault:"./data/menus.json"`
	MenuSourceURL  string `env:"MEGAMENU_SOURCE_URL"`
	RefreshSpec    string `env:"MEGAMENU_REFRESH_SCHEDULE" envDefault:"@every 5m"`

	// Commerce backend
	CommerceAccount   string        `env:"MEGAMENU_COMMERCE_ACCOUNT"`
	CommerceToken     string        `env:"MEGAMENU_COMMERCE_TOKEN"`
	CommerceBaseURL   string        `env:"MEGAMENU_COMMERCE_BASE_URL"` // overrides http://{account}.myvtex.com
	CommerceTimeout   time.Duration `env:"MEGAMENU_COMMERCE_TIMEOUT" envDefault:"2s"`
	CommerceRetries   int           `env:"MEGAMENU_COMMERCE_RETRIES" envDefault:"2"`
	CommerceSellerTTL time.Duration `env:"MEGAMENU_COMMERCE_SELLER_TTL" envDefault:"10m"`

	// Cache configuration
	RedisURL     string        `env:"MEGAMENU_REDIS_URL"`
	CachePrefix  string        `env:"MEGAMENU_CACHE_PREFIX" envDefault:"megamenu:"`
	CacheTTL     time.Duration `env:"MEGAMENU_CACHE_TTL" envDefault:"10m"`
	CacheMaxSize int           `env:"MEGAMENU_CACHE_MAX_SIZE" envDefault:"10000"`

	// Interaction timings
	HoverDelay      time.Duration `env:"MEGAMENU_HOVER_DELAY" envDefault:"200ms"`
	CloseDelay      time.Duration `env:"MEGAMENU_CLOSE_DELAY" envDefault:"800ms"`
	ScrollDebounce  time.Duration `env:"MEGAMENU_SCROLL_DEBOUNCE" envDefault:"100ms"`
	ScrollThreshold int           `env:"MEGAMENU_SCROLL_THRESHOLD" envDefault:"640"`

	// Widget defaults, overridable per request
	Title                   string `env:"MEGAMENU_TITLE" envDefault:"Departments"`
	Orientation             string `env:"MEGAMENU_ORIENTATION"`
	DefaultDepartmentActive string `env:"MEGAMENU_DEFAULT_DEPARTMENT"`
	OpenOnly                string `env:"MEGAMENU_OPEN_ONLY"`
	HomeVersion             bool   `env:"MEGAMENU_HOME_VERSION" envDefault:"false"`
	DefaultLanguage         string `env:"MEGAMENU_DEFAULT_LANGUAGE" envDefault:"en"`

	// GeoIP configuration
	// GeoIPDBPath points to a GeoLite2-Country.mmdb file.
	GeoIPDBPath string `env:"MEGAMENU_GEOIP_DB_PATH"`
	// CountryRegions maps ISO country codes to region ids, e.g. US:v2.us,BR:v2.br
	CountryRegions map[string]string `env:"MEGAMENU_COUNTRY_REGIONS"`
	// DefaultRegion is used for countries missing from CountryRegions.
	DefaultRegion string `env:"MEGAMENU_DEFAULT_REGION"`

	// Visitor sessions
	SessionIdleTTL time.Duration `env:"MEGAMENU_SESSION_IDLE_TTL" envDefault:"30m"`

	// Event endpoint rate limit per client IP
	EventRateLimit float64 `env:"MEGAMENU_EVENT_RATE" envDefault:"20"`
	EventRateBurst int     `env:"MEGAMENU_EVENT_BURST" envDefault:"40"`

	// Storefront embedding
	// TrustedOrigins are host[:port] values allowed to post events cross-origin.
	TrustedOrigins []string `env:"MEGAMENU_TRUSTED_ORIGINS"`
	// FrameAncestors are origins allowed to frame the menu.
	FrameAncestors []string `env:"MEGAMENU_FRAME_ANCESTORS"`

	// Admin export endpoint, disabled without a password hash.
	// Generate the hash with: megamenu -hash-password
	AdminUser         string `env:"MEGAMENU_ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string `env:"MEGAMENU_ADMIN_PASSWORD_HASH"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// CommerceEnabled returns true if the commerce backend is configured.
func (c Config) CommerceEnabled() bool {
	return c.CommerceAccount != "" || c.CommerceBaseURL != ""
}

// AdminEnabled returns true if the admin export endpoint is protected by a password.
func (c Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

// Widget returns the configured widget defaults. Unknown orientation
// values fall back to automatic selection.
func (c Config) Widget() model.GlobalConfig {
	return model.GlobalConfig{
		Title:                   c.Title,
		Orientation:             model.ParseOrientation(c.Orientation),
		DefaultDepartmentActive: c.DefaultDepartmentActive,
		OpenOnly:                model.ParseOrientation(c.OpenOnly),
		HomeVersion:             c.HomeVersion,
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("MEGAMENU_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("MEGAMENU_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("MEGAMENU_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.AdminPasswordHash != "" {
		if err := auth.ValidateHash(cfg.AdminPasswordHash); err != nil {
			return nil, fmt.Errorf("MEGAMENU_ADMIN_PASSWORD_HASH: %w", err)
		}
	}

	if cfg.CommerceRetries < 0 {
		cfg.CommerceRetries = 0
	}
	if cfg.ScrollThreshold <= 0 {
		cfg.ScrollThreshold = 640
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
