// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n translates the storefront and export strings of the menu.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message keys
const (
	KeyTitle          = "megamenu.title"
	KeySeeAll         = "megamenu.see_all"
	KeySeeAllProducts = "megamenu.see_all_products"
	KeyLoading        = "megamenu.loading"
	KeyOpenMenu       = "megamenu.open_menu"
	KeyExportCats     = "admin.export_cats"
	KeyGetCatsError   = "admin.get_cats_error"
	KeySaveCsvError   = "admin.save_csv_error"
)

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds the translations of every supported language.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// SupportedLanguages lists the storefront languages.
var SupportedLanguages = []string{"en", "es", "pt"}

// Init loads the embedded catalogs. defaultLang must be supported; an
// unsupported value falls back to English.
func Init(logger *slog.Logger, defaultLang string) error {
	if !IsSupported(defaultLang) {
		defaultLang = "en"
	}
	c := &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  strings.ToLower(defaultLang),
		logger:       logger,
	}

	// The default language goes first so the matcher prefers it.
	tags := []language.Tag{language.MustParse(c.defaultLang)}
	for _, lang := range SupportedLanguages {
		if lang != c.defaultLang {
			tags = append(tags, language.MustParse(lang))
		}
	}
	c.supported = tags
	c.matcher = language.NewMatcher(tags)

	for _, lang := range SupportedLanguages {
		if err := c.loadLanguage(lang); err != nil {
			return fmt.Errorf("loading language %s: %w", lang, err)
		}
	}
	catalog = c

	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages, "default", c.defaultLang)
	}
	return nil
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}
	return nil
}

func (c *Catalog) lookup(lang, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if tr, ok := c.translations[lang][key]; ok {
		return tr, true
	}
	if lang != c.defaultLang {
		if tr, ok := c.translations[c.defaultLang][key]; ok {
			if c.logger != nil {
				c.logger.Debug("missing translation, using default", "key", key, "lang", lang)
			}
			return tr, true
		}
	}
	return "", false
}

// T translates key into lang. Unknown keys are returned unchanged, so
// free-form text such as a configured menu title passes through.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}
	tr, ok := catalog.lookup(lang, key)
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(tr, args...)
	}
	return tr
}

// Translator returns T bound to lang, for templates.
func Translator(lang string) func(key string, args ...any) string {
	return func(key string, args ...any) string {
		return T(lang, key, args...)
	}
}

// MatchLanguage picks the best supported language for an Accept-Language
// header or a plain language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil {
		return "en"
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return catalog.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := catalog.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(catalog.supported) {
		return catalog.defaultLang
	}
	base, _ := catalog.supported[idx].Base()
	return base.String()
}

// IsSupported checks if a language code is supported.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// DefaultLanguage returns the configured fallback language.
func DefaultLanguage() string {
	if catalog == nil {
		return "en"
	}
	return catalog.defaultLang
}

// TranslationCount returns the number of translations loaded for a language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.translations[lang])
}
