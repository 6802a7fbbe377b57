// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestInit(t *testing.T) {
	if err := Init(nil, "en"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, lang := range SupportedLanguages {
		if TranslationCount(lang) == 0 {
			t.Errorf("expected %s translations to be loaded", lang)
		}
	}
}

func TestT(t *testing.T) {
	if err := Init(nil, "en"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		lang     string
		key      string
		expected string
	}{
		{"en", KeySeeAll, "See all"},
		{"es", KeySeeAll, "Ver todo"},
		{"pt", KeySeeAllProducts, "Ver todos os produtos"},
		{"pt", KeyExportCats, "Exportar categorias"},
		{"es", "Departments", "Departamentos"},
		// Falls back to the default language
		{"de", KeySeeAll, "See all"},
		// Free text passes through
		{"en", "Shop by department", "Shop by department"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.key, func(t *testing.T) {
			if got := T(tt.lang, tt.key); got != tt.expected {
				t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.expected)
			}
		})
	}
}

func TestTranslator(t *testing.T) {
	if err := Init(nil, "en"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tr := Translator("pt")
	if got := tr(KeyTitle); got != "Departamentos" {
		t.Errorf("Translator(pt)(%q) = %q", KeyTitle, got)
	}
}

func TestInit_DefaultLanguage(t *testing.T) {
	if err := Init(nil, "pt"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = Init(nil, "en") })

	if DefaultLanguage() != "pt" {
		t.Errorf("DefaultLanguage() = %q, want pt", DefaultLanguage())
	}
	if got := MatchLanguage("de"); got != "pt" {
		t.Errorf("MatchLanguage(de) = %q, want pt", got)
	}

	if err := Init(nil, "xx"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if DefaultLanguage() != "en" {
		t.Errorf("unsupported default should fall back to en, got %q", DefaultLanguage())
	}
}

func TestMatchLanguage(t *testing.T) {
	if err := Init(nil, "en"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"es", "es"},
		{"pt-BR", "pt"},
		{"es-MX", "es"},
		{"de", "en"},
		{"invalid", "en"},
		{"en-US, pt;q=0.9, de;q=0.8", "en"},
		{"pt-BR, en;q=0.9", "pt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MatchLanguage(tt.input); got != tt.expected {
				t.Errorf("MatchLanguage(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		lang     string
		expected bool
	}{
		{"en", true},
		{"PT", true},
		{"es", true},
		{"ru", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := IsSupported(tt.lang); got != tt.expected {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.lang, got, tt.expected)
			}
		})
	}
}

func TestTranslationFilesNoDuplicates(t *testing.T) {
	for _, lang := range SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			path := fmt.Sprintf("locales/%s/messages.json", lang)
			data, err := localesFS.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read %s: %v", path, err)
			}

			var msgFile MessageFile
			if err := json.Unmarshal(data, &msgFile); err != nil {
				t.Fatalf("Failed to parse %s: %v", path, err)
			}

			seen := make(map[string]int)
			var duplicates []string
			for i, msg := range msgFile.Messages {
				if firstIdx, exists := seen[msg.ID]; exists {
					duplicates = append(duplicates, fmt.Sprintf("%q (lines %d and %d)", msg.ID, firstIdx+1, i+1))
				} else {
					seen[msg.ID] = i
				}
			}

			if len(duplicates) > 0 {
				t.Errorf("Found %d duplicate translation IDs in %s:\n  %v", len(duplicates), lang, duplicates)
			}
		})
	}
}

func TestTranslationFilesEqualCount(t *testing.T) {
	counts := make(map[string]int)
	keys := make(map[string]map[string]bool)

	for _, lang := range SupportedLanguages {
		path := fmt.Sprintf("locales/%s/messages.json", lang)
		data, err := localesFS.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", path, err)
		}

		var msgFile MessageFile
		if err := json.Unmarshal(data, &msgFile); err != nil {
			t.Fatalf("Failed to parse %s: %v", path, err)
		}

		// Count unique keys (in case there are duplicates)
		keys[lang] = make(map[string]bool)
		for _, msg := range msgFile.Messages {
			keys[lang][msg.ID] = true
		}
		counts[lang] = len(keys[lang])
	}

	// Compare all languages to the first one
	if len(SupportedLanguages) < 2 {
		return
	}

	refLang := SupportedLanguages[0]
	refCount := counts[refLang]

	for _, lang := range SupportedLanguages[1:] {
		if counts[lang] != refCount {
			t.Errorf("Translation count mismatch: %s has %d, %s has %d",
				refLang, refCount, lang, counts[lang])

			// Find missing keys
			missingInLang := findMissingKeys(keys[refLang], keys[lang])
			missingInRef := findMissingKeys(keys[lang], keys[refLang])

			if len(missingInLang) > 0 {
				t.Errorf("Keys in %s but missing in %s: %v", refLang, lang, missingInLang)
			}
			if len(missingInRef) > 0 {
				t.Errorf("Keys in %s but missing in %s: %v", lang, refLang, missingInRef)
			}
		}
	}
}

func findMissingKeys(a, b map[string]bool) []string {
	var missing []string
	for key := range a {
		if !b[key] {
			missing = append(missing, key)
		}
	}
	return missing
}
