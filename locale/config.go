// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package locale

import (
	"maps"
	"slices"

	"codeberg.org/pixivfe/pagesmith/core/fault"
)

// BaseLocale is the default locale used when the site declares none.
const BaseLocale ID = "en"

// RawConfig mirrors the on-disk locale configuration object.
type RawConfig struct {
	Default      string              `json:"default"      yaml:"default"`
	LocaleConfig map[string]RawEntry `json:"localeConfig" yaml:"localeConfig"`
	URLFormat    URLFormat           `json:"urlFormat"    yaml:"urlFormat"`
}

// RawEntry is the on-disk configuration of a single locale.
type RawEntry struct {
	Fallback        []string       `json:"fallback"        yaml:"fallback"`
	TranslationFile string         `json:"translationFile" yaml:"translationFile"`
	URLOverride     string         `json:"urlOverride"     yaml:"urlOverride"`
	Params          map[string]any `json:"params"          yaml:"params"`
	ExperienceKey   string         `json:"experienceKey"   yaml:"experienceKey"`
}

// URLFormat holds site-wide output path patterns.
// BaseLocale applies to the default locale, Default to every other locale.
type URLFormat struct {
	BaseLocale string `json:"baseLocale" yaml:"baseLocale"`
	Default    string `json:"default"    yaml:"default"`
}

// Entry is the canonicalised configuration of a single locale.
type Entry struct {
	Fallbacks       []ID
	TranslationFile string
	URLOverride     string
	Params          map[string]any
	ExperienceKey   string
}

// Config is the immutable localization configuration of a site.
type Config struct {
	defaultLocale ID
	entries       map[ID]Entry
	urlFormat     URLFormat
}

// NewConfig validates raw and builds a Config.
//
// Every locale key and fallback is canonicalised. If any locale entries exist, the
// default locale must be one of them.
func NewConfig(raw RawConfig) (*Config, error) {
	def, err := Canonicalize(raw.Default)
	if err != nil {
		return nil, fault.UserWrap(err, "invalid default locale")
	}

	if def == NoLocale {
		def = BaseLocale
	}

	cfg := &Config{
		defaultLocale: def,
		entries:       make(map[ID]Entry, len(raw.LocaleConfig)),
		urlFormat:     raw.URLFormat,
	}

	// Iterate in sorted order so that error messages are deterministic.
	for _, key := range slices.Sorted(maps.Keys(raw.LocaleConfig)) {
		rawEntry := raw.LocaleConfig[key]

		id, err := Canonicalize(key)
		if err != nil {
			return nil, err
		}

		if id == NoLocale {
			return nil, fault.User("empty locale key in localeConfig")
		}

		if _, dup := cfg.entries[id]; dup {
			return nil, fault.User("locale %q is configured more than once", id)
		}

		entry := Entry{
			TranslationFile: rawEntry.TranslationFile,
			URLOverride:     rawEntry.URLOverride,
			Params:          rawEntry.Params,
			ExperienceKey:   rawEntry.ExperienceKey,
		}

		for _, f := range rawEntry.Fallback {
			fid, err := Canonicalize(f)
			if err != nil {
				return nil, fault.UserWrap(err, "invalid fallback for locale %q", id)
			}

			if fid != NoLocale {
				entry.Fallbacks = append(entry.Fallbacks, fid)
			}
		}

		cfg.entries[id] = entry
	}

	if len(cfg.entries) > 0 {
		if _, ok := cfg.entries[def]; !ok {
			return nil, fault.User("default locale %q has no entry in localeConfig", def)
		}
	}

	return cfg, nil
}

// Default returns the default locale.
func (c *Config) Default() ID {
	return c.defaultLocale
}

// HasConfig reports whether any locale entries are configured.
func (c *Config) HasConfig() bool {
	return len(c.entries) > 0
}

// IsDefault reports whether raw names the default locale.
func (c *Config) IsDefault(raw string) bool {
	return Equal(raw, string(c.defaultLocale))
}

// Locales returns every configured locale with the default locale first and the
// rest sorted. Without configuration it returns only the default locale.
func (c *Config) Locales() []ID {
	out := []ID{c.defaultLocale}

	for _, id := range slices.Sorted(maps.Keys(c.entries)) {
		if id != c.defaultLocale {
			out = append(out, id)
		}
	}

	return out
}

// Has reports whether id is a configured locale.
func (c *Config) Has(id ID) bool {
	if !c.HasConfig() {
		return id == c.defaultLocale
	}

	_, ok := c.entries[id]

	return ok
}

// Entry returns the configuration of id.
func (c *Config) Entry(id ID) (Entry, bool) {
	e, ok := c.entries[id]

	return e, ok
}

// Fallbacks returns the explicit fallback chain of id. The returned slice is a copy.
func (c *Config) Fallbacks(id ID) []ID {
	return slices.Clone(c.entries[id].Fallbacks)
}

// Params returns the template parameters configured for id.
func (c *Config) Params(id ID) map[string]any {
	return c.entries[id].Params
}

// ExperienceKey returns the experience key configured for id.
func (c *Config) ExperienceKey(id ID) string {
	return c.entries[id].ExperienceKey
}

// TranslationFile returns the catalog file name for id, defaulting to "<id>.po".
func (c *Config) TranslationFile(id ID) string {
	if f := c.entries[id].TranslationFile; f != "" {
		return f
	}

	return string(id) + ".po"
}
