// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package locale

import "strings"

// Built-in output path patterns.
const (
	DefaultBaseLocalePattern = "{pageName}.{pageExt}"
	DefaultLocalePattern     = "{locale}/{pageName}.{pageExt}"
)

// URLFormatter returns the function computing a page's output path for id.
//
// Pattern precedence: the locale's urlOverride, then the site urlFormat entry
// (baseLocale for the default locale, default otherwise), then the built-in patterns.
// Supported placeholders are {locale}, {language}, {pageName} and {pageExt}.
func (c *Config) URLFormatter(id ID) func(name, ext string) string {
	pattern := c.pattern(id)

	return func(name, ext string) string {
		r := strings.NewReplacer(
			"{locale}", string(id),
			"{language}", id.Language(),
			"{pageName}", name,
			"{pageExt}", ext,
		)

		out := r.Replace(pattern)
		if ext == "" {
			out = strings.TrimSuffix(out, ".")
		}

		return out
	}
}

func (c *Config) pattern(id ID) string {
	if o := c.entries[id].URLOverride; o != "" {
		return o
	}

	if id == c.defaultLocale {
		if c.urlFormat.BaseLocale != "" {
			return c.urlFormat.BaseLocale
		}

		return DefaultBaseLocalePattern
	}

	if c.urlFormat.Default != "" {
		return c.urlFormat.Default
	}

	return DefaultLocalePattern
}
