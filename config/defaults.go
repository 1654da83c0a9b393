// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"codeberg.org/pixivfe/pagesmith/build"
	"codeberg.org/pixivfe/pagesmith/i18n/directive"
)

// SetDefaults populates the configuration with default values.
func (cfg *BuildConfig) SetDefaults() {
	layout := build.DefaultLayout()

	cfg.Paths.Site = "."
	cfg.Paths.Output = "./public"
	cfg.Paths.Config = layout.Config
	cfg.Paths.Pages = layout.Pages
	cfg.Paths.Partials = layout.Partials
	cfg.Paths.Translations = layout.Translations

	ds := directive.DefaultDirectives()
	cfg.Directives.Markup = ds.Markup
	cfg.Directives.Code = ds.Code

	cfg.Generation.Parallel = false

	cfg.Extract.Output = "translations/messages.pot"
	cfg.Extract.Sources = []string{
		layout.Pages + "/**/*.html",
		layout.Partials + "/**/*.html",
	}

	cfg.Internationalization.StrictMissingKeys = false

	cfg.Development.InDevelopment = false

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"
}
