// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pages pairs resolved page configurations with resolved page templates per
locale and validates the assembled pages.
*/
package pages

import (
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/entity"
	"codeberg.org/pixivfe/pagesmith/locale"
)

// GlobalConfigName is the entity name of the site-wide configuration.
const GlobalConfigName = "global_config"

// Page is a page configuration matched with its template for one locale.
type Page struct {
	Name           string
	Locale         locale.ID
	Config         entity.Payload
	TemplatePath   string
	TemplateSource string
	OutputPath     string
}

// PageSet is everything needed to render one locale.
type PageSet struct {
	Locale       locale.ID
	Pages        []Page
	GlobalConfig entity.Payload
	Params       map[string]any
}

// BuildPageSets assembles one PageSet per locale present in configs, in the order of
// cfg.Locales().
//
// Templates are matched by exact name within the same locale; fallback already happened
// during resolution. A config without a template is skipped with a warning, as is a
// locale that ends up with no pages.
func BuildPageSets(configs, templates, globals map[locale.ID][]entity.Entity, cfg *locale.Config) []PageSet {
	var sets []PageSet

	for _, id := range cfg.Locales() {
		localeConfigs, ok := configs[id]
		if !ok {
			continue
		}

		byName := make(map[string]entity.Entity, len(templates[id]))
		for _, t := range templates[id] {
			byName[t.Name] = t
		}

		format := cfg.URLFormatter(id)
		set := PageSet{
			Locale:       id,
			GlobalConfig: globalConfig(globals[id]),
			Params:       cfg.Params(id),
		}

		for _, c := range localeConfigs {
			tmpl, ok := byName[c.Name]
			if !ok {
				log.Warn().
					Str("page", c.Name).
					Str("locale", string(id)).
					Msg("No template found for page config, skipping")

				continue
			}

			templatePath := tmpl.TemplatePath()

			set.Pages = append(set.Pages, Page{
				Name:           c.Name,
				Locale:         id,
				Config:         c.Payload,
				TemplatePath:   templatePath,
				TemplateSource: tmpl.Source(),
				OutputPath:     format(c.Name, extension(templatePath)),
			})
		}

		if len(set.Pages) == 0 {
			log.Warn().
				Str("locale", string(id)).
				Msg("No pages for locale, skipping")

			continue
		}

		sets = append(sets, set)
	}

	return sets
}

// AllPages flattens the pages of sets.
func AllPages(sets []PageSet) []Page {
	var out []Page
	for _, s := range sets {
		out = append(out, s.Pages...)
	}

	return out
}

// RelativePath returns the path from the directory of outputPath back to the output
// root, for example ".." for "fr/index.html" and "." for "index.html".
func RelativePath(outputPath string) string {
	dir := path.Dir(path.Clean("/" + outputPath))
	if dir == "/" {
		return "."
	}

	depth := strings.Count(dir, "/")

	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}

func extension(templatePath string) string {
	return strings.TrimPrefix(path.Ext(templatePath), ".")
}

func globalConfig(entities []entity.Entity) entity.Payload {
	for _, e := range entities {
		if e.Name == GlobalConfigName {
			return e.Payload
		}
	}

	return entity.Payload{}
}
