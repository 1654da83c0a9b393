// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package build loads a site from a filesystem and generates its pages for every locale.

A site is laid out as follows (directory names configurable through [Layout]):

	config/locale_config.yaml        locale configuration (.json, .yaml or .yml)
	config/global_config[.<locale>].yaml
	config/<page>[.<locale>].yaml    page configuration
	pages/<page>[.<locale>].<ext>    page templates
	partials/<name>[.<locale>].<ext> partial templates
	translations/<locale>.po         catalogs

Pages and partials may be nested in subdirectories; the directory becomes part of the
entity name.
*/
package build

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/entity"
	"codeberg.org/pixivfe/pagesmith/locale"
	"codeberg.org/pixivfe/pagesmith/pages"
)

// LocaleConfigName is the base name of the locale configuration file.
const LocaleConfigName = "locale_config"

var configExts = []string{"json", "yaml", "yml"}

// Layout names the site's subdirectories.
type Layout struct {
	Config       string `yaml:"config"`
	Pages        string `yaml:"pages"`
	Partials     string `yaml:"partials"`
	Translations string `yaml:"translations"`
}

// DefaultLayout returns the conventional directory names.
func DefaultLayout() Layout {
	return Layout{
		Config:       "config",
		Pages:        "pages",
		Partials:     "partials",
		Translations: "translations",
	}
}

// Site is the loaded, unmerged content of a site.
type Site struct {
	FS      fs.FS
	Layout  Layout
	Locales *locale.Config

	Configs   entity.Set
	Globals   entity.Set
	Templates entity.Set
	Partials  entity.Set
}

// Load reads the site rooted at fsys.
//
// A missing locale configuration yields a single-locale site. Malformed configuration
// files and duplicate entities are user errors.
func Load(fsys fs.FS, layout Layout) (*Site, error) {
	cfg, err := loadLocaleConfig(fsys, layout.Config)
	if err != nil {
		return nil, err
	}

	site := &Site{
		FS:        fsys,
		Layout:    layout,
		Locales:   cfg,
		Configs:   make(entity.Set),
		Globals:   make(entity.Set),
		Templates: make(entity.Set),
		Partials:  make(entity.Set),
	}

	if err := site.loadConfigs(); err != nil {
		return nil, err
	}

	if err := site.loadTemplates(layout.Pages, entity.PageTemplate, site.Templates); err != nil {
		return nil, err
	}

	if err := site.loadTemplates(layout.Partials, entity.PagePartial, site.Partials); err != nil {
		return nil, err
	}

	log.Info().
		Str("default", string(cfg.Default())).
		Int("locales", len(cfg.Locales())).
		Int("pages", len(site.Templates)).
		Int("partials", len(site.Partials)).
		Msg("Loaded site")

	return site, nil
}

func loadLocaleConfig(fsys fs.FS, dir string) (*locale.Config, error) {
	for _, ext := range configExts {
		file := path.Join(dir, LocaleConfigName+"."+ext)

		data, err := fs.ReadFile(fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fault.System(err, "failed to read %s", file)
		}

		var raw locale.RawConfig
		if err := decode(file, data, &raw); err != nil {
			return nil, err
		}

		return locale.NewConfig(raw)
	}

	log.Debug().Str("dir", dir).Msg("No locale configuration, using the default locale only")

	return locale.NewConfig(locale.RawConfig{})
}

func (s *Site) loadConfigs() error {
	return s.walk(s.Layout.Config, func(file, name string, fn entity.FileName, data []byte) error {
		if !slices.Contains(configExts, fn.Ext) {
			return nil
		}

		if name == LocaleConfigName && fn.Locale == locale.NoLocale {
			return nil
		}

		var payload entity.Payload
		if err := decode(file, data, &payload); err != nil {
			return err
		}

		if payload == nil {
			payload = entity.Payload{}
		}

		e := entity.Entity{
			Kind:    entity.PageConfig,
			Name:    name,
			Locale:  fn.Locale,
			Path:    file,
			Payload: payload,
		}

		if name == pages.GlobalConfigName {
			e.Kind = entity.GlobalConfig

			return s.Globals.Add(e)
		}

		return s.Configs.Add(e)
	})
}

func (s *Site) loadTemplates(dir string, kind entity.Kind, set entity.Set) error {
	return s.walk(dir, func(file, name string, fn entity.FileName, data []byte) error {
		return set.Add(entity.NewTemplate(kind, name, fn.Locale, file, string(data)))
	})
}

type visitFunc func(file, name string, fn entity.FileName, data []byte) error

// walk calls visit for every regular file below dir. name is the entity name: the file
// name without locale and extension, prefixed by its directory relative to dir.
func (s *Site) walk(dir string, visit visitFunc) error {
	err := fs.WalkDir(s.FS, dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && file == dir {
				return fs.SkipDir
			}

			return err
		}

		hidden := strings.HasPrefix(d.Name(), ".") && file != dir

		switch {
		case d.IsDir() && hidden:
			return fs.SkipDir
		case d.IsDir() || hidden:
			return nil
		}

		fn := entity.ParseFileName(d.Name(), s.Locales.Has)

		rel := strings.TrimPrefix(strings.TrimPrefix(file, dir), "/")
		name := path.Join(path.Dir(rel), fn.Name)

		data, err := fs.ReadFile(s.FS, file)
		if err != nil {
			return fault.System(err, "failed to read %s", file)
		}

		return visit(file, name, fn, data)
	})
	if err != nil && !fault.IsUser(err) && !fault.IsSystem(err) {
		return fault.System(err, "failed to walk %s", dir)
	}

	return err
}

// decode unmarshals a JSON or YAML file into v according to its extension.
func decode(file string, data []byte, v any) error {
	var err error

	switch path.Ext(file) {
	case ".json":
		err = json.Unmarshal(data, v)
	default:
		err = yaml.Unmarshal(data, v)
	}

	if err != nil {
		return fault.UserWrap(err, "failed to decode %s", file)
	}

	return nil
}
