// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package entity defines the named, optionally localised building blocks of a site:
page configurations, page templates, partials and the global configuration.

All variants share the same shape, a name, a locale and a payload, so that the fallback
merge in package merge can operate on them generically.
*/
package entity

import (
	"maps"
	"path"
	"slices"
	"strings"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/locale"
)

// Kind identifies an entity variant.
type Kind int

// Entity variants.
const (
	PageConfig Kind = iota + 1
	PageTemplate
	PagePartial
	GlobalConfig
)

func (k Kind) String() string {
	switch k {
	case PageConfig:
		return "page config"
	case PageTemplate:
		return "page template"
	case PagePartial:
		return "partial"
	case GlobalConfig:
		return "global config"
	default:
		return "unknown"
	}
}

// Payload keys used by template-like entities.
const (
	SourceKey = "source"
	PathKey   = "path"
)

// Payload is the mergeable content of an entity.
// Merging is shallow: nested values are replaced, never combined.
type Payload map[string]any

// Entity is a named, optionally localised piece of site content.
type Entity struct {
	Kind    Kind
	Name    string
	Locale  locale.ID
	Path    string // source file, relative to the site root
	Payload Payload
}

// NewTemplate builds a template-like entity (page template or partial) whose payload
// carries the source text and file path.
func NewTemplate(kind Kind, name string, id locale.ID, filePath, source string) Entity {
	return Entity{
		Kind:   kind,
		Name:   name,
		Locale: id,
		Path:   filePath,
		Payload: Payload{
			SourceKey: source,
			PathKey:   filePath,
		},
	}
}

// Source returns the template source stored in the payload, or "".
func (e Entity) Source() string {
	s, _ := e.Payload[SourceKey].(string)

	return s
}

// TemplatePath returns the template path stored in the payload, falling back to Path.
func (e Entity) TemplatePath() string {
	if p, ok := e.Payload[PathKey].(string); ok && p != "" {
		return p
	}

	return e.Path
}

// Set indexes entities by name, then locale.
type Set map[string]map[locale.ID]Entity

// Add inserts e. Adding a second entity with the same name and locale is a user error.
func (s Set) Add(e Entity) error {
	byLocale, ok := s[e.Name]
	if !ok {
		byLocale = make(map[locale.ID]Entity)
		s[e.Name] = byLocale
	}

	if prev, dup := byLocale[e.Locale]; dup {
		return fault.User("%s %q for locale %q is defined twice (%s and %s)",
			e.Kind, e.Name, e.Locale, prev.Path, e.Path)
	}

	byLocale[e.Locale] = e

	return nil
}

// Get returns the entity for name and id.
func (s Set) Get(name string, id locale.ID) (Entity, bool) {
	e, ok := s[name][id]

	return e, ok
}

// Names returns the sorted entity names.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// FileName is a parsed "<name>[.<locale>].<ext>" file name.
type FileName struct {
	Name   string
	Locale locale.ID
	Ext    string // without the leading dot
}

// ParseFileName splits a file name following the "<name>[.<locale>].<ext>" convention.
//
// A dotted segment before the extension is only treated as a locale when known reports
// it as configured, so "jquery.min.js" keeps "jquery.min" as its name.
func ParseFileName(filename string, known func(locale.ID) bool) FileName {
	base := path.Base(filename)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	out := FileName{Name: stem, Ext: strings.TrimPrefix(ext, ".")}

	i := strings.LastIndexByte(stem, '.')
	if i <= 0 {
		return out
	}

	id, err := locale.Canonicalize(stem[i+1:])
	if err != nil || id == locale.NoLocale || known == nil || !known(id) {
		return out
	}

	out.Name = stem[:i]
	out.Locale = id

	return out
}
