// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package extract collects translatable phrases from template sources into a gettext
// template (POT).
package extract

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/i18n/directive"
)

// Key identifies a gettext entry. Plural is empty for singular entries.
type Key struct {
	Context string
	ID      string
	Plural  string
}

// Ref is a source reference to an entry.
type Ref struct {
	File string
	Line int
}

// Extractor scans template files for translation directives.
type Extractor struct {
	root   string
	ds     directive.Directives
	logger zerolog.Logger

	// Version is written to the Project-Id-Version header.
	Version string
}

// New returns an Extractor whose references are written relative to root.
func New(root string, ds directive.Directives) *Extractor {
	return &Extractor{
		root:    root,
		ds:      ds,
		logger:  log.With().Str("sys", "extract").Logger(),
		Version: "dev",
	}
}

// Extract parses every file in paths and returns the collected entries.
//
// Files that cannot be read or parsed are logged and skipped.
func (e *Extractor) Extract(paths []string) *Template {
	t := &Template{
		Version: e.Version,
		Created: time.Now().UTC(),
		entries: make(map[msgKey]*entry),
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			e.logger.Error().Err(err).Str("file", p).Msg("Failed to read template")

			continue
		}

		rel := e.relative(p)

		matches, err := directive.Parse(rel, string(data), e.ds)
		if err != nil {
			e.logger.Error().Err(err).Str("file", p).Msg("Failed to parse template")

			continue
		}

		for _, m := range matches {
			inv := m.Invocation
			t.Add(Key{Context: inv.Context, ID: inv.Phrase, Plural: inv.PluralForm}, Ref{File: rel, Line: inv.Line})
		}

		e.logger.Debug().Str("file", rel).Int("directives", len(matches)).Msg("Scanned template")
	}

	return t
}

func (e *Extractor) relative(p string) string {
	rel, err := filepath.Rel(e.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}

	return filepath.ToSlash(rel)
}
