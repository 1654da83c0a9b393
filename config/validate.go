// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
)

// validation errors.
var (
	errEmptySitePath      = errors.New("paths.site cannot be empty")
	errEmptyOutputPath    = errors.New("paths.output cannot be empty")
	errEmptySiteDir       = errors.New("site subdirectories cannot be empty")
	errNoMarkupDirective  = errors.New("at least one markup directive name is required")
	errInvalidDirective   = errors.New("invalid directive name")
	errDirectiveConflict  = errors.New("directive name used for both markup and code")
	errEmptyExtractOutput = errors.New("extract.output cannot be empty")
	errInvalidLogLevel    = errors.New("invalid Log.Level value")
	errInvalidLogFormat   = errors.New("invalid Log.Format value")
)

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Names that cannot be used as directives since the template engine reserves them.
var reservedNames = []string{
	"and", "block", "break", "call", "continue", "define", "else", "end", "eq", "false", "ge",
	"gt", "html", "if", "index", "js", "le", "len", "lt", "ne", "nil", "not", "or", "print",
	"printf", "println", "range", "slice", "template", "true", "urlquery", "with",
}

// validateAndSet validates the configuration and normalises paths.
func (cfg *BuildConfig) validateAndSet() error {
	if cfg.Paths.Site == "" {
		return errEmptySitePath
	}

	if cfg.Paths.Output == "" {
		return errEmptyOutputPath
	}

	cfg.Paths.Site = filepath.Clean(cfg.Paths.Site)
	cfg.Paths.Output = filepath.Clean(cfg.Paths.Output)

	for _, dir := range []*string{&cfg.Paths.Config, &cfg.Paths.Pages, &cfg.Paths.Partials, &cfg.Paths.Translations} {
		if *dir == "" {
			return errEmptySiteDir
		}

		// Site directories are fs.FS paths, so always slash-separated.
		*dir = filepath.ToSlash(filepath.Clean(*dir))
	}

	if len(cfg.Directives.Markup) == 0 {
		return errNoMarkupDirective
	}

	for _, name := range slices.Concat(cfg.Directives.Markup, cfg.Directives.Code) {
		if !identifierRegexp.MatchString(name) || slices.Contains(reservedNames, name) {
			return fmt.Errorf("%w: %q", errInvalidDirective, name)
		}
	}

	for _, name := range cfg.Directives.Markup {
		if slices.Contains(cfg.Directives.Code, name) {
			return fmt.Errorf("%w: %q", errDirectiveConflict, name)
		}
	}

	if cfg.Extract.Output == "" {
		return errEmptyExtractOutput
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	return nil
}
