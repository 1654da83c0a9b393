// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package config holds the configuration of the pagesmith tools.

Values are resolved in this order, later sources winning:

 1. built-in defaults
 2. the YAML configuration file
 3. PAGESMITH_* environment variables
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/pixivfe/pagesmith/build"
	"codeberg.org/pixivfe/pagesmith/i18n/directive"
)

// Global exposes the tool configuration.
var Global BuildConfig

// Default configuration file names, tried in order when no path is given.
var defaultConfigFiles = []string{"./pagesmith.yaml", "./pagesmith.yml"}

// BuildConfig holds the tool configuration.
type BuildConfig struct {
	Build buildInfo `yaml:"-"`

	Paths struct {
		Site         string `env:"PAGESMITH_SITE,overwrite"         yaml:"site"`
		Output       string `env:"PAGESMITH_OUTPUT,overwrite"       yaml:"output"`
		Config       string `env:"PAGESMITH_CONFIG_DIR,overwrite"   yaml:"config"`
		Pages        string `env:"PAGESMITH_PAGES_DIR,overwrite"    yaml:"pages"`
		Partials     string `env:"PAGESMITH_PARTIALS_DIR,overwrite" yaml:"partials"`
		Translations string `env:"PAGESMITH_TRANSLATIONS_DIR,overwrite" yaml:"translations"`
	} `yaml:"paths"`

	Directives struct {
		Markup []string `env:"PAGESMITH_MARKUP_DIRECTIVES,overwrite" yaml:"markup"`
		Code   []string `env:"PAGESMITH_CODE_DIRECTIVES,overwrite"   yaml:"code"`
	} `yaml:"directives"`

	Generation struct {
		// Process locales concurrently.
		Parallel bool `env:"PAGESMITH_PARALLEL,overwrite" yaml:"parallel"`
	} `yaml:"generation"`

	Extract struct {
		Output string `env:"PAGESMITH_EXTRACT_OUTPUT,overwrite" yaml:"output"`
		// Glob patterns, relative to the site root.
		Sources []string `env:"PAGESMITH_EXTRACT_SOURCES,overwrite" yaml:"sources"`
	} `yaml:"extract"`

	Internationalization struct {
		// Strict mode for missing keys.
		//
		// When enabled, missing keys are logged (deduplicated per locale+key) and
		// visibly wrapped using markers.
		StrictMissingKeys bool `env:"PAGESMITH_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`

	Development struct {
		InDevelopment bool `env:"PAGESMITH_DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"PAGESMITH_LOG_LEVEL,overwrite"   yaml:"logLevel"`
		Outputs []string `env:"PAGESMITH_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"PAGESMITH_LOG_FORMAT,overwrite"  yaml:"logFormat"`
	} `yaml:"log"`
}

// LoadConfig loads the configuration from every source.
//
// The file at configFilePath is read when given. Otherwise PAGESMITH_CONFIGFILE is used,
// then ./pagesmith.yaml or ./pagesmith.yml if present.
func (cfg *BuildConfig) LoadConfig(configFilePath string) error {
	if configFilePath == "" {
		configFilePath = os.Getenv("PAGESMITH_CONFIGFILE")
	}

	if configFilePath == "" {
		for _, p := range defaultConfigFiles {
			if _, err := os.Stat(p); err == nil {
				configFilePath = p

				break
			}
		}
	}

	cfg.SetDefaults()

	cfg.Build.load()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	return nil
}

// Layout returns the site layout described by the configured paths.
func (cfg *BuildConfig) Layout() build.Layout {
	return build.Layout{
		Config:       cfg.Paths.Config,
		Pages:        cfg.Paths.Pages,
		Partials:     cfg.Paths.Partials,
		Translations: cfg.Paths.Translations,
	}
}

// DirectiveNames returns the configured directive names.
func (cfg *BuildConfig) DirectiveNames() directive.Directives {
	return directive.Directives{
		Markup: cfg.Directives.Markup,
		Code:   cfg.Directives.Code,
	}
}

// GenerateOptions returns the generation options described by the configuration.
func (cfg *BuildConfig) GenerateOptions() build.Options {
	return build.Options{
		Directives:        cfg.DirectiveNames(),
		Parallel:          cfg.Generation.Parallel,
		StrictMissingKeys: cfg.Internationalization.StrictMissingKeys,
	}
}

// ExtractOutput returns the POT output path, resolved against the site root when
// relative.
func (cfg *BuildConfig) ExtractOutput() string {
	if filepath.IsAbs(cfg.Extract.Output) {
		return cfg.Extract.Output
	}

	return filepath.Join(cfg.Paths.Site, cfg.Extract.Output)
}
