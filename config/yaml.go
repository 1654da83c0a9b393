// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// errConfigYAML marks a configuration file that could not be decoded.
var errConfigYAML = errors.New("invalid configuration file")

// readYAML decodes the file at path over cfg. Unknown keys are rejected so that a
// misspelt setting fails the build instead of being ignored. A missing file is skipped.
func (cfg *BuildConfig) readYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- Only loading a config file
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", path).Msg("No YAML configuration file found, skipping")

		return nil
	case err != nil:
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		// FormatError points at the offending line of the source.
		return fmt.Errorf("%w %s:\n%s", errConfigYAML, path, yaml.FormatError(err, false, true))
	}

	log.Info().Str("path", path).Msg("Loaded configuration file")

	return nil
}
