// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/pagesmith/config"
)

func defaults() *config.BuildConfig {
	cfg := &config.BuildConfig{}
	cfg.SetDefaults()

	return cfg
}

func TestEnvExample(t *testing.T) {
	t.Parallel()

	out := envExample(defaults())

	assert.True(t, strings.HasPrefix(out, envFileHeader))
	assert.Contains(t, out, "## Paths\n")
	assert.Contains(t, out, "PAGESMITH_SITE=\".\"\n")
	assert.Contains(t, out, "PAGESMITH_OUTPUT=\"./public\"\n")
	assert.Contains(t, out, "# PAGESMITH_MARKUP_DIRECTIVES=translate\n")
	assert.Contains(t, out, "# PAGESMITH_PARALLEL=false\n")
	assert.Contains(t, out, "# PAGESMITH_LOG_LEVEL=info\n")
	assert.NotContains(t, out, "## Build")
}

func TestYAMLExample(t *testing.T) {
	t.Parallel()

	out, err := yamlExample(defaults())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, yamlFileHeader))
	assert.Contains(t, out, "\npaths:\n")
	assert.Contains(t, out, "\n  site: ")
	assert.NotContains(t, out, "# site:")
	assert.Contains(t, out, "\n  output: ./public\n")
	assert.Contains(t, out, "\n  # output: translations/messages.pot\n")
	assert.Contains(t, out, "\n  # logLevel: info\n")
}
