// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/pages"
	"codeberg.org/pixivfe/pagesmith/render"
)

func TestWriteOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	err := writeOutputs(dir, []render.Output{
		{Path: "index.html", Content: []byte("en")},
		{Path: "fr/blog/post.html", Content: []byte("fr")},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "fr", "blog", "post.html"))
	require.NoError(t, err)
	assert.Equal(t, "fr", string(data))

	err = writeOutputs(dir, []render.Output{{Path: "../escape.html"}})
	require.ErrorIs(t, err, errOutsideOutput)
	assert.True(t, fault.IsUser(err))
}

func TestFormatOutput(t *testing.T) {
	t.Parallel()

	out, err := formatOutput(pages.Page{}, []byte("<p>x</p>\n\n  \n"))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>\n", string(out))
}

func TestValidateOutput(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateOutput(pages.Page{}, []byte("héllo")))
	require.ErrorIs(t, validateOutput(pages.Page{}, []byte{0xff, 0xfe}), errInvalidUTF8)
}
