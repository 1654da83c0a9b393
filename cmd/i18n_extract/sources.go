// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// sourceSet matches slash-separated paths, relative to the site root, against glob
// patterns. "*" stays within a path segment and "**" spans any number of segments,
// including none.
type sourceSet struct {
	globs []glob.Glob
}

func compileSources(patterns []string) (*sourceSet, error) {
	s := &sourceSet{}

	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")

		variants := []string{p}
		// "a/**/b" must also match "a/b".
		if strings.Contains(p, "/**/") {
			variants = append(variants, strings.ReplaceAll(p, "/**/", "/"))
		}

		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			variants = append(variants, rest)
		}

		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid source pattern %q: %w", p, err)
			}

			s.globs = append(s.globs, g)
		}
	}

	return s, nil
}

func (s *sourceSet) match(rel string) bool {
	for _, g := range s.globs {
		if g.Match(rel) {
			return true
		}
	}

	return false
}

// collect walks root and returns the regular files matching s, in lexical order.
// Hidden directories are skipped.
func (s *sourceSet) collect(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		if s.match(filepath.ToSlash(rel)) {
			paths = append(paths, p)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return paths, nil
}
