// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pages

import (
	"fmt"
	"strings"

	"codeberg.org/pixivfe/pagesmith/core/fault"
)

// ViolationKind names a uniqueness rule.
type ViolationKind string

// Uniqueness rules checked by Validate.
const (
	DuplicatePage       ViolationKind = "duplicate page"
	DuplicateOutputPath ViolationKind = "duplicate output path"
)

// Violation is one broken uniqueness rule and the pages that break it.
type Violation struct {
	Kind  ViolationKind
	Key   string
	Pages []Page
}

// ValidationError lists every violation found by Validate.
// It matches [fault.ErrUser].
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d page validation error(s)", len(e.Violations))

	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  %s %s:", v.Kind, v.Key)

		for _, p := range v.Pages {
			fmt.Fprintf(&b, " [page %q locale %q template %s]", p.Name, p.Locale, p.TemplatePath)
		}
	}

	return b.String()
}

// Is reports true for [fault.ErrUser].
func (e *ValidationError) Is(target error) bool { return target == fault.ErrUser }

// Validate checks that no two pages share (name, locale) and that no two pages share an
// output path. Both checks always run and every violation is reported.
func Validate(pages []Page) error {
	var violations []Violation

	violations = append(violations, duplicates(pages, DuplicatePage, func(p Page) string {
		return fmt.Sprintf("%q (locale %q)", p.Name, p.Locale)
	})...)

	violations = append(violations, duplicates(pages, DuplicateOutputPath, func(p Page) string {
		return fmt.Sprintf("%q", p.OutputPath)
	})...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	return nil
}

// duplicates groups pages by key and returns a violation for every key shared by more
// than one page, in order of first appearance.
func duplicates(pages []Page, kind ViolationKind, key func(Page) string) []Violation {
	groups := make(map[string][]Page)

	var order []string

	for _, p := range pages {
		k := key(p)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}

		groups[k] = append(groups[k], p)
	}

	var out []Violation

	for _, k := range order {
		if len(groups[k]) > 1 {
			out = append(out, Violation{Kind: kind, Key: k, Pages: groups[k]})
		}
	}

	return out
}
