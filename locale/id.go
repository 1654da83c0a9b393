// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package locale

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"codeberg.org/pixivfe/pagesmith/core/fault"
)

// NoLocale is the locale-agnostic bucket used for entities without a locale suffix.
const NoLocale ID = ""

// maxSegments is the number of '-' or '_' separated parts a locale may have.
const maxSegments = 3

// ID is a canonical locale identifier. Two IDs are equal iff their strings are equal.
type ID string

func (id ID) String() string {
	return string(id)
}

// Language returns the language subtag of id.
func (id ID) Language() string {
	lang, _, _ := strings.Cut(strings.ReplaceAll(string(id), "_", "-"), "-")

	return lang
}

// Tag returns the BCP 47 language tag for id.
// Unknown subtags are preserved where possible; NoLocale yields [language.Und].
func (id ID) Tag() language.Tag {
	if id == NoLocale {
		return language.Und
	}

	return language.Make(strings.ReplaceAll(string(id), "_", "-"))
}

// Canonicalize converts raw into a canonical [ID].
//
// An empty raw value yields NoLocale and no error. A value with more than three
// segments is a user error.
func Canonicalize(raw string) (ID, error) {
	if raw == "" {
		return NoLocale, nil
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 || len(parts) > maxSegments {
		return NoLocale, fault.User("malformed locale %q: expected language[-modifier][_region]", raw)
	}

	lang := strings.ToLower(parts[0])

	switch len(parts) {
	case 1:
		return ID(lang), nil
	case 2:
		second := strings.ToLower(parts[1])
		if lang == "zh" && (second == "hans" || second == "hant") {
			return ID(lang + "-" + titleCase(second)), nil
		}

		return ID(lang + "_" + strings.ToUpper(parts[1])), nil
	default:
		return ID(lang + "-" + titleCase(parts[1]) + "_" + strings.ToUpper(parts[2])), nil
	}
}

// MustCanonicalize is like Canonicalize but panics on malformed input.
// It is intended for constants and tests.
func MustCanonicalize(raw string) ID {
	id, err := Canonicalize(raw)
	if err != nil {
		panic(err)
	}

	return id
}

// Equal reports whether a and b name the same locale after canonicalisation.
// Malformed identifiers are never equal to anything.
func Equal(a, b string) bool {
	ca, err := Canonicalize(a)
	if err != nil {
		return false
	}

	cb, err := Canonicalize(b)
	if err != nil {
		return false
	}

	return ca == cb
}

// titleCase upper-cases the first letter of s and lower-cases the rest.
// A Caser is stateful, so a fresh one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
