// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/locale"
)

// placeholderRegexp matches [[name]] interpolation placeholders.
var placeholderRegexp = regexp.MustCompile(`\[\[([a-zA-Z0-9]+)\]\]`)

// PluralForms holds the plural variants of a phrase keyed by gettext plural index
// (0 is the singular) and the locale they were found in.
type PluralForms struct {
	Forms  map[int]string
	Locale locale.ID
}

// Option configures a Translator.
type Option func(*Translator)

// WithStrictMissingKeys enables logging and visible wrapping of missing translations.
func WithStrictMissingKeys(strict bool) Option {
	return func(t *Translator) { t.strict = strict }
}

// WithOriginalLocale sets the locale the phrases are written in. It is reported for
// untranslated plural forms, and a Translator for it never treats a key as missing.
// It defaults to [locale.BaseLocale].
func WithOriginalLocale(id locale.ID) Option {
	return func(t *Translator) { t.originalLocale = id }
}

// Translator resolves phrases for one locale, consulting its fallback chain in order.
// It never modifies the catalog and holds no state across calls apart from the
// deduplication of missing-key logs.
type Translator struct {
	locale         locale.ID
	chain          []locale.ID
	catalog        Catalog
	originalLocale locale.ID
	strict         bool

	// missing deduplicates WARN logs for missing keys in strict mode.
	missing sync.Map
	log     zerolog.Logger
}

// NewTranslator returns a Translator for id that falls back to fallbacks, in order.
// The fallbacks of the fallbacks are not consulted.
func NewTranslator(id locale.ID, fallbacks []locale.ID, catalog Catalog, opts ...Option) *Translator {
	chain := make([]locale.ID, 0, len(fallbacks)+1)
	chain = append(chain, id)
	chain = append(chain, fallbacks...)

	t := &Translator{
		locale:         id,
		chain:          chain,
		catalog:        catalog,
		originalLocale: locale.BaseLocale,
		log: log.With().
			Str("sys", "i18n").
			Str("locale", string(id)).
			Logger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	// Phrases already are the text of the original locale.
	if t.locale == t.originalLocale {
		t.strict = false
	}

	return t
}

// Locale returns the locale this Translator was created for.
func (t *Translator) Locale() locale.ID {
	return t.locale
}

// Translate returns the translation of phrase, or phrase itself if no locale in the
// chain translates it. Placeholders with a value in params are substituted.
func (t *Translator) Translate(phrase string, params map[string]string) string {
	return t.lookup(phrase, phrase, params)
}

// TranslateWithContext is like Translate but disambiguates phrase with context.
func (t *Translator) TranslateWithContext(phrase, context string, params map[string]string) string {
	return t.lookup(contextKey(phrase, context), phrase, params)
}

// TranslatePlural returns every plural form of phrase.
//
// The first locale of the chain that has any "<phrase>_<n>" or "<phrase>_plural" key
// supplies all forms; forms are never mixed across locales. The "plural" suffix maps to
// index 1. Without any such key the untranslated phrase and pluralForm are returned
// with the original locale.
func (t *Translator) TranslatePlural(phrase, pluralForm string) PluralForms {
	return t.plural(phrase, phrase, pluralForm)
}

// TranslatePluralWithContext is like TranslatePlural for a contextualised phrase.
func (t *Translator) TranslatePluralWithContext(phrase, context, pluralForm string) PluralForms {
	return t.plural(contextKey(phrase, context), phrase, pluralForm)
}

func (t *Translator) lookup(key, phrase string, params map[string]string) string {
	for _, id := range t.chain {
		if s, ok := t.catalog[id][key]; ok {
			return Interpolate(s, params)
		}
	}

	if t.strict {
		t.logMissingOnce(key)

		return "⟦" + Interpolate(phrase, params) + "⟧"
	}

	return Interpolate(phrase, params)
}

func (t *Translator) plural(key, phrase, pluralForm string) PluralForms {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(key) + `_([0-9]+|` + pluralSuffix + `)$`)

	for _, id := range t.chain {
		msgs := t.catalog[id]
		forms := make(map[int]string)
		fromKeyword := ""
		found := false

		for k, s := range msgs {
			m := pattern.FindStringSubmatch(k)
			if m == nil {
				continue
			}

			found = true

			if m[1] == pluralSuffix {
				fromKeyword = s

				continue
			}

			idx, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}

			forms[idx] = s
		}

		if !found {
			continue
		}

		// An explicit index wins over the keyword for the same slot.
		if _, ok := forms[1]; !ok && fromKeyword != "" {
			forms[1] = fromKeyword
		}

		if _, ok := forms[0]; !ok {
			if s, ok := msgs[key]; ok {
				forms[0] = s
			} else {
				forms[0] = phrase
			}
		}

		return PluralForms{Forms: forms, Locale: id}
	}

	if t.strict {
		t.logMissingOnce(key)
	}

	return PluralForms{
		Forms:  map[int]string{0: phrase, 1: pluralForm},
		Locale: t.originalLocale,
	}
}

// Interpolate replaces [[name]] placeholders that have a value in params.
func Interpolate(s string, params map[string]string) string {
	if len(params) == 0 {
		return s
	}

	return placeholderRegexp.ReplaceAllStringFunc(s, func(token string) string {
		name := placeholderRegexp.FindStringSubmatch(token)[1]
		if v, ok := params[name]; ok {
			return v
		}

		return token
	})
}

func contextKey(phrase, context string) string {
	if context == "" {
		return phrase
	}

	return phrase + "_" + context
}

// Placeholders returns the names of the [[name]] placeholders in phrase, in order of
// first appearance.
func Placeholders(phrase string) []string {
	var names []string

	seen := make(map[string]struct{})

	for _, m := range placeholderRegexp.FindAllStringSubmatch(phrase, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}

		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}

	return names
}
