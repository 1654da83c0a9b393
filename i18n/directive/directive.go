// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package directive finds translation directives in template source, resolves them with a
Translator, and rewrites the source.

A directive is a standalone template action whose command is a recognised directive name
followed by alternating string keys and values:

	{{translate "phrase" "Search" "context" "verb"}}
	{{translate "phrase" "Hello [[name]]" "name" .user.name}}
	{{translate "phrase" "[[count]] item" "pluralForm" "[[count]] items" "count" .total}}
	var label = {{translateJS "phrase" "Close"}};

Markup directives produce text for HTML; code directives produce JavaScript expressions.
A directive that only sets phrase, context and escapeHTML is resolved when the template
is processed. Any other parameter defers resolution to the runtime function
[RuntimeFunc], which receives the translation (or every plural form), the interpolation
values and, for plurals, the count.

Source is parsed with the template engine's own parser (text/template/parse), so
directives are located by syntax, never by pattern matching.
*/
package directive

import (
	"slices"
	"sort"
	"strings"
)

// Names of the runtime template functions emitted for deferred translations.
const (
	RuntimeFunc = "processTranslation"
	DictFunc    = "dict"
	RawHTMLFunc = "rawHTML"
)

// Parameter names with a fixed meaning. Every other parameter is an interpolation value.
const (
	ParamPhrase     = "phrase"
	ParamPluralForm = "pluralForm"
	ParamContext    = "context"
	ParamEscapeHTML = "escapeHTML"
	ParamCount      = "count"
)

// Kind is the output context of a directive.
type Kind int

// Directive kinds.
const (
	Markup Kind = iota + 1
	Code
)

func (k Kind) String() string {
	switch k {
	case Markup:
		return "markup"
	case Code:
		return "code"
	default:
		return "unknown"
	}
}

// Directives lists the directive names recognised for each kind.
type Directives struct {
	Markup []string `yaml:"markup"`
	Code   []string `yaml:"code"`
}

// DefaultDirectives returns the built-in directive names.
func DefaultDirectives() Directives {
	return Directives{
		Markup: []string{"translate"},
		Code:   []string{"translateJS"},
	}
}

// KindOf returns the kind of the directive called name.
func (d Directives) KindOf(name string) (Kind, bool) {
	switch {
	case slices.Contains(d.Markup, name):
		return Markup, true
	case slices.Contains(d.Code, name):
		return Code, true
	default:
		return 0, false
	}
}

// Position is a location in template source. Line and Column are 1-based; Column
// counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Invocation is a parsed translation directive.
type Invocation struct {
	Kind       Kind
	Directive  string
	Phrase     string
	Context    string
	PluralForm string
	EscapeHTML bool

	// Params holds the interpolation values, stringified. Literal nil, null and
	// undefined become "null" and "undefined".
	Params map[string]string

	Line   int
	Column int

	keys  []string          // every provided parameter key, in source order
	exprs map[string]string // template syntax of each interpolation value
}

// Keys returns every parameter key provided to the directive, in source order.
func (inv Invocation) Keys() []string {
	return slices.Clone(inv.keys)
}

// Has reports whether the directive was given the parameter key.
func (inv Invocation) Has(key string) bool {
	return slices.Contains(inv.keys, key)
}

// IsPlural reports whether the directive requests plural forms.
func (inv Invocation) IsPlural() bool {
	return inv.Has(ParamPluralForm)
}

// CanBeTranslatedStatically reports whether every provided key is phrase, context or
// escapeHTML, i.e. no plural form and no interpolation value.
func (inv Invocation) CanBeTranslatedStatically() bool {
	for _, k := range inv.keys {
		switch k {
		case ParamPhrase, ParamContext, ParamEscapeHTML:
		default:
			return false
		}
	}

	return true
}

// paramNames returns the interpolation parameter names in sorted order.
func (inv Invocation) paramNames() []string {
	names := make([]string, 0, len(inv.Params))
	for k := range inv.Params {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// Match is an invocation together with the exact source text it was parsed from.
type Match struct {
	Invocation Invocation
	Text       string
	Start      Position
	End        Position
}

// TrimsLeft reports whether the action starts with a "{{- " trim marker.
func (m Match) TrimsLeft() bool {
	return len(m.Text) > 3 && strings.HasPrefix(m.Text, "{{-") && isTrimSpace(m.Text[3])
}

// TrimsRight reports whether the action ends with a " -}}" trim marker.
func (m Match) TrimsRight() bool {
	n := len(m.Text)

	return n > 3 && strings.HasSuffix(m.Text, "-}}") && isTrimSpace(m.Text[n-4])
}

func isTrimSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
