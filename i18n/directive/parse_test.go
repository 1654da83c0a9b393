// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package directive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/pagesmith/core/fault"
)

func TestParse(t *testing.T) {
	t.Parallel()

	src := "<h1>{{translate \"phrase\" \"Welcome\"}}</h1>\n" +
		"<p>{{ translate \"phrase\" \"Hello [[name]]\" \"name\" .user.name }}</p>\n" +
		"<script>var s = {{translateJS \"phrase\" \"Close\" \"context\" \"dialog\"}};</script>\n"

	matches, err := Parse("index.html", src, DefaultDirectives())
	require.NoError(t, err)
	require.Len(t, matches, 3)

	first := matches[0]
	assert.Equal(t, `{{translate "phrase" "Welcome"}}`, first.Text)
	assert.Equal(t, Markup, first.Invocation.Kind)
	assert.Equal(t, "Welcome", first.Invocation.Phrase)
	assert.True(t, first.Invocation.EscapeHTML)
	assert.Equal(t, 1, first.Start.Line)
	assert.Equal(t, 5, first.Start.Column)
	assert.Equal(t, src[first.Start.Offset:first.End.Offset], first.Text)

	second := matches[1]
	assert.Equal(t, `{{ translate "phrase" "Hello [[name]]" "name" .user.name }}`, second.Text)
	assert.Equal(t, map[string]string{"name": ".user.name"}, second.Invocation.Params)
	assert.Equal(t, 2, second.Invocation.Line)
	assert.Equal(t, 4, second.Invocation.Column)
	assert.False(t, second.Invocation.CanBeTranslatedStatically())

	third := matches[2]
	assert.Equal(t, Code, third.Invocation.Kind)
	assert.Equal(t, "translateJS", third.Invocation.Directive)
	assert.Equal(t, "dialog", third.Invocation.Context)
	assert.True(t, third.Invocation.CanBeTranslatedStatically())
}

func TestParseNestedBlocks(t *testing.T) {
	t.Parallel()

	src := `{{define "nav"}}<a>{{translate "phrase" "Home"}}</a>{{end}}` +
		`{{if .ok}}{{translate "phrase" "Yes"}}{{else}}{{translate "phrase" "No"}}{{end}}` +
		`{{range .items}}{{translate "phrase" "Item"}}{{end}}` +
		`{{with .x}}{{translate "phrase" "With"}}{{end}}`

	matches, err := Parse("blocks.html", src, DefaultDirectives())
	require.NoError(t, err)

	phrases := make([]string, 0, len(matches))
	for _, m := range matches {
		phrases = append(phrases, m.Invocation.Phrase)
	}

	assert.Equal(t, []string{"Home", "Yes", "No", "Item", "With"}, phrases)
}

func TestParseParameterValues(t *testing.T) {
	t.Parallel()

	src := `{{translate "phrase" "p" "a" "text" "b" 3 "c" true "d" nil "e" null "f" undefined "g" $ "h" . "escapeHTML" false}}`

	matches, err := Parse("values.html", src, DefaultDirectives())
	require.NoError(t, err)
	require.Len(t, matches, 1)

	inv := matches[0].Invocation
	assert.False(t, inv.EscapeHTML)
	assert.Equal(t, map[string]string{
		"a": "text",
		"b": "3",
		"c": "true",
		"d": "null",
		"e": "null",
		"f": "undefined",
		"g": "$",
		"h": ".",
	}, inv.Params)
	assert.Equal(t, []string{"phrase", "a", "b", "c", "d", "e", "f", "g", "h", "escapeHTML"}, inv.Keys())
}

func TestParseEscapeHTMLString(t *testing.T) {
	t.Parallel()

	matches, err := Parse("t", `{{translate "phrase" "<b>" "escapeHTML" "false"}}{{translate "phrase" "<i>" "escapeHTML" "no"}}`, DefaultDirectives())
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.False(t, matches[0].Invocation.EscapeHTML)
	assert.True(t, matches[1].Invocation.EscapeHTML)
	assert.True(t, matches[0].Invocation.CanBeTranslatedStatically())
}

func TestParseCustomDirectives(t *testing.T) {
	t.Parallel()

	ds := Directives{Markup: []string{"t"}, Code: []string{"tjs"}}

	matches, err := Parse("t", `{{t "phrase" "A"}}{{translate "phrase" "B"}}{{tjs "phrase" "C"}}`, ds)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, Markup, matches[0].Invocation.Kind)
	assert.Equal(t, Code, matches[1].Invocation.Kind)
}

func TestParseClosingDelimiterInString(t *testing.T) {
	t.Parallel()

	src := `x{{translate "phrase" "a }} b"}}y`

	matches, err := Parse("t", src, DefaultDirectives())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `{{translate "phrase" "a }} b"}}`, matches[0].Text)
	assert.Equal(t, "a }} b", matches[0].Invocation.Phrase)
}

func TestParseTrimMarkers(t *testing.T) {
	t.Parallel()

	matches, err := Parse("t", "a  {{- translate \"phrase\" \"X\" -}}  b", DefaultDirectives())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `{{- translate "phrase" "X" -}}`, matches[0].Text)
}

func TestParseUnparseable(t *testing.T) {
	t.Parallel()

	_, err := Parse("broken.html", `{{if .x}}never closed`, DefaultDirectives())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.False(t, fault.IsUser(err))
}

func TestParseUserErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"odd argument count", `{{translate "phrase"}}`},
		{"non-string key", `{{translate "phrase" "x" .key "y"}}`},
		{"missing phrase", `{{translate "context" "menu"}}`},
		{"phrase not a literal", `{{translate "phrase" .title}}`},
		{"nested call", `{{translate "phrase" "x" "n" (len .items)}}`},
		{"directive as argument", `{{print (translate "phrase" "x")}}`},
		{"directive in pipeline", `{{translate "phrase" "x" | print}}`},
		{"directive piped into", `{{"x" | translate}}`},
		{"directive in condition", `{{if (translate "phrase" "x")}}y{{end}}`},
		{"assigned directive", `{{$x := translate "phrase" "x"}}`},
		{"repeated key", `{{translate "phrase" "x" "phrase" "y"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse("bad.html", tt.src, DefaultDirectives())
			require.Error(t, err)
			assert.True(t, fault.IsUser(err), "want user error, got %v", err)
			assert.False(t, errors.Is(err, ErrUnparseable))
		})
	}
}

func TestCanBeTranslatedStatically(t *testing.T) {
	t.Parallel()

	tests := []struct {
		keys []string
		want bool
	}{
		{[]string{"phrase"}, true},
		{[]string{"phrase", "context"}, true},
		{[]string{"phrase", "escapeHTML"}, true},
		{[]string{"phrase", "context", "escapeHTML"}, true},
		{[]string{"phrase", "pluralForm"}, false},
		{[]string{"phrase", "name"}, false},
		{[]string{"phrase", "count"}, false},
	}

	for _, tt := range tests {
		inv := Invocation{keys: tt.keys}
		assert.Equal(t, tt.want, inv.CanBeTranslatedStatically(), "%v", tt.keys)
	}
}

func TestDirectivesKindOf(t *testing.T) {
	t.Parallel()

	ds := DefaultDirectives()

	kind, ok := ds.KindOf("translate")
	assert.True(t, ok)
	assert.Equal(t, Markup, kind)

	kind, ok = ds.KindOf("translateJS")
	assert.True(t, ok)
	assert.Equal(t, Code, kind)

	_, ok = ds.KindOf("print")
	assert.False(t, ok)
}
