// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package directive

import (
	"strings"
	"testing"
	"text/template/parse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/i18n"
	"codeberg.org/pixivfe/pagesmith/locale"
)

// stubTranslator upper-cases phrases and records the calls it receives.
type stubTranslator struct {
	calls []string
}

func (s *stubTranslator) Translate(phrase string, _ map[string]string) string {
	s.calls = append(s.calls, "Translate:"+phrase)

	return strings.ToUpper(phrase)
}

func (s *stubTranslator) TranslateWithContext(phrase, context string, _ map[string]string) string {
	s.calls = append(s.calls, "TranslateWithContext:"+phrase+":"+context)

	return strings.ToUpper(context + " " + phrase)
}

func (s *stubTranslator) TranslatePlural(phrase, pluralForm string) i18n.PluralForms {
	s.calls = append(s.calls, "TranslatePlural:"+phrase)

	return i18n.PluralForms{
		Forms:  map[int]string{0: strings.ToUpper(phrase), 1: strings.ToUpper(pluralForm)},
		Locale: locale.ID("fr"),
	}
}

func (s *stubTranslator) TranslatePluralWithContext(phrase, context, pluralForm string) i18n.PluralForms {
	s.calls = append(s.calls, "TranslatePluralWithContext:"+phrase+":"+context)

	return s.TranslatePlural(phrase, pluralForm)
}

func parseOne(t *testing.T, src string) Invocation {
	t.Helper()

	matches, err := Parse("test.html", src, DefaultDirectives())
	require.NoError(t, err)
	require.Len(t, matches, 1)

	return matches[0].Invocation
}

func TestTranspileStatic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"markup", `{{translate "phrase" "Search"}}`, "SEARCH"},
		{"markup escapes html", `{{translate "phrase" "<b>a & b</b>"}}`, "&lt;B&gt;A &amp; B&lt;/B&gt;"},
		{"markup without escaping", `{{translate "phrase" "<b>bold</b>" "escapeHTML" false}}`, "<B>BOLD</B>"},
		{"markup with context", `{{translate "phrase" "Open" "context" "verb"}}`, "VERB OPEN"},
		{"code", `{{translateJS "phrase" "Close"}}`, "'CLOSE'"},
		{"code quotes", `{{translateJS "phrase" "it's a \\ test"}}`, `'IT\'S A \\ TEST'`},
		{"code ignores escapeHTML", `{{translateJS "phrase" "<x>" "escapeHTML" true}}`, "'<X>'"},
		{"template delimiters", `{{translate "phrase" "a {{b}} c"}}`, `A {{"{{"}}B}} C`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Transpile(parseOne(t, tt.src), &stubTranslator{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranspileRuntimeMarkup(t *testing.T) {
	t.Parallel()

	got, err := Transpile(parseOne(t, `{{translate "phrase" "Hello [[name]]" "name" .user.name "site" "Pagesmith"}}`), &stubTranslator{})
	require.NoError(t, err)
	assert.Equal(t, `{{processTranslation "HELLO [[NAME]]" (dict "name" .user.name "site" "Pagesmith")}}`, got)

	assertParses(t, got)

	got, err = Transpile(parseOne(t, `{{translate "phrase" "<b>[[n]]</b>" "n" 3 "escapeHTML" false}}`), &stubTranslator{})
	require.NoError(t, err)
	assert.Equal(t, `{{processTranslation "<B>[[N]]</B>" (dict "n" 3) | rawHTML}}`, got)

	assertParses(t, got)
}

func TestTranspileRuntimePlural(t *testing.T) {
	t.Parallel()

	tr := &stubTranslator{}

	got, err := Transpile(parseOne(t, `{{translate "phrase" "[[count]] article" "pluralForm" "[[count]] articles" "count" .n}}`), tr)
	require.NoError(t, err)
	assert.Equal(t,
		`{{processTranslation (dict "0" "[[COUNT]] ARTICLE" "1" "[[COUNT]] ARTICLES" "locale" "fr") (dict "count" .n) .n}}`,
		got)
	assert.Equal(t, []string{"TranslatePlural:[[count]] article"}, tr.calls)

	assertParses(t, got)
}

func TestTranspileRuntimePluralWithContext(t *testing.T) {
	t.Parallel()

	tr := &stubTranslator{}

	_, err := Transpile(parseOne(t, `{{translate "phrase" "Box" "pluralForm" "Boxes" "context" "menu" "count" 2}}`), tr)
	require.NoError(t, err)
	assert.Equal(t, "TranslatePluralWithContext:Box:menu", tr.calls[0])
}

func TestTranspilePluralWithoutCount(t *testing.T) {
	t.Parallel()

	_, err := Transpile(parseOne(t, `{{translate "phrase" "Box" "pluralForm" "Boxes"}}`), &stubTranslator{})
	require.Error(t, err)
	assert.True(t, fault.IsUser(err))
}

func TestTranspileRuntimeCode(t *testing.T) {
	t.Parallel()

	got, err := Transpile(parseOne(t, `{{translateJS "phrase" "Hi [[name]]" "name" .user.name}}`), &stubTranslator{})
	require.NoError(t, err)
	assert.Equal(t, `processTranslation("HI [[NAME]]", {name:user.name})`, got)

	got, err = Transpile(parseOne(t, `{{translateJS "phrase" "File" "pluralForm" "Files" "count" .n}}`), &stubTranslator{})
	require.NoError(t, err)
	assert.Equal(t, `processTranslation({"0":"FILE","1":"FILES","locale":"fr"}, {count:n}, n)`, got)
}

func TestRewrite(t *testing.T) {
	t.Parallel()

	src := "<title>{{translate \"phrase\" \"Home\"}}</title>\n" +
		"<h1>{{translate \"phrase\" \"Home\"}}</h1>\n" +
		"<p>{{.body}}</p>\n" +
		"<script>alert({{translateJS \"phrase\" \"Bye\"}})</script>"

	out, err := RewriteSource("page.html", src, DefaultDirectives(), &stubTranslator{})
	require.NoError(t, err)
	assert.Equal(t, "<title>HOME</title>\n<h1>HOME</h1>\n<p>{{.body}}</p>\n<script>alert('BYE')</script>", out)

	left, err := Parse("page.html", out, DefaultDirectives())
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRewriteTrimMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "left",
			src:  "<h1>\n  {{- translate \"phrase\" \"Home\"}}\n</h1>",
			want: "<h1>HOME\n</h1>",
		},
		{
			name: "right",
			src:  "<h1>\n  {{translate \"phrase\" \"Home\" -}}\n\t</h1>",
			want: "<h1>\n  HOME</h1>",
		},
		{
			name: "both with runtime call",
			src:  "<p> {{- translate \"phrase\" \"Hi [[n]]\" \"n\" .n -}} </p>",
			want: "<p>{{processTranslation \"HI [[N]]\" (dict \"n\" .n)}}</p>",
		},
		{
			name: "minus without space is not a marker",
			src:  "<p> {{translate \"phrase\" \"Home\"}} </p>",
			want: "<p> HOME </p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := RewriteSource("page.html", tt.src, DefaultDirectives(), &stubTranslator{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestMatchTrimMarkers(t *testing.T) {
	t.Parallel()

	assert.True(t, Match{Text: `{{- translate "phrase" "a"}}`}.TrimsLeft())
	assert.False(t, Match{Text: `{{- translate "phrase" "a"}}`}.TrimsRight())
	assert.True(t, Match{Text: `{{translate "phrase" "a" -}}`}.TrimsRight())
	assert.False(t, Match{Text: `{{translate "phrase" "a"}}`}.TrimsLeft())
}

func TestRewriteSourceErrors(t *testing.T) {
	t.Parallel()

	src := `{{if .x}}`

	out, err := RewriteSource("broken.html", src, DefaultDirectives(), &stubTranslator{})
	require.ErrorIs(t, err, ErrUnparseable)
	assert.Equal(t, src, out)

	src = `{{translate "phrase" "a" "pluralForm" "b"}}`

	out, err = RewriteSource("plural.html", src, DefaultDirectives(), &stubTranslator{})
	require.Error(t, err)
	assert.True(t, fault.IsUser(err))
	assert.Equal(t, src, out)
}

func TestRewriteRejectsForeignMatches(t *testing.T) {
	t.Parallel()

	matches, err := Parse("a", `{{translate "phrase" "A"}}`, DefaultDirectives())
	require.NoError(t, err)

	_, err = Rewrite(`{{translate "phrase" "B"}}`, matches, &stubTranslator{})
	require.Error(t, err)
	assert.True(t, fault.IsSystem(err))
}

func assertParses(t *testing.T, src string) {
	t.Helper()

	tree := parse.New("check")
	tree.Mode = parse.SkipFuncCheck

	_, err := tree.Parse(src, "", "", map[string]*parse.Tree{})
	assert.NoError(t, err)
}
