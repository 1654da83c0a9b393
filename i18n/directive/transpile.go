// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package directive

import (
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/i18n"
)

// Translator resolves phrases for a single locale. [*i18n.Translator] implements it.
type Translator interface {
	Translate(phrase string, params map[string]string) string
	TranslateWithContext(phrase, context string, params map[string]string) string
	TranslatePlural(phrase, pluralForm string) i18n.PluralForms
	TranslatePluralWithContext(phrase, context, pluralForm string) i18n.PluralForms
}

var _ Translator = (*i18n.Translator)(nil)

// Transpile returns the replacement text for inv.
//
// Static markup is HTML-escaped unless escapeHTML is false; static code is a quoted
// JavaScript string. Anything else becomes a call to [RuntimeFunc].
func Transpile(inv Invocation, tr Translator) (string, error) {
	var (
		out string
		err error
	)

	switch {
	case inv.IsPlural():
		var forms i18n.PluralForms
		if inv.Context != "" {
			forms = tr.TranslatePluralWithContext(inv.Phrase, inv.Context, inv.PluralForm)
		} else {
			forms = tr.TranslatePlural(inv.Phrase, inv.PluralForm)
		}

		out, err = runtime(inv, "", &forms)
	default:
		var s string
		if inv.Context != "" {
			s = tr.TranslateWithContext(inv.Phrase, inv.Context, nil)
		} else {
			s = tr.Translate(inv.Phrase, nil)
		}

		if inv.CanBeTranslatedStatically() {
			out = static(inv, s)
		} else {
			out, err = runtime(inv, s, nil)
		}
	}

	if err != nil {
		return "", err
	}

	return escapeDelims(out), nil
}

func static(inv Invocation, s string) string {
	if inv.Kind == Code {
		return quoteJS(s)
	}

	if inv.EscapeHTML {
		return template.HTMLEscapeString(s)
	}

	return s
}

func runtime(inv Invocation, s string, forms *i18n.PluralForms) (string, error) {
	if forms != nil && !inv.Has(ParamCount) {
		return "", fault.User("%d:%d: plural directive for %q needs a %q parameter", inv.Line, inv.Column, inv.Phrase, ParamCount)
	}

	if inv.Kind == Code {
		return runtimeCode(inv, s, forms)
	}

	return runtimeMarkup(inv, s, forms), nil
}

// runtimeMarkup emits {{processTranslation <translation> (dict ...) [count]}}.
func runtimeMarkup(inv Invocation, s string, forms *i18n.PluralForms) string {
	var b strings.Builder

	b.WriteString("{{")
	b.WriteString(RuntimeFunc)
	b.WriteByte(' ')

	if forms != nil {
		b.WriteString("(" + DictFunc)

		for _, i := range formIndices(forms) {
			fmt.Fprintf(&b, " %q %s", strconv.Itoa(i), strconv.Quote(forms.Forms[i]))
		}

		fmt.Fprintf(&b, " %q %s)", "locale", strconv.Quote(string(forms.Locale)))
	} else {
		b.WriteString(strconv.Quote(s))
	}

	b.WriteString(" (" + DictFunc)

	for _, k := range inv.paramNames() {
		fmt.Fprintf(&b, " %s %s", strconv.Quote(k), inv.exprs[k])
	}

	b.WriteByte(')')

	if forms != nil {
		b.WriteByte(' ')
		b.WriteString(inv.exprs[ParamCount])
	}

	if !inv.EscapeHTML {
		b.WriteString(" | " + RawHTMLFunc)
	}

	b.WriteString("}}")

	return b.String()
}

// runtimeCode emits processTranslation(<translation>, <params>[, count]). Parameter
// values are written unquoted so that they evaluate as script expressions.
func runtimeCode(inv Invocation, s string, forms *i18n.PluralForms) (string, error) {
	var (
		translation []byte
		err         error
	)

	if forms != nil {
		obj := make(map[string]string, len(forms.Forms)+1)
		for i, f := range forms.Forms {
			obj[strconv.Itoa(i)] = f
		}

		obj["locale"] = string(forms.Locale)
		translation, err = json.Marshal(obj)
	} else {
		translation, err = json.Marshal(s)
	}

	if err != nil {
		return "", fault.System(err, "encoding translation for %q", inv.Phrase)
	}

	params := make(map[string]string, len(inv.Params))
	for k, v := range inv.Params {
		params[k] = scriptValue(v)
	}

	bag, err := json.Marshal(params)
	if err != nil {
		return "", fault.System(err, "encoding parameters for %q", inv.Phrase)
	}

	out := RuntimeFunc + "(" + string(translation) + ", " + strings.ReplaceAll(string(bag), `"`, "")
	if forms != nil {
		out += ", " + params[ParamCount]
	}

	return out + ")", nil
}

// scriptValue turns a template field reference such as .user.name into the script
// expression user.name.
func scriptValue(v string) string {
	if len(v) > 1 && v[0] == '.' {
		return v[1:]
	}

	return v
}

func formIndices(forms *i18n.PluralForms) []int {
	idx := make([]int, 0, len(forms.Forms))
	for i := range forms.Forms {
		idx = append(idx, i)
	}

	sort.Ints(idx)

	return idx
}

var jsReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

func quoteJS(s string) string {
	return "'" + jsReplacer.Replace(s) + "'"
}

// escapeDelims keeps generated text from opening a new action when the rewritten
// source is parsed again.
func escapeDelims(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var b strings.Builder

	rest := s
	for rest != "" {
		// Actions emitted by runtimeMarkup are kept intact.
		if strings.HasPrefix(rest, "{{"+RuntimeFunc+" ") {
			end := actionEnd(rest, 2)
			if end > 0 {
				b.WriteString(rest[:end])
				rest = rest[end:]

				continue
			}
		}

		i := strings.Index(rest, "{{")
		if i < 0 {
			b.WriteString(rest)

			break
		}

		if i > 0 {
			b.WriteString(rest[:i])
			rest = rest[i:]

			continue
		}

		b.WriteString(`{{"{{"}}`)
		rest = rest[2:]
	}

	return b.String()
}

// trimSpace is the white space removed next to a trim marker.
const trimSpace = " \t\r\n"

// Rewrite replaces every match in src with its transpiled text. Matches must come from
// [Parse] on the same src. The white space a "{{- " or " -}}" marker of a match would have
// trimmed is removed along with it.
func Rewrite(src string, matches []Match, tr Translator) (string, error) {
	var b strings.Builder

	b.Grow(len(src))

	last := 0

	for _, m := range matches {
		if m.Start.Offset < last || m.End.Offset > len(src) || src[m.Start.Offset:m.End.Offset] != m.Text {
			return "", fault.System(nil, "match %q does not belong to the source", m.Text)
		}

		repl, err := Transpile(m.Invocation, tr)
		if err != nil {
			return "", err
		}

		text := src[last:m.Start.Offset]
		if m.TrimsLeft() {
			text = strings.TrimRight(text, trimSpace)
		}

		b.WriteString(text)
		b.WriteString(repl)

		last = m.End.Offset
		if m.TrimsRight() {
			last = len(src) - len(strings.TrimLeft(src[last:], trimSpace))
		}
	}

	b.WriteString(src[last:])

	return b.String(), nil
}

// RewriteSource parses src and rewrites every directive in it. On error src is returned
// unchanged alongside the error.
func RewriteSource(name, src string, ds Directives, tr Translator) (string, error) {
	matches, err := Parse(name, src, ds)
	if err != nil {
		return src, err
	}

	out, err := Rewrite(src, matches, tr)
	if err != nil {
		return src, err
	}

	return out, nil
}
