// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark"
	"golang.org/x/text/message"

	"codeberg.org/pixivfe/pagesmith/i18n"
	"codeberg.org/pixivfe/pagesmith/i18n/directive"
	"codeberg.org/pixivfe/pagesmith/locale"
)

var (
	errDictArgs     = errors.New("dict needs an even number of arguments")
	errDictKey      = errors.New("dict keys must be strings")
	errTranslation  = errors.New("unsupported translation value")
	errNotNumber    = errors.New("value is not a number")
	errMissingForms = errors.New("translation has no forms")
)

// Funcs returns the template functions available to pages of locale id.
func Funcs(id locale.ID) template.FuncMap {
	printer := message.NewPrinter(id.Tag())

	return template.FuncMap{
		directive.RuntimeFunc: processTranslation,
		directive.DictFunc:    dict,
		directive.RawHTMLFunc: rawHTML,
		"markdown":            markdown,
		// Numbers decoded from page configs arrive as float64 or uint64.
		"number": func(v any) (string, error) {
			n, err := toInt(v)
			if err != nil {
				return "", err
			}

			return printer.Sprintf("%d", n), nil
		},
		"abbrev": func(v any) (string, error) {
			n, err := toInt(v)
			if err != nil {
				return "", err
			}

			return AbbrevInt(n), nil
		},
	}
}

// processTranslation resolves a translation deferred from template processing.
//
// translation is either the translated string or a plural form map as produced by
// the transpiler: "0".."N" keyed forms plus the "locale" whose rules select a form.
func processTranslation(translation any, params map[string]any, count ...any) (string, error) {
	var text string

	switch v := translation.(type) {
	case string:
		text = v
	case map[string]any:
		if len(count) == 0 {
			return "", fmt.Errorf("%w: plural forms without a count", errTranslation)
		}

		n, err := toInt(count[0])
		if err != nil {
			return "", err
		}

		text, err = selectForm(v, n)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %T", errTranslation, translation)
	}

	values := make(map[string]string, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}

		values[k] = fmt.Sprint(v)
	}

	return i18n.Interpolate(text, values), nil
}

func selectForm(forms map[string]any, n int) (string, error) {
	id, _ := forms["locale"].(string)

	idx := PluralIndex(locale.ID(id), n)

	// Partial plural sets fall back to the closest lower form.
	for ; idx >= 0; idx-- {
		if s, ok := forms[strconv.Itoa(idx)].(string); ok {
			return s, nil
		}
	}

	return "", errMissingForms
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case float32:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotNumber, n)
		}

		return i, nil
	default:
		return 0, fmt.Errorf("%w: %T", errNotNumber, v)
	}
}

// dict builds a map from alternating keys and values.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errDictArgs
	}

	m := make(map[string]any, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", errDictKey, kv[i])
		}

		m[k] = kv[i+1]
	}

	return m, nil
}

func rawHTML(s string) template.HTML {
	//nolint:gosec // output of a directive that opted out of escaping
	return template.HTML(s)
}

// markdown renders CommonMark source from a page's configuration.
func markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer

	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}

	//nolint:gosec // goldmark omits raw HTML unless configured otherwise
	return template.HTML(buf.String()), nil
}

// AbbrevInt formats n with a short suffix and one decimal place, e.g. 1.2k or 3M.
// Input of n <= 0 returns "0".
func AbbrevInt(n int) string {
	if n <= 0 {
		return "0"
	}

	units := []struct {
		size   int64
		suffix string
	}{
		{1_000_000_000_000, "T"},
		{1_000_000_000, "B"},
		{1_000_000, "M"},
		{1_000, "k"},
	}

	x := int64(n)

	for i, u := range units {
		if x < u.size {
			continue
		}

		// Tenths of the unit, rounded to nearest.
		tenths := (x*10 + u.size/2) / u.size

		// 999_950 rounds to 1000.0k, which reads better as 1M.
		if tenths >= 10_000 && i > 0 {
			u = units[i-1]
			tenths = (x*10 + u.size/2) / u.size
		}

		s := strconv.FormatInt(tenths/10, 10)
		if frac := tenths % 10; frac != 0 {
			s += "." + strconv.FormatInt(frac, 10)
		}

		return s + u.suffix
	}

	return strconv.FormatInt(x, 10)
}
