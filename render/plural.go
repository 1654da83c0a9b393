// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package render

import (
	"sync"

	"github.com/leonelquinteros/gotext/plurals"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/locale"
)

// defaultPluralForms is the gettext rule for languages with one singular form.
const defaultPluralForms = "nplurals=2; plural=(n != 1);"

// pluralForms holds the gettext Plural-Forms rule per language.
//
// TODO: read the rule from each catalog's Plural-Forms header instead.
var pluralForms = map[string]string{
	"fr": "nplurals=2; plural=(n > 1);",
	"id": "nplurals=1; plural=0;",
	"ja": "nplurals=1; plural=0;",
	"ko": "nplurals=1; plural=0;",
	"pl": "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
	"pt": "nplurals=2; plural=(n > 1);",
	"ru": "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
	"uk": "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
	"vi": "nplurals=1; plural=0;",
	"zh": "nplurals=1; plural=0;",
}

var (
	compiledMu sync.Mutex
	compiled   = make(map[string]plurals.Expression)
)

// PluralIndex returns the index of the plural form used for n in locale id.
func PluralIndex(id locale.ID, n int) int {
	if n < 0 {
		n = -n
	}

	rule, ok := pluralForms[id.Language()]
	if !ok {
		rule = defaultPluralForms
	}

	expr := expression(rule)
	if expr == nil {
		if n == 1 {
			return 0
		}

		return 1
	}

	return expr.Eval(uint32(n))
}

func expression(rule string) plurals.Expression {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if expr, ok := compiled[rule]; ok {
		return expr
	}

	expr, err := plurals.Compile(rule)
	if err != nil {
		log.Error().Err(err).Str("rule", rule).Msg("Invalid plural rule")
	}

	compiled[rule] = expr

	return expr
}
