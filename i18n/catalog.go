// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"io/fs"
	"path"
	"strconv"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/locale"
)

// pluralSuffix is the key suffix of the second form of a two-form plural entry.
const pluralSuffix = "plural"

// Messages maps message keys to translated strings for one locale.
type Messages map[string]string

// Catalog holds the messages of every loaded locale.
type Catalog map[locale.ID]Messages

// LoadCatalog reads the translation file of every configured locale from dir in fsys.
//
// The default locale's file is optional since its phrases are the source text. A missing
// file for any other locale is a user error; any other read failure is a system error.
// Loading completes before the returned Catalog is used by any Translator.
func LoadCatalog(fsys fs.FS, dir string, cfg *locale.Config) (Catalog, error) {
	logger := log.With().Str("sys", "i18n").Logger()
	catalog := make(Catalog)

	for _, id := range cfg.Locales() {
		file := path.Join(dir, cfg.TranslationFile(id))

		if _, err := fs.Stat(fsys, file); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fault.System(err, "failed to stat translation file %s", file)
			}

			if id == cfg.Default() {
				logger.Debug().
					Str("locale", string(id)).
					Str("file", file).
					Msg("No translation file for default locale")

				continue
			}

			return nil, fault.UserWrap(err, "missing translation file %s for locale %q", file, id)
		}

		po := gotext.NewPoFS(fsys)
		po.ParseFile(file)

		catalog[id] = fromPo(po)

		logger.Info().
			Str("locale", string(id)).
			Str("file", file).
			Int("messages", len(catalog[id])).
			Msg("Loaded translations")
	}

	return catalog, nil
}

// ParsePO parses the contents of a .po file into Messages.
func ParsePO(data []byte) Messages {
	po := gotext.NewPo()
	po.Parse(data)

	return fromPo(po)
}

// fromPo flattens the translated entries of po into message keys.
// Untranslated entries are skipped so that lookups fall through to the next locale.
func fromPo(po *gotext.Po) Messages {
	domain := po.GetDomain()
	msgs := make(Messages)

	for _, tr := range domain.GetTranslations() {
		addTranslation(msgs, "", tr)
	}

	for ctx, trs := range domain.GetCtxTranslations() {
		for _, tr := range trs {
			addTranslation(msgs, ctx, tr)
		}
	}

	return msgs
}

func addTranslation(msgs Messages, ctx string, tr *gotext.Translation) {
	if tr == nil || tr.ID == "" {
		return
	}

	key := tr.ID
	if ctx != "" {
		key += "_" + ctx
	}

	set := func(k, v string) {
		if v != "" {
			msgs[k] = v
		}
	}

	if tr.PluralID == "" {
		set(key, tr.Trs[0])

		return
	}

	if len(tr.Trs) <= 2 {
		set(key, tr.Trs[0])
		set(key+"_"+pluralSuffix, tr.Trs[1])

		return
	}

	for i, s := range tr.Trs {
		set(key+"_"+strconv.Itoa(i), s)
	}
}
