// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package merge computes the effective entity for every configured locale by layering
the default entity, the locale's fallbacks and the locale-specific entity.

Precedence, lowest to highest:

	default < last fallback < ... < first fallback < locale-specific

Fallback chains are not followed recursively.
*/
package merge

import (
	"slices"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/entity"
	"codeberg.org/pixivfe/pagesmith/locale"
)

// Resolve returns, per configured locale, the merged entities of set.
//
// A (name, locale) pair with no contributing layer at all is omitted. The entities of
// each locale are ordered by name.
func Resolve(set entity.Set, cfg *locale.Config) map[locale.ID][]entity.Entity {
	out := make(map[locale.ID][]entity.Entity)
	names := set.Names()

	for _, id := range cfg.Locales() {
		fallbacks := cfg.Fallbacks(id)

		for _, name := range names {
			e, ok := resolveOne(set, cfg, name, id, fallbacks)
			if !ok {
				log.Debug().
					Str("name", name).
					Str("locale", string(id)).
					Msg("No entity for locale")

				continue
			}

			out[id] = append(out[id], e)
		}
	}

	return out
}

func resolveOne(set entity.Set, cfg *locale.Config, name string, id locale.ID, fallbacks []locale.ID) (entity.Entity, bool) {
	var layers []entity.Entity

	if base, ok := baseEntity(set, cfg, name); ok {
		layers = append(layers, base)
	}

	// Reverse order, so that the first listed fallback is applied last.
	for _, f := range slices.Backward(fallbacks) {
		if e, ok := set.Get(name, f); ok {
			layers = append(layers, e)
		}
	}

	if specific, ok := set.Get(name, id); ok {
		layers = append(layers, specific)
	}

	if len(layers) == 0 {
		return entity.Entity{}, false
	}

	payloads := make([]entity.Payload, len(layers))
	for i, l := range layers {
		payloads[i] = l.Payload
	}

	top := layers[len(layers)-1]

	return entity.Entity{
		Kind:    top.Kind,
		Name:    name,
		Locale:  id,
		Path:    top.Path,
		Payload: Shallow(payloads...),
	}, true
}

// baseEntity returns the default-locale entity for name. Without locale configuration
// the locale-agnostic entity is the base; with configuration the default locale's entity
// is preferred and the locale-agnostic one stands in for it when absent.
func baseEntity(set entity.Set, cfg *locale.Config, name string) (entity.Entity, bool) {
	if !cfg.HasConfig() {
		return set.Get(name, locale.NoLocale)
	}

	if e, ok := set.Get(name, cfg.Default()); ok {
		return e, true
	}

	return set.Get(name, locale.NoLocale)
}

// Shallow merges payloads left to right. Later top-level keys win and nested values are
// replaced wholesale. Nil payloads are skipped. The inputs are never modified.
func Shallow(payloads ...entity.Payload) entity.Payload {
	out := make(entity.Payload)

	for _, p := range payloads {
		for k, v := range p {
			out[k] = v
		}
	}

	return out
}
