// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import "codeberg.org/pixivfe/pagesmith/locale"

// logMissingOnce logs a missing translation warning once per key for this Translator's
// locale.
func (t *Translator) logMissingOnce(key string) {
	if _, loaded := t.missing.LoadOrStore(key, struct{}{}); !loaded {
		t.log.Warn().
			Str("key", key).
			Strs("chain", chainStrings(t.chain)).
			Msg("Missing i18n translation")
	}
}

func chainStrings(chain []locale.ID) []string {
	out := make([]string, len(chain))
	for i, id := range chain {
		out[i] = string(id)
	}

	return out
}
