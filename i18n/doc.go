// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n loads GNU gettext .po catalogues and resolves phrases against them for a
single locale and its fallback chain.

# Catalogues

Each configured locale has one catalogue file, "<locale>.po" unless the locale
configuration names another translationFile. Entries are flattened into message keys:

	msgid "Search"                       -> Search
	msgctxt "verb" msgid "Search"        -> Search_verb
	msgid "Item" msgid_plural "Items"    -> Item, Item_plural
	(more than two forms)                -> Item_0, Item_1, Item_2, ...

# Translators

A [Translator] is created per locale for a single render pass and never mutates the
catalogue:

	tr := i18n.NewTranslator("fr_CA", []locale.ID{"fr"}, catalog)
	tr.Translate("Hello [[name]]", nil)      // "Bonjour [[name]]"
	tr.TranslatePlural("Item", "Items")      // {0: "Article", 1: "Articles", locale: fr}

Placeholders use double square brackets. They are substituted when a value is supplied
and left intact otherwise, so that they can be filled in at render time.

# Missing translations

Missing translations return the phrase unchanged. With [WithStrictMissingKeys], missing
lookups are logged once per locale+key and the returned text is visibly wrapped as "⟦...⟧".
*/
package i18n
