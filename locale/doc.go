// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package locale canonicalises locale identifiers and holds the site's localization
configuration: the default locale, per-locale fallback chains, and per-locale metadata
such as the translation file, URL pattern override, and template parameters.

# Identifiers

A canonical [ID] has the form language[-Modifier]_REGION:

	en          language only
	pt_BR       language and region
	zh-Hans     language and modifier (only for zh with hans/hant)
	zh-Hans_CH  language, modifier and region

Input may use either '-' or '_' as separator and any letter case.

# Fallbacks

Fallback chains are explicit and never recursive: the fallbacks of a fallback locale are
not consulted.
*/
package locale
