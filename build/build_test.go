// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package build

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/entity"
	"codeberg.org/pixivfe/pagesmith/i18n"
	"codeberg.org/pixivfe/pagesmith/i18n/directive"
	"codeberg.org/pixivfe/pagesmith/locale"
	"codeberg.org/pixivfe/pagesmith/pages"
	"codeberg.org/pixivfe/pagesmith/render"
)

const localeConfigYAML = `default: en
localeConfig:
  en: {}
  es: {}
  fr:
    fallback: [es]
`

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func po(lang string, pairs ...string) *fstest.MapFile {
	var b bytes.Buffer

	b.WriteString("msgid \"\"\nmsgstr \"\"\n\"Language: " + lang + "\\n\"\n")

	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString("\nmsgid \"" + pairs[i] + "\"\nmsgstr \"" + pairs[i+1] + "\"\n")
	}

	return &fstest.MapFile{Data: b.Bytes()}
}

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"config/locale_config.yaml":  file(localeConfigYAML),
		"config/global_config.json":  file(`{"site": "Example"}`),
		"config/index.yaml":          file("title: Home\n"),
		"config/index.fr.yaml":       file("title: Accueil\n"),
		"config/blog/first.yaml":     file("title: First\n"),
		"pages/index.html":           file(`<html lang="{{.localeTag}}"><h1>{{translate "phrase" "Welcome"}}</h1><p>{{translate "phrase" "Contact"}}</p><title>{{.config.title}}</title>{{template "footer" .}}</html>`),
		"pages/blog/first.html":      file(`<p>{{.config.title}} {{.relativePath}}</p>`),
		"partials/footer.html":       file(`<footer>{{.global_config.site}} {{.relativePath}}</footer>`),
		"translations/fr.po":         po("fr", "Welcome", "Bienvenue"),
		"translations/es.po":         po("es", "Contact", "Contacto"),
		"translations/.gitkeep":      file(""),
		"pages/.hidden/ignored.html": file("x"),
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	site, err := Load(siteFS(), DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, []locale.ID{"en", "es", "fr"}, site.Locales.Locales())
	assert.Equal(t, []string{"blog/first", "index"}, site.Configs.Names())
	assert.Equal(t, []string{"global_config"}, site.Globals.Names())
	assert.Equal(t, []string{"footer"}, site.Partials.Names())

	fr, ok := site.Configs.Get("index", "fr")
	require.True(t, ok)
	assert.Equal(t, entity.Payload{"title": "Accueil"}, fr.Payload)
	assert.Equal(t, "config/index.fr.yaml", fr.Path)

	tmpl, ok := site.Templates.Get("blog/first", locale.NoLocale)
	require.True(t, ok)
	assert.Equal(t, entity.PageTemplate, tmpl.Kind)
	assert.Equal(t, "pages/blog/first.html", tmpl.TemplatePath())
}

func TestLoadWithoutLocaleConfig(t *testing.T) {
	t.Parallel()

	site, err := Load(fstest.MapFS{
		"config/index.json": file(`{"title": "Home"}`),
		"pages/index.html":  file(`{{.config.title}}`),
	}, DefaultLayout())
	require.NoError(t, err)

	assert.False(t, site.Locales.HasConfig())
	assert.Equal(t, []locale.ID{"en"}, site.Locales.Locales())

	out, err := Generate(context.Background(), site, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "index.html", out[0].Path)
	assert.Equal(t, "Home", string(out[0].Content))
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"malformed json", fstest.MapFS{"config/index.json": file(`{"title":`)}},
		{"malformed locale config", fstest.MapFS{"config/locale_config.yaml": file("default: [")}},
		{"default locale without entry", fstest.MapFS{"config/locale_config.json": file(`{"default":"en","localeConfig":{"fr":{}}}`)}},
		{"duplicate entity", fstest.MapFS{
			"config/index.json": file(`{}`),
			"config/index.yaml": file("a: 1\n"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(tt.fsys, DefaultLayout())
			require.Error(t, err)
			assert.True(t, fault.IsUser(err), "want user error, got %v", err)
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	for _, parallel := range []bool{false, true} {
		site, err := Load(siteFS(), DefaultLayout())
		require.NoError(t, err)

		out, err := Generate(context.Background(), site, Options{Parallel: parallel})
		require.NoError(t, err)

		got := make(map[string]string, len(out))
		paths := make([]string, 0, len(out))

		for _, o := range out {
			got[o.Path] = string(o.Content)
			paths = append(paths, o.Path)
		}

		assert.Equal(t, []string{
			"blog/first.html", "index.html",
			"es/blog/first.html", "es/index.html",
			"fr/blog/first.html", "fr/index.html",
		}, paths)

		assert.Equal(t, `<html lang="en"><h1>Welcome</h1><p>Contact</p><title>Home</title><footer>Example .</footer></html>`, got["index.html"])
		assert.Equal(t, `<html lang="es"><h1>Welcome</h1><p>Contacto</p><title>Home</title><footer>Example ..</footer></html>`, got["es/index.html"])
		assert.Equal(t, `<html lang="fr"><h1>Bienvenue</h1><p>Contacto</p><title>Accueil</title><footer>Example ..</footer></html>`, got["fr/index.html"])
		assert.Equal(t, `<p>First ../..</p>`, got["fr/blog/first.html"])
	}
}

func TestGenerateStrictMissingKeys(t *testing.T) {
	t.Parallel()

	site, err := Load(siteFS(), DefaultLayout())
	require.NoError(t, err)

	out, err := Generate(context.Background(), site, Options{StrictMissingKeys: true})
	require.NoError(t, err)

	got := make(map[string]string, len(out))
	for _, o := range out {
		got[o.Path] = string(o.Content)
	}

	// The default locale has no catalog: its phrases are the source text.
	assert.Equal(t, `<html lang="en"><h1>Welcome</h1><p>Contact</p><title>Home</title><footer>Example .</footer></html>`, got["index.html"])
	assert.Equal(t, `<html lang="es"><h1>⟦Welcome⟧</h1><p>Contacto</p><title>Home</title><footer>Example ..</footer></html>`, got["es/index.html"])
	assert.Equal(t, `<html lang="fr"><h1>Bienvenue</h1><p>Contacto</p><title>Accueil</title><footer>Example ..</footer></html>`, got["fr/index.html"])
}

func TestGenerateDuplicateOutputPaths(t *testing.T) {
	t.Parallel()

	fsys := siteFS()
	fsys["config/locale_config.yaml"] = file(`default: en
localeConfig:
  en: {}
  es:
    urlOverride: "{pageName}.{pageExt}"
  fr:
    urlOverride: "{pageName}.{pageExt}"
`)

	site, err := Load(fsys, DefaultLayout())
	require.NoError(t, err)

	_, err = Generate(context.Background(), site, Options{})
	require.Error(t, err)
	assert.True(t, fault.IsUser(err))

	var verr *pages.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Violations)
}

func TestGenerateMissingCatalog(t *testing.T) {
	t.Parallel()

	fsys := siteFS()
	delete(fsys, "translations/es.po")

	site, err := Load(fsys, DefaultLayout())
	require.NoError(t, err)

	_, err = Generate(context.Background(), site, Options{})
	require.Error(t, err)
	assert.True(t, fault.IsUser(err))
}

func TestGenerateHooks(t *testing.T) {
	t.Parallel()

	site, err := Load(siteFS(), DefaultLayout())
	require.NoError(t, err)

	var formatted []string

	out, err := Generate(context.Background(), site, Options{Hooks: Hooks{
		Format: func(page pages.Page, content []byte) ([]byte, error) {
			formatted = append(formatted, page.OutputPath)

			return append(content, '\n'), nil
		},
	}})
	require.NoError(t, err)
	assert.Len(t, formatted, len(out))
	assert.True(t, bytes.HasSuffix(out[0].Content, []byte("\n")))

	errRejected := errors.New("rejected")

	_, err = Generate(context.Background(), site, Options{Hooks: Hooks{
		Validate: func(page pages.Page, content []byte) error {
			if bytes.Contains(content, []byte("Bienvenue")) {
				return errRejected
			}

			return nil
		},
	}})
	require.ErrorIs(t, err, errRejected)
	assert.True(t, fault.IsUser(err))
}

func TestGenerateCustomDirectives(t *testing.T) {
	t.Parallel()

	site, err := Load(fstest.MapFS{
		"config/index.json": file(`{}`),
		"pages/index.html":  file(`{{t "phrase" "Hi"}}|{{tjs "phrase" "Bye"}}`),
	}, DefaultLayout())
	require.NoError(t, err)

	out, err := Generate(context.Background(), site, Options{
		Directives: directive.Directives{Markup: []string{"t"}, Code: []string{"tjs"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Hi|'Bye'", string(out[0].Content))
}

func TestRewriteLeavesUnparseableTemplates(t *testing.T) {
	t.Parallel()

	lg := &localeGenerator{
		opts:       Options{Directives: directive.DefaultDirectives()},
		translator: i18n.NewTranslator("en", nil, i18n.Catalog{}),
		renderer:   render.New("en"),
		logger:     zerolog.Nop(),
	}

	src := `{{if .x}}{{translate "phrase" "Hi"}}`

	out, err := lg.rewrite("broken.html", src)
	require.NoError(t, err)
	assert.Equal(t, src, out)

	_, err = lg.rewrite("plural.html", `{{translate "phrase" "a" "pluralForm" "b"}}`)
	require.Error(t, err)
	assert.True(t, fault.IsUser(err))
}
