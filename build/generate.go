// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package build

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pixivfe/pagesmith/core/audit"
	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/entity"
	"codeberg.org/pixivfe/pagesmith/i18n"
	"codeberg.org/pixivfe/pagesmith/i18n/directive"
	"codeberg.org/pixivfe/pagesmith/locale"
	"codeberg.org/pixivfe/pagesmith/merge"
	"codeberg.org/pixivfe/pagesmith/pages"
	"codeberg.org/pixivfe/pagesmith/render"
)

// Hooks post-process rendered pages. Nil hooks are skipped.
type Hooks struct {
	// Format rewrites the rendered content, e.g. to pretty-print it.
	Format func(page pages.Page, content []byte) ([]byte, error)
	// Validate rejects rendered content.
	Validate func(page pages.Page, content []byte) error
}

// Options control generation.
type Options struct {
	Directives        directive.Directives
	Parallel          bool
	StrictMissingKeys bool
	Hooks             Hooks
}

// Data keys available to every page template.
const (
	DataGlobalConfig = "global_config"
	DataConfig       = "config"
	DataParams       = "params"
	DataLocale       = "locale"
	DataLocaleTag    = "localeTag"
	DataRelativePath = "relativePath"
	DataPageName     = "pageName"
)

// Generate resolves, validates, translates and renders every page of site.
//
// Outputs are ordered by locale (default first), then page name. Catalogs are loaded
// before any locale is processed. Locales are processed one at a time unless
// opts.Parallel is set.
func Generate(ctx context.Context, site *Site, opts Options) ([]render.Output, error) {
	cfg := site.Locales

	if len(opts.Directives.Markup) == 0 && len(opts.Directives.Code) == 0 {
		opts.Directives = directive.DefaultDirectives()
	}

	span := audit.Span{Stage: audit.StageResolve}
	span.Begin(ctx)

	sets, partials, catalog, err := resolve(site)

	span.End()
	span.Error = err
	span.Items = len(sets)
	span.Log()

	if err != nil {
		return nil, err
	}

	results := make([][]render.Output, len(sets))

	g, ctx := errgroup.WithContext(ctx)
	if !opts.Parallel {
		g.SetLimit(1)
	}

	for i, set := range sets {
		g.Go(func() error {
			lg := &localeGenerator{
				set:      set,
				partials: partials[set.Locale],
				opts:     opts,
				translator: i18n.NewTranslator(set.Locale, cfg.Fallbacks(set.Locale), catalog,
					i18n.WithStrictMissingKeys(opts.StrictMissingKeys),
					i18n.WithOriginalLocale(cfg.Default())),
				renderer: render.New(set.Locale),
				logger:   log.With().Str("sys", "build").Str("locale", string(set.Locale)).Logger(),
			}

			span := audit.Span{Stage: audit.StageLocale, Locale: string(set.Locale)}
			ctx := span.Begin(ctx)

			out, err := lg.run(ctx)

			span.End()
			span.Error = err

			for _, o := range out {
				span.Items++
				span.Bytes += len(o.Content)
			}

			span.Log()

			if err != nil {
				return err
			}

			results[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(results...), nil
}

// resolve merges every entity set, assembles and validates the pages, then loads the
// catalogs.
func resolve(site *Site) ([]pages.PageSet, map[locale.ID][]entity.Entity, i18n.Catalog, error) {
	cfg := site.Locales

	configs := merge.Resolve(site.Configs, cfg)
	templates := merge.Resolve(site.Templates, cfg)
	partials := merge.Resolve(site.Partials, cfg)
	globals := merge.Resolve(site.Globals, cfg)

	sets := pages.BuildPageSets(configs, templates, globals, cfg)
	if err := pages.Validate(pages.AllPages(sets)); err != nil {
		return nil, nil, nil, err
	}

	catalog, err := i18n.LoadCatalog(site.FS, site.Layout.Translations, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	return sets, partials, catalog, nil
}

type localeGenerator struct {
	set        pages.PageSet
	partials   []entity.Entity
	opts       Options
	translator *i18n.Translator
	renderer   *render.Renderer
	logger     zerolog.Logger
}

func (lg *localeGenerator) run(ctx context.Context) ([]render.Output, error) {
	partials := make([]render.Partial, 0, len(lg.partials))

	for _, p := range lg.partials {
		src, err := lg.rewrite(p.TemplatePath(), p.Source())
		if err != nil {
			return nil, err
		}

		partials = append(partials, render.Partial{Name: p.Name, Source: src})
	}

	outputs := make([]render.Output, 0, len(lg.set.Pages))

	for _, page := range lg.set.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := lg.page(ctx, page, partials)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, out)
	}

	lg.logger.Info().Int("pages", len(outputs)).Msg("Generated locale")

	return outputs, nil
}

func (lg *localeGenerator) page(ctx context.Context, page pages.Page, partials []render.Partial) (render.Output, error) {
	src, err := lg.rewrite(page.TemplatePath, page.TemplateSource)
	if err != nil {
		return render.Output{}, err
	}

	out, err := lg.renderer.Render(ctx, render.Job{
		Name:       page.Name,
		Source:     src,
		OutputPath: page.OutputPath,
		Partials:   partials,
		Data:       lg.data(page),
	})
	if err != nil {
		return render.Output{}, err
	}

	if hook := lg.opts.Hooks.Format; hook != nil {
		out.Content, err = hook(page, out.Content)
		if err != nil {
			return render.Output{}, fault.UserWrap(err, "failed to format page %q (%s)", page.Name, page.Locale)
		}
	}

	if hook := lg.opts.Hooks.Validate; hook != nil {
		if err := hook(page, out.Content); err != nil {
			return render.Output{}, fault.UserWrap(err, "page %q (%s) failed validation", page.Name, page.Locale)
		}
	}

	return out, nil
}

// rewrite resolves the translation directives of a template. Templates that cannot be
// parsed are left unchanged.
func (lg *localeGenerator) rewrite(name, src string) (string, error) {
	out, err := directive.RewriteSource(name, src, lg.opts.Directives, lg.translator)
	if errors.Is(err, directive.ErrUnparseable) {
		lg.logger.Warn().Err(err).Str("template", name).Msg("Template cannot be parsed, leaving it untranslated")

		return src, nil
	}

	return out, err
}

func (lg *localeGenerator) data(page pages.Page) map[string]any {
	var tag string
	if page.Locale != locale.NoLocale {
		tag = page.Locale.Tag().String()
	}

	return map[string]any{
		DataGlobalConfig: map[string]any(lg.set.GlobalConfig),
		DataConfig:       map[string]any(page.Config),
		DataParams:       lg.set.Params,
		DataLocale:       string(page.Locale),
		DataLocaleTag:    tag,
		DataRelativePath: pages.RelativePath(page.OutputPath),
		DataPageName:     page.Name,
	}
}
