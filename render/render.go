// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package render executes rewritten page templates with html/template.

Pages are exposed as templ.Component values so they compose with templ-generated
components. Every page is parsed together with the partials of its locale, which are
available through {{template "<partial name>" .}}.
*/
package render

import (
	"bytes"
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/locale"
)

// Output is a rendered page.
type Output struct {
	Path    string
	Content []byte
}

// Partial is a named template shared by the pages of a locale.
type Partial struct {
	Name   string
	Source string
}

// Job describes a page to render.
type Job struct {
	Name       string
	Source     string
	OutputPath string
	Partials   []Partial
	Data       map[string]any
}

// Renderer renders the pages of a single locale.
type Renderer struct {
	locale locale.ID
	funcs  template.FuncMap
	logger zerolog.Logger
}

// New returns a Renderer whose template functions follow the rules of id.
func New(id locale.ID) *Renderer {
	return &Renderer{
		locale: id,
		funcs:  Funcs(id),
		logger: log.With().Str("sys", "render").Str("locale", string(id)).Logger(),
	}
}

// Component parses job and returns it as a component. Parse failures are user errors.
func (r *Renderer) Component(job Job) (templ.Component, error) {
	t, err := template.New(job.Name).Funcs(r.funcs).Parse(job.Source)
	if err != nil {
		return nil, fault.UserWrap(err, "failed to parse page %q", job.Name)
	}

	for _, p := range job.Partials {
		if _, err := t.New(p.Name).Parse(p.Source); err != nil {
			return nil, fault.UserWrap(err, "failed to parse partial %q", p.Name)
		}
	}

	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, job.Name, job.Data)
	}), nil
}

// Render executes job. Execution failures are user errors since they stem from the
// site's templates or data.
func (r *Renderer) Render(ctx context.Context, job Job) (Output, error) {
	c, err := r.Component(job)
	if err != nil {
		return Output{}, err
	}

	var buf bytes.Buffer

	if err := c.Render(ctx, &buf); err != nil {
		return Output{}, fault.UserWrap(err, "failed to render page %q", job.Name)
	}

	r.logger.Debug().
		Str("page", job.Name).
		Str("output", job.OutputPath).
		Int("bytes", buf.Len()).
		Msg("Rendered page")

	return Output{Path: job.OutputPath, Content: buf.Bytes()}, nil
}

// RenderToString renders c, returning the error text in place of the output on failure.
func RenderToString(ctx context.Context, c templ.Component) string {
	var buf bytes.Buffer

	if err := c.Render(ctx, &buf); err != nil {
		return "templ: failed to render component: " + err.Error()
	}

	return buf.String()
}
