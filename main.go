// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Pagesmith generates static multi-locale pages from templates and layered configuration.

Usage:

	pagesmith [-config pagesmith.yaml]

The site root, output directory and the other settings come from the configuration file
and PAGESMITH_* environment variables. See deploy/pagesmith.yaml.example.
*/
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/build"
	"codeberg.org/pixivfe/pagesmith/config"
	"codeberg.org/pixivfe/pagesmith/core/audit"
	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/pages"
	"codeberg.org/pixivfe/pagesmith/render"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

var (
	errInvalidUTF8   = errors.New("output is not valid UTF-8")
	errOutsideOutput = errors.New("output path escapes the output directory")
)

// main is the entry point of the application.
func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("Build failed")
		os.Exit(fault.ExitCode(err))
	}
}

// run loads the configuration, generates the site and writes every page.
func run(args []string) error {
	audit.SetDefaultLogger()

	flags := flag.NewFlagSet("pagesmith", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a Pagesmith configuration file in YAML format.")

	if err := flags.Parse(args); err != nil {
		return fault.UserWrap(err, "invalid arguments")
	}

	if err := config.Global.LoadConfig(*configPath); err != nil {
		return fault.UserWrap(err, "failed to load configuration")
	}

	cfg := &config.Global

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	span := audit.Span{Stage: audit.StageLoad}
	span.Begin(ctx)

	site, err := build.Load(os.DirFS(cfg.Paths.Site), cfg.Layout())

	span.End()
	span.Error = err
	span.Log()

	if err != nil {
		return err
	}

	opts := cfg.GenerateOptions()
	opts.Hooks = build.Hooks{
		Format:   formatOutput,
		Validate: validateOutput,
	}

	outputs, err := build.Generate(ctx, site, opts)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg.Paths.Output, outputs); err != nil {
		return err
	}

	log.Info().
		Int("pages", len(outputs)).
		Str("output", cfg.Paths.Output).
		Msg("Site generated")

	return nil
}

// formatOutput trims trailing blank space and ends the page with a single newline.
func formatOutput(_ pages.Page, content []byte) ([]byte, error) {
	return append(bytes.TrimRight(content, " \t\r\n"), '\n'), nil
}

func validateOutput(_ pages.Page, content []byte) error {
	if !utf8.Valid(content) {
		return errInvalidUTF8
	}

	return nil
}

// writeOutputs writes every output below dir.
func writeOutputs(dir string, outputs []render.Output) error {
	for _, o := range outputs {
		if !filepath.IsLocal(filepath.FromSlash(o.Path)) {
			return fault.UserWrap(errOutsideOutput, "cannot write %q", o.Path)
		}

		target := filepath.Join(dir, filepath.FromSlash(o.Path))

		if err := os.MkdirAll(filepath.Dir(target), dirPermissions); err != nil {
			return fault.System(err, "failed to create directory for %s", target)
		}

		if err := os.WriteFile(target, o.Content, filePermissions); err != nil {
			return fault.System(err, "failed to write %s", target)
		}

		log.Debug().Str("path", target).Int("bytes", len(o.Content)).Msg("Wrote page")
	}

	return nil
}
