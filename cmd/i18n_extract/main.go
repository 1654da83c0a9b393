// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// i18n_extract collects translatable phrases from the site templates into a gettext
// template (POT). Entries already present in the output file are kept.
package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/config"
	"codeberg.org/pixivfe/pagesmith/core/audit"
	"codeberg.org/pixivfe/pagesmith/core/fault"
	"codeberg.org/pixivfe/pagesmith/i18n/extract"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("Extraction failed")
		os.Exit(fault.ExitCode(err))
	}
}

func run(args []string) error {
	audit.SetDefaultLogger()

	flags := flag.NewFlagSet("i18n_extract", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a Pagesmith configuration file in YAML format.")
	outPath := flags.String("o", "", "Output file. Defaults to extract.output below the site root.")

	if err := flags.Parse(args); err != nil {
		return fault.UserWrap(err, "invalid arguments")
	}

	if err := config.Global.LoadConfig(*configPath); err != nil {
		return fault.UserWrap(err, "failed to load configuration")
	}

	cfg := &config.Global
	root := cfg.Paths.Site

	output := *outPath
	if output == "" {
		output = cfg.ExtractOutput()
	}

	sources, err := compileSources(cfg.Extract.Sources)
	if err != nil {
		return fault.UserWrap(err, "invalid extract sources")
	}

	span := audit.Span{Stage: audit.StageExtract}
	span.Begin(context.Background())

	tmpl, err := extractTemplate(root, sources, cfg)
	if err == nil {
		err = tmpl.Save(output)
		span.Items = tmpl.Len()
	}

	span.End()
	span.Error = err
	span.Log()

	if err != nil {
		return err
	}

	log.Info().
		Int("entries", tmpl.Len()).
		Str("output", output).
		Msg("Wrote translation template")

	return nil
}

func extractTemplate(root string, sources *sourceSet, cfg *config.BuildConfig) (*extract.Template, error) {
	paths, err := sources.collect(root)
	if err != nil {
		return nil, fault.UserWrap(err, "failed to collect template sources")
	}

	ex := extract.New(root, cfg.DirectiveNames())
	ex.Version = detectVersion(root)

	return ex.Extract(paths), nil
}

// detectVersion describes the site's git checkout, falling back to "dev".
func detectVersion(dir string) string {
	cmd := exec.Command("git", "describe", "--tags", "--always", "--dirty")
	cmd.Dir = filepath.Clean(dir)

	out, err := cmd.Output()
	if err != nil {
		return "dev"
	}

	return strings.TrimSpace(string(out))
}
