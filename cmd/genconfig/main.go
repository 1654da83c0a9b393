// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// genconfig writes the example configuration files in deploy/ from the defaults of
// [config.BuildConfig].
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/config"
	"codeberg.org/pixivfe/pagesmith/core/audit"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/pagesmith.yaml.example"
	filePerm       = 0o644

	envFileHeader = `# Pagesmith configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# Pagesmith configuration (via configuration file)
#
# Copy this file to pagesmith.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
)

// essentialEnv lists the variables written uncommented.
var essentialEnv = map[string]bool{
	"PAGESMITH_SITE":   true,
	"PAGESMITH_OUTPUT": true,
}

// essentialYAML lists the "section.key" entries written uncommented.
var essentialYAML = map[string]bool{
	"paths.site":   true,
	"paths.output": true,
}

func main() {
	audit.SetDefaultLogger()

	cfg := &config.BuildConfig{}
	cfg.SetDefaults()

	yamlContent, err := yamlExample(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	write(envOutputFile, envExample(cfg))
	write(yamlOutputFile, yamlContent)
}

func write(path, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create directory")
	}

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
	}

	log.Info().Str("path", path).Msg("Successfully generated example file")
}

// envExample renders one "## Section" block per configuration section, listing the
// environment variable of every field with its default.
func envExample(cfg *config.BuildConfig) string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(*cfg)
	typ := val.Type()

	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if structValue.Kind() != reflect.Struct || !structField.IsExported() || structField.Name == "Build" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", structField.Name)

		innerTyp := structValue.Type()
		for j := range innerTyp.NumField() {
			field := innerTyp.Field(j)
			value := structValue.Field(j)

			tag, ok := field.Tag.Lookup("env")
			if !ok {
				continue
			}

			name, _, _ := strings.Cut(tag, ",")

			switch {
			case essentialEnv[name]:
				fmt.Fprintf(&sb, "%s=\"%v\"\n", name, value.Interface())
			case value.Kind() == reflect.Slice:
				parts := make([]string, value.Len())
				for k := range value.Len() {
					parts[k] = fmt.Sprint(value.Index(k).Interface())
				}

				fmt.Fprintf(&sb, "# %s=%s\n", name, strings.Join(parts, ","))
			case value.Kind() == reflect.String && value.Len() == 0:
				fmt.Fprintf(&sb, "# %s=\n", name)
			default:
				fmt.Fprintf(&sb, "# %s=%v\n", name, value.Interface())
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// yamlExample marshals the defaults and comments out every line except section headers
// and the site paths.
func yamlExample(cfg *config.BuildConfig) (string, error) {
	var yamlContent strings.Builder
	if err := yaml.NewEncoder(&yamlContent, yaml.Indent(2)).Encode(cfg); err != nil {
		return "", err
	}

	var (
		sb      strings.Builder
		section string
	)

	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys are section headers.
		if !strings.HasPrefix(line, " ") {
			section = strings.TrimSuffix(trimmed, ":")
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		key, _, _ := strings.Cut(trimmed, ":")
		if essentialYAML[section+"."+key] {
			sb.WriteString(line + "\n")

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return sb.String(), nil
}
