// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

var (
	errExpectedPointerToStruct = errors.New("expected a pointer to a struct")
	errUnsupportedSliceType    = errors.New("unsupported slice type")
	errUnsupportedFieldType    = errors.New("unsupported field type")
)

// readEnv populates the struct pointed to by spec from the environment variables named
// in its env tags.
//
// A variable only replaces a non-zero value when its tag carries the overwrite option.
func readEnv(spec any) error {
	v := reflect.ValueOf(spec)
	if v.Kind() != reflect.Pointer {
		return fmt.Errorf("%w, got %s", errExpectedPointerToStruct, v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w, got a pointer to %s", errExpectedPointerToStruct, v.Kind())
	}

	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		sf := t.Field(i)

		tag := sf.Tag.Get("env")
		if tag == "" {
			if field.Kind() == reflect.Struct && field.CanAddr() && sf.IsExported() {
				if err := readEnv(field.Addr().Interface()); err != nil {
					return err
				}
			}

			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		overwrite := slices.Contains(strings.Split(opts, ","), "overwrite")

		value, ok := os.LookupEnv(name)
		if !ok || !field.CanSet() {
			continue
		}

		if !overwrite && !field.IsZero() {
			continue
		}

		if err := setField(field, sf.Name, name, value); err != nil {
			return err
		}
	}

	return nil
}

func setField(field reflect.Value, fieldName, envName, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int for %s from env var %s (%s): %w", fieldName, envName, value, err)
		}

		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("failed to parse bool for %s from env var %s (%s): %w", fieldName, envName, value, err)
		}

		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w for field %s", errUnsupportedSliceType, fieldName)
		}

		var items []string

		for item := range strings.SplitSeq(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}

		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("%w for field %s: %s", errUnsupportedFieldType, fieldName, field.Kind())
	}

	return nil
}
