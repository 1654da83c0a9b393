// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/pagesmith/core/fault"
)

// Template is an accumulated set of entries and their references. Entries are unique
// per (context, msgid).
type Template struct {
	Version string
	Created time.Time

	entries map[msgKey]*entry
}

type msgKey struct {
	context string
	id      string
}

type entry struct {
	plural string
	refs   []Ref
}

// Add registers key, optionally with references.
//
// A phrase used both with and without a plural form becomes a single plural entry.
// When two different plural forms are registered for the same phrase, the first one is
// kept and the conflict is logged.
func (t *Template) Add(key Key, refs ...Ref) {
	if t.entries == nil {
		t.entries = make(map[msgKey]*entry)
	}

	mk := msgKey{context: key.Context, id: key.ID}

	e, ok := t.entries[mk]
	if !ok {
		e = &entry{plural: key.Plural}
		t.entries[mk] = e
	}

	switch {
	case key.Plural == "" || key.Plural == e.plural:
	case e.plural == "":
		e.plural = key.Plural
	default:
		log.Warn().
			Str("sys", "extract").
			Str("msgctxt", key.Context).
			Str("msgid", key.ID).
			Str("kept", e.plural).
			Str("ignored", key.Plural).
			Msg("Conflicting plural forms for phrase")
	}

	e.refs = append(e.refs, refs...)
}

// Keys returns every entry key in output order.
func (t *Template) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for mk, e := range t.entries {
		keys = append(keys, Key{Context: mk.context, ID: mk.id, Plural: e.plural})
	}

	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(
			cmp.Compare(a.Context, b.Context),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return keys
}

// Refs returns the sorted, de-duplicated references of the entry for key's context and
// msgid.
func (t *Template) Refs(key Key) []Ref {
	e, ok := t.entries[msgKey{context: key.Context, id: key.ID}]
	if !ok {
		return nil
	}

	rs := slices.Clone(e.refs)

	slices.SortFunc(rs, func(a, b Ref) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Line, b.Line))
	})

	return slices.Compact(rs)
}

// Len returns the number of entries.
func (t *Template) Len() int {
	return len(t.entries)
}

// WriteTo writes t in POT format.
func (t *Template) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer

	t.writeHeader(&b)

	keys := t.Keys()
	for i, k := range keys {
		if rs := t.Refs(k); len(rs) > 0 {
			b.WriteString("#:")

			for _, r := range rs {
				fmt.Fprintf(&b, " %s:%d", r.File, r.Line)
			}

			b.WriteByte('\n')
		}

		if k.Context != "" {
			fmt.Fprintf(&b, "msgctxt %q\n", k.Context)
		}

		fmt.Fprintf(&b, "msgid %q\n", k.ID)

		if k.Plural != "" {
			fmt.Fprintf(&b, "msgid_plural %q\n", k.Plural)
			b.WriteString("msgstr[0] \"\"\n")
			b.WriteString("msgstr[1] \"\"\n")
		} else {
			b.WriteString("msgstr \"\"\n")
		}

		if i < len(keys)-1 {
			b.WriteByte('\n')
		}
	}

	return b.WriteTo(w)
}

func (t *Template) writeHeader(b *bytes.Buffer) {
	created := t.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	fmt.Fprintln(b, `msgid ""`)
	fmt.Fprintln(b, `msgstr ""`)
	fmt.Fprintf(b, "\"Project-Id-Version: Pagesmith %s\\n\"\n", cmp.Or(t.Version, "dev"))
	fmt.Fprintf(b, "\"POT-Creation-Date: %s\\n\"\n", created.Format("2006-01-02 15:04+0000"))
	fmt.Fprintln(b, `"Language: en\n"`)
	fmt.Fprintln(b, `"MIME-Version: 1.0\n"`)
	fmt.Fprintln(b, `"Content-Type: text/plain; charset=UTF-8\n"`)
	fmt.Fprintln(b, `"Content-Transfer-Encoding: 8bit\n"`)
	fmt.Fprintln(b, `"Plural-Forms: nplurals=2; plural=(n != 1);\n"`)
	fmt.Fprintln(b)
}

// Save writes t to path, creating parent directories. Entries of an existing file at path
// that t lacks are kept; entries t already has, including their plural form, are taken
// from t.
func (t *Template) Save(path string) error {
	existing, err := os.ReadFile(path)

	switch {
	case err == nil:
		t.mergeExisting(existing)
	case !errors.Is(err, fs.ErrNotExist):
		return fault.System(err, "failed to read %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fault.System(err, "failed to create output directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return fault.System(err, "failed to create %s", path)
	}

	if _, err := t.WriteTo(f); err != nil {
		f.Close()

		return fault.System(err, "failed to write %s", path)
	}

	if err := f.Close(); err != nil {
		return fault.System(err, "failed to write %s", path)
	}

	return nil
}

func (t *Template) mergeExisting(data []byte) {
	po := gotext.NewPo()
	po.Parse(data)

	domain := po.GetDomain()

	for _, tr := range domain.GetTranslations() {
		t.addExisting("", tr)
	}

	for ctx, trs := range domain.GetCtxTranslations() {
		for _, tr := range trs {
			t.addExisting(ctx, tr)
		}
	}
}

func (t *Template) addExisting(ctx string, tr *gotext.Translation) {
	if tr == nil || tr.ID == "" {
		return
	}

	if _, ok := t.entries[msgKey{context: ctx, id: tr.ID}]; ok {
		return
	}

	t.Add(Key{Context: ctx, ID: tr.ID, Plural: tr.PluralID})
}
