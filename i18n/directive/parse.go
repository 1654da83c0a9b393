// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package directive

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/template/parse"
	"unicode/utf8"

	"codeberg.org/pixivfe/pagesmith/core/fault"
)

// ErrUnparseable is returned when template source is not valid template syntax.
var ErrUnparseable = errors.New("template cannot be parsed")

// Parse returns every directive in src, in document order.
//
// Invalid template syntax wraps [ErrUnparseable]. Malformed directives (odd argument
// count, non-string keys, nested calls, directives inside pipelines) are user errors.
func Parse(name, src string, ds Directives) ([]Match, error) {
	tree := parse.New(name)
	tree.Mode = parse.SkipFuncCheck

	treeSet := make(map[string]*parse.Tree)

	if _, err := tree.Parse(src, "", "", treeSet); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	w := &walker{name: name, src: src, ds: ds}

	for _, t := range treeSet {
		if t.Root != nil {
			w.walk(t.Root)
		}
	}

	if w.err != nil {
		return nil, w.err
	}

	// Trees come out of a map, so restore document order.
	slices.SortFunc(w.matches, func(a, b Match) int {
		return a.Start.Offset - b.Start.Offset
	})

	return w.matches, nil
}

type walker struct {
	name    string
	src     string
	ds      Directives
	matches []Match
	err     error
}

func (w *walker) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *walker) userError(pos parse.Pos, format string, args ...any) error {
	p := w.position(int(pos))

	return fault.User("%s:%d:%d: %s", w.name, p.Line, p.Column, fmt.Sprintf(format, args...))
}

func (w *walker) walk(node parse.Node) {
	if w.err != nil {
		return
	}

	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}

		for _, child := range n.Nodes {
			w.walk(child)
		}
	case *parse.ActionNode:
		w.action(n)
	case *parse.IfNode:
		w.branch(&n.BranchNode)
	case *parse.RangeNode:
		w.branch(&n.BranchNode)
	case *parse.WithNode:
		w.branch(&n.BranchNode)
	case *parse.TemplateNode:
		w.nested(n.Pipe)
	}
}

func (w *walker) branch(n *parse.BranchNode) {
	w.nested(n.Pipe)
	w.walk(n.List)
	w.walk(n.ElseList)
}

// nested rejects directives appearing anywhere other than as a standalone action.
func (w *walker) nested(pipe *parse.PipeNode) {
	if pipe == nil || w.err != nil {
		return
	}

	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.IdentifierNode:
				if _, ok := w.ds.KindOf(a.Ident); ok {
					w.fail(w.userError(a.Pos, "directive %q must be a standalone action", a.Ident))

					return
				}
			case *parse.PipeNode:
				w.nested(a)
			case *parse.ChainNode:
				if p, ok := a.Node.(*parse.PipeNode); ok {
					w.nested(p)
				}
			}
		}
	}
}

func (w *walker) action(n *parse.ActionNode) {
	pipe := n.Pipe
	if pipe == nil || len(pipe.Cmds) == 0 || len(pipe.Cmds[0].Args) == 0 {
		return
	}

	ident, ok := pipe.Cmds[0].Args[0].(*parse.IdentifierNode)
	if !ok {
		w.nested(pipe)

		return
	}

	kind, ok := w.ds.KindOf(ident.Ident)
	if !ok {
		w.nested(pipe)

		return
	}

	if len(pipe.Cmds) > 1 || len(pipe.Decl) > 0 {
		w.fail(w.userError(ident.Pos, "directive %q must be a standalone action", ident.Ident))

		return
	}

	start, end, ok := w.bounds(int(ident.Pos))
	if !ok {
		w.fail(fmt.Errorf("%w: %s: cannot locate action around offset %d", ErrUnparseable, w.name, ident.Pos))

		return
	}

	inv, err := w.invocation(kind, ident, pipe.Cmds[0].Args[1:])
	if err != nil {
		w.fail(err)

		return
	}

	startPos := w.position(start)
	inv.Line, inv.Column = startPos.Line, startPos.Column

	w.matches = append(w.matches, Match{
		Invocation: inv,
		Text:       w.src[start:end],
		Start:      startPos,
		End:        w.position(end),
	})
}

func (w *walker) invocation(kind Kind, ident *parse.IdentifierNode, args []parse.Node) (Invocation, error) {
	inv := Invocation{
		Kind:       kind,
		Directive:  ident.Ident,
		EscapeHTML: true,
		Params:     make(map[string]string),
		exprs:      make(map[string]string),
	}

	if len(args)%2 != 0 {
		return Invocation{}, w.userError(ident.Pos, "directive %q needs key and value pairs, got %d arguments", ident.Ident, len(args))
	}

	for i := 0; i < len(args); i += 2 {
		keyNode, ok := args[i].(*parse.StringNode)
		if !ok {
			return Invocation{}, w.userError(args[i].Position(), "parameter key %s must be a string literal", args[i])
		}

		key := keyNode.Text
		if slices.Contains(inv.keys, key) {
			return Invocation{}, w.userError(keyNode.Pos, "parameter %q given more than once", key)
		}

		inv.keys = append(inv.keys, key)
		valueNode := args[i+1]

		switch key {
		case ParamPhrase, ParamPluralForm, ParamContext:
			s, ok := valueNode.(*parse.StringNode)
			if !ok {
				return Invocation{}, w.userError(valueNode.Position(), "parameter %q must be a string literal", key)
			}

			switch key {
			case ParamPhrase:
				inv.Phrase = s.Text
			case ParamPluralForm:
				inv.PluralForm = s.Text
			case ParamContext:
				inv.Context = s.Text
			}
		case ParamEscapeHTML:
			text, _, err := w.value(key, valueNode)
			if err != nil {
				return Invocation{}, err
			}

			inv.EscapeHTML = text != "false"
		default:
			text, expr, err := w.value(key, valueNode)
			if err != nil {
				return Invocation{}, err
			}

			inv.Params[key] = text
			inv.exprs[key] = expr
		}
	}

	if !inv.Has(ParamPhrase) {
		return Invocation{}, w.userError(ident.Pos, "directive %q is missing %q", ident.Ident, ParamPhrase)
	}

	return inv, nil
}

// value returns the stringified form of an argument and the template syntax that
// evaluates to it at render time.
func (w *walker) value(key string, node parse.Node) (text, expr string, err error) {
	switch v := node.(type) {
	case *parse.StringNode:
		return v.Text, v.Quoted, nil
	case *parse.NumberNode:
		return v.Text, v.Text, nil
	case *parse.BoolNode:
		s := strconv.FormatBool(v.True)

		return s, s, nil
	case *parse.NilNode:
		return "null", "nil", nil
	case *parse.IdentifierNode:
		switch v.Ident {
		case "null", "undefined":
			return v.Ident, "nil", nil
		}

		return v.Ident, v.Ident, nil
	case *parse.FieldNode, *parse.VariableNode, *parse.DotNode:
		s := node.String()

		return s, s, nil
	case *parse.PipeNode, *parse.ChainNode:
		return "", "", w.userError(node.Position(), "parameter %q cannot be a nested call", key)
	default:
		return "", "", w.userError(node.Position(), "parameter %q has unsupported value %s", key, node)
	}
}

// bounds returns the offsets of the enclosing "{{" and just past the closing "}}" of the
// action whose first token is at anchor.
func (w *walker) bounds(anchor int) (start, end int, ok bool) {
	if anchor < 0 || anchor > len(w.src) {
		return 0, 0, false
	}

	start = strings.LastIndex(w.src[:anchor], "{{")
	if start < 0 {
		return 0, 0, false
	}

	// Only trim markers and whitespace may sit between the delimiter and the anchor.
	if strings.TrimLeft(w.src[start+2:anchor], "- \t\r\n") != "" {
		return 0, 0, false
	}

	end = actionEnd(w.src, anchor)
	if end < 0 {
		return 0, 0, false
	}

	return start, end, true
}

// actionEnd scans forward from i for the closing "}}", skipping quoted literals.
func actionEnd(src string, i int) int {
	for ; i < len(src); i++ {
		switch c := src[i]; c {
		case '"', '\'':
			for i++; i < len(src) && src[i] != c; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case '`':
			j := strings.IndexByte(src[i+1:], '`')
			if j < 0 {
				return -1
			}

			i += j + 1
		case '}':
			if strings.HasPrefix(src[i:], "}}") {
				return i + 2
			}
		}
	}

	return -1
}

func (w *walker) position(offset int) Position {
	offset = min(max(offset, 0), len(w.src))
	before := w.src[:offset]
	lineStart := strings.LastIndexByte(before, '\n') + 1

	return Position{
		Offset: offset,
		Line:   strings.Count(before, "\n") + 1,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
	}
}
