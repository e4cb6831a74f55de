// Package schema parses the line-oriented schema text into a syntax tree.
//
// Grammar, one construct per line:
//
//	:Name                          interface-only object
//	:Name: Base                    interface-only object extending another
//	Name                           concrete object
//	Name: Base1, Base2             concrete object copying the fields of its bases
//	- key: type                    field on the current object
//	- "key" => Field: [type]       quoted wire key, renamed field, array of type
//	- * => Extra: {type}           wildcard dictionary of type
//
// Text after "//" and blank lines are ignored.
package schema

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/reoring/codecgen/internal/ir"
)

// Object is a declared object.
type Object struct {
	Name       string
	Interface  bool
	Properties []Property
	Inherit    []string
	Line       int
}

// Property is one field declaration.
type Property struct {
	Key          string
	Name         string
	Type         string
	IsArray      bool
	IsDictionary bool
	Line         int
}

// ParseBytes parses schema text held in memory.
func ParseBytes(b []byte) ([]Object, error) { return Parse(bytes.NewReader(b)) }

// Parse reads schema text and returns the declared objects in order. Any
// malformed line aborts parsing with a *ir.SchemaSyntaxError and no objects.
func Parse(r io.Reader) ([]Object, error) {
	p := &parser{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if err := p.line(n, sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	p.post()
	return p.objects, nil
}

type parser struct {
	objects []Object
	current *Object
}

// post finalizes the object under construction.
func (p *parser) post() {
	if p.current == nil {
		return
	}
	p.objects = append(p.objects, *p.current)
	p.current = nil
}

func (p *parser) line(n int, raw string) error {
	text := raw
	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	fail := func(reason string) error {
		return &ir.SchemaSyntaxError{Line: n, Text: raw, Reason: reason}
	}

	switch {
	case strings.HasPrefix(text, "-"):
		if p.current == nil {
			return fail("property declared before any object")
		}
		prop, reason := parseProperty(strings.TrimSpace(text[1:]))
		if reason != "" {
			return fail(reason)
		}
		prop.Line = n
		p.current.Properties = append(p.current.Properties, prop)
	default:
		p.post()
		obj := &Object{Line: n}
		if strings.HasPrefix(text, ":") {
			obj.Interface = true
			text = strings.TrimSpace(text[1:])
		}
		if lhs, rhs, ok := strings.Cut(text, ":"); ok {
			obj.Name = strings.TrimSpace(lhs)
			for _, base := range strings.Split(rhs, ",") {
				base = strings.TrimSpace(base)
				if base == "" {
					return fail("empty base name")
				}
				obj.Inherit = append(obj.Inherit, base)
			}
		} else {
			obj.Name = text
		}
		if obj.Name == "" {
			return fail("missing object name")
		}
		p.current = obj
	}
	return nil
}

// parseProperty parses the text after the leading "-". A non-empty reason
// means the line is malformed.
func parseProperty(text string) (Property, string) {
	lhs, typ, ok := splitProperty(text)
	if !ok {
		return Property{}, "unable to parse property type"
	}
	var prop Property
	typ = strings.TrimSpace(typ)
	if strings.HasPrefix(typ, "[") || strings.HasSuffix(typ, "]") {
		if !enclosed(typ, '[', ']') {
			return Property{}, "mismatched array brackets"
		}
		prop.IsArray = true
		typ = strings.TrimSpace(typ[1 : len(typ)-1])
	}
	if strings.HasPrefix(typ, "{") || strings.HasSuffix(typ, "}") {
		if !enclosed(typ, '{', '}') {
			return Property{}, "mismatched dictionary braces"
		}
		prop.IsDictionary = true
		typ = strings.TrimSpace(typ[1 : len(typ)-1])
	}
	if typ == "" {
		return Property{}, "missing property type"
	}
	prop.Type = typ

	key, name := lhs, ""
	if k, n, ok := strings.Cut(lhs, "=>"); ok {
		key, name = strings.TrimSpace(k), strings.TrimSpace(n)
		if name == "" {
			return Property{}, "missing field name after =>"
		}
	}
	key = trimEnclosure(strings.TrimSpace(key), '"', '"')
	if key == "" {
		return Property{}, "missing property key"
	}
	if name == "" {
		name = key
	}
	prop.Key = key
	prop.Name = name
	return prop, ""
}

// splitProperty splits at the first ':' outside a quoted key.
func splitProperty(text string) (string, string, bool) {
	quoted := false
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				return strings.TrimSpace(text[:i]), text[i+1:], true
			}
		}
	}
	return "", "", false
}

func enclosed(s string, left, right byte) bool {
	return len(s) >= 2 && s[0] == left && s[len(s)-1] == right
}

func trimEnclosure(s string, left, right byte) string {
	if enclosed(s, left, right) {
		return s[1 : len(s)-1]
	}
	return s
}
