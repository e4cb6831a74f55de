// Package gen emits Go source for a resolved model. Every concrete object gets
// an encoder, a decoder and a shared Codec value; every synthesized array
// codec gets an encode/decode pair. All routines are methods on a single
// serializer type so that recursive and mutually recursive types can call
// each other without forward declarations.
package gen

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/imports"

	"github.com/reoring/codecgen/internal/codewriter"
	"github.com/reoring/codecgen/internal/ir"
)

// Options controls cosmetic parts of the output.
type Options struct {
	// Source names the schema file in the generated header.
	Source string
}

// Generate renders root as a formatted Go file.
func Generate(root *ir.Root) ([]byte, error) { return GenerateWith(root, Options{}) }

// GenerateWith renders root as a formatted Go file.
func GenerateWith(root *ir.Root, opt Options) ([]byte, error) {
	g := &generator{root: root, names: &names{root: root}, w: codewriter.New(), declared: map[string]string{}}
	if err := g.declare(); err != nil {
		return nil, &ir.GenerateError{Err: err}
	}
	g.body()

	head := codewriter.New()
	if opt.Source != "" {
		head.Comment("Code generated by codecgen from %s. DO NOT EDIT.", opt.Source)
	} else {
		head.Comment("Code generated by codecgen. DO NOT EDIT.")
	}
	head.Blank()
	head.Linef("package %s", root.Package)
	head.Blank()
	var imps []string
	if g.names.runtime {
		imps = append(imps, "github.com/reoring/codecgen")
	}
	if g.names.decimal {
		imps = append(imps, "github.com/shopspring/decimal")
	}
	if len(imps) > 0 {
		head.Line("import (")
		for _, imp := range imps {
			head.Linef("\t%q", imp)
		}
		head.Line(")")
	}

	var src bytes.Buffer
	src.Write(head.Bytes())
	src.Write(g.w.Bytes())
	out, err := imports.Process("generated.go", src.Bytes(), &imports.Options{FormatOnly: true, Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, &ir.GenerateError{Err: fmt.Errorf("format: %w", err)}
	}
	return out, nil
}

type generator struct {
	root  *ir.Root
	names *names
	w     *codewriter.Writer
	// declared maps each package-level identifier to what declared it.
	declared map[string]string
}

// declare reserves every package-level identifier and method name up front
// so that collisions surface as an error instead of uncompilable output.
func (g *generator) declare() error {
	n := g.names
	add := func(ident, what string) error {
		if prev, ok := g.declared[ident]; ok {
			return fmt.Errorf("identifier %s generated for %s is already used by %s", ident, what, prev)
		}
		g.declared[ident] = what
		return nil
	}
	if err := add(n.serializer(), "the serializer"); err != nil {
		return err
	}
	for _, o := range g.root.Objects {
		if len(g.root.Aggregates) > 0 {
			if err := add(n.typeName(o.ID), o.Name); err != nil {
				return err
			}
		}
		if o.Interface {
			continue
		}
		for _, ident := range []string{n.codecVar(o.ID), "." + n.encode(o.ID), "." + n.decode(o.ID), "." + n.read(o.ID), "." + n.decodeField(o.ID)} {
			if err := add(ident, o.Name); err != nil {
				return err
			}
		}
	}
	for _, c := range g.root.Arrays {
		what := g.root.Object(c.Owner).Name + "." + c.Field
		if err := add("."+n.encodeArray(c.ID), what); err != nil {
			return err
		}
		if err := add("."+n.decodeArray(c.ID), what); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) body() {
	w, n := g.w, g.names
	w.Blank()
	w.Comment("%s encodes and decodes the declared types. The zero value is ready to use.", n.serializer())
	w.Linef("type %s struct{}", n.serializer())

	for _, a := range g.root.Aggregates {
		g.aggregate(g.root.Object(a.Object))
	}
	for _, o := range g.root.Objects {
		if o.Interface {
			continue
		}
		g.objectCodec(o)
	}
	for _, c := range g.root.Arrays {
		g.arrayCodec(c)
	}
}

// aggregate emits the plain data holder for o: a struct for concrete
// objects, an interface of getters for interface-only objects.
func (g *generator) aggregate(o *ir.Object) {
	w, n := g.w, g.names
	fields := o.Fields
	if o.Wildcard != nil {
		fields = append(append([]ir.Field(nil), fields...), *o.Wildcard)
	}
	w.Blank()
	if o.Interface {
		w.Comment("%s is implemented by every type declaring %s as a base.", n.typeName(o.ID), o.Name)
		w.Open("type %s interface", n.typeName(o.ID))
		for _, f := range fields {
			w.Linef("%s() %s", n.getter(f), n.goType(f.Type))
		}
		w.Close()
		return
	}
	w.Linef("// %s is the data holder for %s.", n.typeName(o.ID), o.Name)
	w.Open("type %s struct", n.typeName(o.ID))
	for _, f := range fields {
		w.Linef("%s %s", n.field(f), n.goType(f.Type))
	}
	w.Close()
	for _, f := range fields {
		if !g.root.Object(f.Origin).Interface {
			continue
		}
		w.Blank()
		w.Linef("func (v *%s) %s() %s { return v.%s }", n.typeName(o.ID), n.getter(f), n.goType(f.Type), n.field(f))
	}
}
