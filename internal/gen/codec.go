package gen

import (
	"strconv"

	"github.com/reoring/codecgen/internal/ir"
)

// objectCodec emits the shared Codec value and the Encode, Decode, field
// dispatch and Read methods of one concrete object.
func (g *generator) objectCodec(o *ir.Object) {
	w, n := g.w, g.names
	t, ser := n.typeName(o.ID), n.serializer()
	n.runtime = true

	w.Blank()
	w.Comment("%s encodes and decodes %s.", n.codecVar(o.ID), t)
	w.Open("var %s codecgen.Codec[%s] = codecgen.CodecFuncs[%s]", n.codecVar(o.ID), t, t)
	w.Linef("EncodeFunc: %s{}.%s,", ser, n.encode(o.ID))
	w.Linef("DecodeFunc: %s{}.%s,", ser, n.decode(o.ID))
	w.Close()

	g.encodeObject(o)
	g.decodeObject(o)
	g.decodeObjectField(o)
	g.readObject(o)
}

func (g *generator) encodeObject(o *ir.Object) {
	w, n := g.w, g.names
	w.Blank()
	w.Comment("%s writes v as an object, or null when v is nil. Nil fields are omitted.", n.encode(o.ID))
	w.Open("func (s %s) %s(w codecgen.Writer, v *%s) error", n.serializer(), n.encode(o.ID), n.typeName(o.ID))
	w.Open("if v == nil")
	w.Line("return w.WriteNull()")
	w.Close()
	g.check("w.WriteStartObject()")
	for _, f := range o.Fields {
		w.Open("if v.%s != nil", n.field(f))
		g.check("w.WriteFieldName(" + strconv.Quote(f.Key) + ")")
		g.writeValue(f.Type, "v."+n.field(f), true)
		w.Close()
	}
	if wc := o.Wildcard; wc != nil {
		w.Open("for key, value := range v.%s.All()", n.field(*wc))
		g.check("w.WriteFieldName(key)")
		g.writeValue(*wc.Type.Elem, "value", false)
		w.Close()
	}
	w.Line("return w.WriteEndObject()")
	w.Close()
}

// writeValue emits the statements writing expr of type t. A field holds
// scalars behind a pointer; arrays and dictionaries hold them by value.
func (g *generator) writeValue(t ir.Type, expr string, field bool) {
	switch t.Kind {
	case ir.KindScalar:
		if field {
			expr = "*" + expr
		}
		g.check("w." + scalars[t.Scalar].write + "(" + expr + ")")
	case ir.KindObject:
		g.check("s." + g.names.encode(t.Object) + "(w, " + expr + ")")
	case ir.KindArray:
		g.check("s." + g.names.encodeArray(t.Codec) + "(w, " + expr + ")")
	}
}

// check emits a call whose error aborts the surrounding function.
func (g *generator) check(call string) { g.checkRet(call, "err") }

func (g *generator) checkRet(call, ret string) {
	g.w.Open("if err := %s; err != nil", call)
	g.w.Line("return " + ret)
	g.w.Close()
}

func (g *generator) decodeObject(o *ir.Object) {
	w, n := g.w, g.names
	w.Blank()
	w.Comment("%s reads the members of an object into v. r must be positioned on", n.decode(o.ID))
	w.Comment("the object's start token; unknown members are skipped.")
	w.Open("func (s %s) %s(r codecgen.Reader, v *%s) error", n.serializer(), n.decode(o.ID), n.typeName(o.ID))
	w.Open("for")
	w.Line("kind, err := r.Next()")
	w.Open("if err != nil")
	w.Line("return err")
	w.Close()
	w.Open("switch kind")
	w.Case("codecgen.TokenFieldName")
	g.check("s." + n.decodeField(o.ID) + "(r, v)")
	w.Case("codecgen.TokenEndObject")
	w.Line("return nil")
	w.Default()
	g.check("r.Skip()")
	w.Close()
	w.Close()
	w.Close()
}

// decodeObjectField emits the dispatch on the current field name. Declared
// keys are matched in declaration order; anything else goes to the wildcard
// or is skipped.
func (g *generator) decodeObjectField(o *ir.Object) {
	w, n := g.w, g.names
	w.Blank()
	w.Open("func (s %s) %s(r codecgen.Reader, v *%s) error", n.serializer(), n.decodeField(o.ID), n.typeName(o.ID))
	if len(o.Fields) == 0 && o.Wildcard == nil {
		w.Line("return r.Skip()")
		w.Close()
		return
	}
	if o.Wildcard != nil {
		w.Open("switch name := r.Text(); name")
	} else {
		w.Open("switch r.Text()")
	}
	for _, f := range o.Fields {
		w.Case("%s", strconv.Quote(f.Key))
		g.nextToken("err")
		w.Open("switch kind")
		w.Case("codecgen.TokenNull")
		w.Linef("v.%s = nil", n.field(f))
		g.readValue(f.Type, n.field(f), "err", func(expr string, addressable bool) {
			switch {
			case f.Type.Kind != ir.KindScalar || !addressable:
				if f.Type.Kind == ir.KindScalar {
					expr = "codecgen.Ptr(" + expr + ")"
				}
				w.Linef("v.%s = %s", n.field(f), expr)
			default:
				w.Linef("v.%s = &%s", n.field(f), expr)
			}
		})
		w.Default()
		w.Linef("return codecgen.UnexpectedToken(%s, kind)", strconv.Quote(n.field(f)))
		w.Close()
	}
	w.Default()
	if wc := o.Wildcard; wc != nil {
		elem := *wc.Type.Elem
		g.nextToken("err")
		w.Open("switch kind")
		w.Case("codecgen.TokenNull")
		g.readValue(elem, n.field(*wc), "err", func(expr string, _ bool) {
			w.Open("if v.%s == nil", n.field(*wc))
			w.Linef("v.%s = codecgen.NewDict[%s]()", n.field(*wc), n.elemType(elem))
			w.Close()
			w.Linef("v.%s.Set(name, %s)", n.field(*wc), expr)
		})
		w.Default()
		w.Linef("return codecgen.UnexpectedToken(%s, kind)", strconv.Quote(n.field(*wc)))
		w.Close()
	} else {
		w.Line("return r.Skip()")
	}
	w.Close()
	w.Line("return nil")
	w.Close()
}

// nextToken advances to the value token, returning ret on failure.
func (g *generator) nextToken(ret string) {
	g.w.Line("kind, err := r.Next()")
	g.w.Open("if err != nil")
	g.w.Line("return " + ret)
	g.w.Close()
}

// readValue emits the case clauses decoding a non-null value of type t and
// hands the resulting expression to store. addressable reports whether the
// expression is a local variable. errRet is the error return list with
// "err" standing for the error value.
func (g *generator) readValue(t ir.Type, label, errRet string, store func(expr string, addressable bool)) {
	w, n := g.w, g.names
	ret := func(e string) string {
		if errRet == "err" {
			return e
		}
		return "nil, " + e
	}
	switch t.Kind {
	case ir.KindScalar:
		sc := scalars[t.Scalar]
		w.Case("%s", sc.token)
		switch t.Scalar {
		case ir.Bool:
			store("kind == codecgen.TokenTrue", false)
		case ir.String:
			store("r.Text()", false)
		default:
			w.Linef("x, err := codecgen.%s(r)", sc.read)
			w.Open("if err != nil")
			w.Linef("return %s", ret("codecgen.WrapField("+strconv.Quote(label)+", err)"))
			w.Close()
			store("x", true)
		}
	case ir.KindObject:
		w.Case("codecgen.TokenStartObject")
		w.Linef("x := new(%s)", n.typeName(t.Object))
		g.checkRet("s."+n.decode(t.Object)+"(r, x)", ret("err"))
		store("x", true)
	case ir.KindArray:
		w.Case("codecgen.TokenStartArray")
		w.Linef("x, err := s.%s(r, v.%s[:0])", n.decodeArray(t.Codec), label)
		w.Open("if err != nil")
		w.Linef("return %s", ret("err"))
		w.Close()
		store("x", true)
	}
}

func (g *generator) readObject(o *ir.Object) {
	w, n := g.w, g.names
	t := n.typeName(o.ID)
	w.Blank()
	w.Comment("%s decodes the value at the current token into a new %s.", n.read(o.ID), t)
	w.Comment("A null token yields nil.")
	w.Open("func (s %s) %s(r codecgen.Reader) (*%s, error)", n.serializer(), n.read(o.ID), t)
	w.Open("switch kind := r.Kind(); kind")
	w.Case("codecgen.TokenNull")
	w.Line("return nil, nil")
	w.Case("codecgen.TokenStartObject")
	w.Linef("v := new(%s)", t)
	g.checkRet("s."+n.decode(o.ID)+"(r, v)", "nil, err")
	w.Line("return v, nil")
	w.Default()
	w.Linef("return nil, codecgen.UnexpectedToken(%s, kind)", strconv.Quote(t))
	w.Close()
	w.Close()
}

// arrayCodec emits the encode/decode pair of one array field.
func (g *generator) arrayCodec(c *ir.ArrayCodec) {
	w, n := g.w, g.names
	elem := n.elemType(c.Elem)
	label := ir.ExportName(c.Field)
	n.runtime = true

	w.Blank()
	w.Open("func (s %s) %s(w codecgen.Writer, items []%s) error", n.serializer(), n.encodeArray(c.ID), elem)
	w.Open("if items == nil")
	w.Line("return w.WriteNull()")
	w.Close()
	g.check("w.WriteStartArray()")
	w.Open("for _, item := range items")
	g.writeValue(c.Elem, "item", false)
	w.Close()
	w.Line("return w.WriteEndArray()")
	w.Close()

	w.Blank()
	w.Open("func (s %s) %s(r codecgen.Reader, dst []%s) ([]%s, error)", n.serializer(), n.decodeArray(c.ID), elem, elem)
	w.Open("if dst == nil")
	w.Linef("dst = []%s{}", elem)
	w.Close()
	w.Open("for")
	g.nextToken("nil, err")
	w.Open("switch kind")
	w.Case("codecgen.TokenEndArray")
	w.Line("return dst, nil")
	w.Case("codecgen.TokenNull")
	if c.Elem.Kind == ir.KindObject {
		w.Line("dst = append(dst, nil)")
	} else {
		w.Linef("return nil, &codecgen.NullElementError{Field: %s}", strconv.Quote(label))
	}
	g.readValue(c.Elem, label, "nil, err", func(expr string, _ bool) {
		w.Linef("dst = append(dst, %s)", expr)
	})
	w.Default()
	g.checkRet("r.Skip()", "nil, err")
	w.Close()
	w.Close()
	w.Close()
}
