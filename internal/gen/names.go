package gen

import (
	"unicode"

	"github.com/reoring/codecgen/internal/ir"
)

// names resolves the Go identifiers of one generated file.
type names struct {
	root *ir.Root
	// decimal and runtime record which imports the emitted code needs.
	decimal bool
	runtime bool
}

func (n *names) vis(s string) string {
	if n.root.Access == ir.Internal {
		return ir.Unexport(s)
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func (n *names) serializer() string { return n.vis(n.root.Serializer) }

func (n *names) typeName(id ir.ObjectID) string { return n.vis(n.root.Object(id).TypeName) }

func (n *names) codecVar(id ir.ObjectID) string { return n.typeName(id) + "Codec" }

func (n *names) encode(id ir.ObjectID) string { return n.vis("Encode" + n.root.Object(id).TypeName) }

func (n *names) decode(id ir.ObjectID) string { return n.vis("Decode" + n.root.Object(id).TypeName) }

func (n *names) read(id ir.ObjectID) string { return n.vis("Read" + n.root.Object(id).TypeName) }

func (n *names) decodeField(id ir.ObjectID) string {
	return "decode" + n.root.Object(id).TypeName + "Field"
}

func (n *names) encodeArray(codec string) string { return "encode_" + codec }

func (n *names) decodeArray(codec string) string { return "decode_" + codec }

// field returns the struct field name for a schema field.
func (n *names) field(f ir.Field) string { return ir.ExportName(f.Name) }

func (n *names) getter(f ir.Field) string { return "Get" + ir.ExportName(f.Name) }

// scalars maps each scalar to its Go type and runtime helpers. Bool and
// String values come straight from the token and have no read helper.
var scalars = map[ir.Scalar]struct {
	goType string
	write  string
	read   string
	token  string
}{
	ir.Bool:    {"bool", "WriteBool", "", "codecgen.TokenTrue, codecgen.TokenFalse"},
	ir.Int32:   {"int32", "WriteInt32", "ReadInt32", "codecgen.TokenNumber"},
	ir.Int64:   {"int64", "WriteInt64", "ReadInt64", "codecgen.TokenNumber"},
	ir.Decimal: {"decimal.Decimal", "WriteDecimal", "ReadDecimal", "codecgen.TokenNumber"},
	ir.Float:   {"float32", "WriteFloat32", "ReadFloat32", "codecgen.TokenNumber"},
	ir.Double:  {"float64", "WriteFloat64", "ReadFloat64", "codecgen.TokenNumber"},
	ir.String:  {"string", "WriteString", "", "codecgen.TokenString"},
}

// elemType is the Go type of a value held in an array or dictionary.
func (n *names) elemType(t ir.Type) string {
	switch t.Kind {
	case ir.KindScalar:
		if t.Scalar == ir.Decimal {
			n.decimal = true
		}
		return scalars[t.Scalar].goType
	case ir.KindObject:
		return "*" + n.typeName(t.Object)
	default:
		return "any"
	}
}

// goType is the Go type of a struct field.
func (n *names) goType(t ir.Type) string {
	switch t.Kind {
	case ir.KindScalar:
		return "*" + n.elemType(t)
	case ir.KindObject:
		return n.elemType(t)
	case ir.KindArray:
		return "[]" + n.elemType(*t.Elem)
	case ir.KindDictionary:
		n.runtime = true
		return "*codecgen.Dict[" + n.elemType(*t.Elem) + "]"
	default:
		return "any"
	}
}
