// Package ir defines the resolved model consumed by the code generator.
// This package is internal and not part of the public API. Values are built
// once by the resolver and never mutated afterwards.
package ir

import "strings"

// Kind tags the variant held by a Type.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
	KindDictionary
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	default:
		return "unknown"
	}
}

// Scalar enumerates the scalar kinds a field may resolve to.
type Scalar int

const (
	Bool Scalar = iota
	Int32
	Int64
	Decimal
	Float
	Double
	String
)

func (s Scalar) String() string {
	switch s {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Decimal:
		return "decimal"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// ObjectID is a handle into Root.Objects. IDs are assigned at registration,
// before any field is resolved, so references may point forward or back at
// the declaring object itself.
type ObjectID int

// NoObject marks a Field without a declaring object.
const NoObject ObjectID = -1

// Type is a closed tagged union. Only the members relevant to Kind are set:
//
//	KindScalar:     Scalar
//	KindObject:     Object
//	KindArray:      Elem, Codec (empty on interface-only objects)
//	KindDictionary: Elem
type Type struct {
	Kind   Kind
	Scalar Scalar
	Object ObjectID
	Elem   *Type
	Codec  string
}

// ScalarType returns a scalar Type.
func ScalarType(s Scalar) Type { return Type{Kind: KindScalar, Scalar: s} }

// ObjectType returns a reference to a registered object.
func ObjectType(id ObjectID) Type { return Type{Kind: KindObject, Object: id} }

// ArrayOf returns an array Type whose elements are elem, encoded by codec.
func ArrayOf(elem Type, codec string) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e, Codec: codec}
}

// DictionaryOf returns a dictionary Type whose values are elem.
func DictionaryOf(elem Type) Type {
	e := elem
	return Type{Kind: KindDictionary, Elem: &e}
}

// Field is one resolved field of an object.
type Field struct {
	Key    string // wire key
	Name   string // in-memory field name as written in the schema
	Type   Type
	Origin ObjectID // object that declared the field; differs from the owner when inherited
}

// Object is a registered, resolved object.
type Object struct {
	ID        ObjectID
	Name      string // qualified name as declared, e.g. "Subspace.Sample"
	TypeName  string // last segment of Name
	Interface bool
	Fields    []Field
	Wildcard  *Field
	Bases     []ObjectID
}

// Namespace returns the dotted prefix of the object's qualified name.
func (o *Object) Namespace() string {
	if i := strings.LastIndexByte(o.Name, '.'); i >= 0 {
		return o.Name[:i]
	}
	return ""
}

// ArrayCodec is a synthesized encoder/decoder pair for one array field of
// one concrete object.
type ArrayCodec struct {
	ID    string
	Owner ObjectID
	Field string
	Elem  Type
}

// Access is the visibility of generated identifiers.
type Access int

const (
	Public Access = iota
	Internal
)

// Aggregate describes a plain data holder to emit for an object.
type Aggregate struct {
	Object ObjectID
}

// Root is the complete resolved model for one compiler run.
type Root struct {
	Package    string
	Serializer string
	Access     Access
	Objects    []*Object
	Arrays     []*ArrayCodec
	Aggregates []Aggregate
}

// Object returns the object registered under id.
func (r *Root) Object(id ObjectID) *Object { return r.Objects[id] }

// Codec returns the array codec with the given id, or nil.
func (r *Root) Codec(id string) *ArrayCodec {
	for _, c := range r.Arrays {
		if c.ID == id {
			return c
		}
	}
	return nil
}
