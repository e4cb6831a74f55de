// Package resolve turns parsed schema objects into the resolved model.
//
// Resolution runs in two phases. Every object is registered first, so field
// types may reference objects declared later or the declaring object itself.
// Fields are then resolved in declaration order; inheritance copies the
// already flattened fields of each base, which therefore must be declared
// earlier in the text.
package resolve

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/reoring/codecgen/internal/ir"
	"github.com/reoring/codecgen/internal/schema"
)

// Options carries the settings that shape the resolved model.
type Options struct {
	Package    string
	Serializer string
	Access     ir.Access
	// MakeTypes keeps plain aggregate descriptors in the model.
	MakeTypes bool
}

var scalars = map[string]ir.Scalar{
	"bool":    ir.Bool,
	"Boolean": ir.Bool,
	"int":     ir.Int32,
	"int32":   ir.Int32,
	"Int32":   ir.Int32,
	"long":    ir.Int64,
	"int64":   ir.Int64,
	"Int64":   ir.Int64,
	"decimal": ir.Decimal,
	"Decimal": ir.Decimal,
	"float":   ir.Float,
	"float32": ir.Float,
	"Single":  ir.Float,
	"double":  ir.Double,
	"float64": ir.Double,
	"Double":  ir.Double,
	"string":  ir.String,
	"String":  ir.String,
}

// LookupScalar reports the scalar named by a schema keyword.
func LookupScalar(name string) (ir.Scalar, bool) {
	s, ok := scalars[name]
	return s, ok
}

// SplitClass splits a qualified serializer name "pkg.Serializer" into the
// package name (last path segment before the final dot) and the type name.
func SplitClass(class string) (pkg, name string, err error) {
	i := strings.LastIndexByte(class, '.')
	if i <= 0 || i == len(class)-1 {
		return "", "", fmt.Errorf("class %q must be of the form package.Serializer", class)
	}
	pkg, name = class[:i], class[i+1:]
	if j := strings.LastIndexAny(pkg, "./"); j >= 0 {
		pkg = pkg[j+1:]
	}
	pkg = strings.ToLower(pkg)
	if !token.IsIdentifier(pkg) {
		return "", "", fmt.Errorf("class %q: %q is not a valid package name", class, pkg)
	}
	if !token.IsIdentifier(name) {
		return "", "", fmt.Errorf("class %q: %q is not a valid type name", class, name)
	}
	return pkg, name, nil
}

// ParseAccess maps an access keyword to ir.Access. The empty string is
// public.
func ParseAccess(s string) (ir.Access, error) {
	switch s {
	case "", "public":
		return ir.Public, nil
	case "internal", "private":
		return ir.Internal, nil
	default:
		return ir.Public, fmt.Errorf("unknown access %q (want public, internal or private)", s)
	}
}

type resolver struct {
	root     *ir.Root
	byName   map[string]ir.ObjectID
	resolved []bool
	codecIDs map[string]struct{}
}

// Resolve builds the resolved model for objs.
func Resolve(objs []schema.Object, opt Options) (*ir.Root, error) {
	r := &resolver{
		root: &ir.Root{
			Package:    opt.Package,
			Serializer: opt.Serializer,
			Access:     opt.Access,
		},
		byName:   make(map[string]ir.ObjectID, len(objs)),
		resolved: make([]bool, len(objs)),
		codecIDs: make(map[string]struct{}),
	}
	if err := r.register(objs); err != nil {
		return nil, err
	}
	for i := range objs {
		if err := r.resolveObject(&objs[i]); err != nil {
			return nil, err
		}
		r.resolved[i] = true
	}
	if opt.MakeTypes {
		for _, o := range r.root.Objects {
			r.root.Aggregates = append(r.root.Aggregates, ir.Aggregate{Object: o.ID})
		}
	}
	return r.root, nil
}

// register allocates a placeholder for every object before any field is
// resolved.
func (r *resolver) register(objs []schema.Object) error {
	typeNames := make(map[string]string, len(objs))
	for i, so := range objs {
		if _, dup := r.byName[so.Name]; dup {
			return &ir.UnsupportedFeatureError{Object: so.Name, Feature: "object declared more than once"}
		}
		typeName := ir.LastSegment(so.Name)
		if !token.IsIdentifier(typeName) {
			return &ir.UnsupportedFeatureError{Object: so.Name, Feature: fmt.Sprintf("%q is not a valid Go type name", typeName)}
		}
		if prev, dup := typeNames[typeName]; dup {
			return &ir.UnsupportedFeatureError{Object: so.Name, Feature: fmt.Sprintf("type name %s collides with %s", typeName, prev)}
		}
		typeNames[typeName] = so.Name
		id := ir.ObjectID(i)
		r.byName[so.Name] = id
		r.root.Objects = append(r.root.Objects, &ir.Object{
			ID:        id,
			Name:      so.Name,
			TypeName:  typeName,
			Interface: so.Interface,
		})
	}
	return nil
}

// fieldSet collects the flattened fields of one object and rejects
// conflicting keys or names.
type fieldSet struct {
	r      *resolver
	obj    *ir.Object
	byKey  map[string]int
	byName map[string]int
}

func (fs *fieldSet) conflict(existing ir.Field, f ir.Field, key string) error {
	return &ir.DuplicateFieldError{
		Object: fs.obj.Name,
		Key:    key,
		First:  fs.r.root.Object(existing.Origin).Name,
		Second: fs.r.root.Object(f.Origin).Name,
	}
}

// seen reports whether f was already copied through another base.
func (fs *fieldSet) seen(f ir.Field) bool {
	i, ok := fs.byKey[f.Key]
	return ok && fs.obj.Fields[i].Origin == f.Origin && fs.obj.Fields[i].Name == f.Name
}

func (fs *fieldSet) add(f ir.Field) error {
	if i, ok := fs.byKey[f.Key]; ok {
		return fs.conflict(fs.obj.Fields[i], f, f.Key)
	}
	goName := ir.ExportName(f.Name)
	if i, ok := fs.byName[goName]; ok {
		return fs.conflict(fs.obj.Fields[i], f, f.Name)
	}
	if fs.obj.Wildcard != nil && ir.ExportName(fs.obj.Wildcard.Name) == goName {
		return fs.conflict(*fs.obj.Wildcard, f, f.Name)
	}
	fs.byKey[f.Key] = len(fs.obj.Fields)
	fs.byName[goName] = len(fs.obj.Fields)
	fs.obj.Fields = append(fs.obj.Fields, f)
	return nil
}

func (fs *fieldSet) setWildcard(f ir.Field, inherited bool) error {
	if w := fs.obj.Wildcard; w != nil {
		if inherited && w.Origin == f.Origin {
			return nil
		}
		return fs.conflict(*w, f, f.Key)
	}
	if i, ok := fs.byName[ir.ExportName(f.Name)]; ok {
		return fs.conflict(fs.obj.Fields[i], f, f.Name)
	}
	fs.obj.Wildcard = &f
	return nil
}

func (r *resolver) resolveObject(so *schema.Object) error {
	obj := r.root.Object(r.byName[so.Name])
	fs := &fieldSet{r: r, obj: obj, byKey: map[string]int{}, byName: map[string]int{}}

	for _, baseName := range so.Inherit {
		id, ok := r.byName[baseName]
		if !ok {
			return &ir.UnresolvedTypeError{Object: so.Name, Type: baseName}
		}
		if !r.resolved[id] {
			return &ir.UnsupportedFeatureError{
				Object:  so.Name,
				Feature: fmt.Sprintf("base %s must be declared before the objects inheriting from it", baseName),
			}
		}
		base := r.root.Object(id)
		obj.Bases = append(obj.Bases, id)
		for _, f := range base.Fields {
			if fs.seen(f) {
				continue
			}
			if f.Type.Kind == ir.KindArray {
				f.Type = ir.ArrayOf(*f.Type.Elem, r.codecFor(obj, f.Name, *f.Type.Elem))
			}
			if err := fs.add(f); err != nil {
				return err
			}
		}
		if base.Wildcard != nil {
			if err := fs.setWildcard(*base.Wildcard, true); err != nil {
				return err
			}
		}
	}

	for _, p := range so.Properties {
		f, err := r.resolveProperty(obj, p)
		if err != nil {
			return err
		}
		if f.Type.Kind == ir.KindDictionary {
			err = fs.setWildcard(f, false)
		} else {
			err = fs.add(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveProperty(obj *ir.Object, p schema.Property) (ir.Field, error) {
	f := ir.Field{Key: p.Key, Name: p.Name, Origin: obj.ID}
	unsupported := func(format string, args ...any) (ir.Field, error) {
		return ir.Field{}, &ir.UnsupportedFeatureError{Object: obj.Name, Feature: fmt.Sprintf(format, args...)}
	}
	if strings.ContainsAny(p.Type, "[]{}") || (p.IsArray && p.IsDictionary) {
		return unsupported("nested container type for %s", p.Name)
	}
	if p.IsDictionary != (p.Key == "*") {
		if p.IsDictionary {
			return unsupported("dictionary field %s must use the * key", p.Name)
		}
		return unsupported("the * key on %s requires a {type} dictionary", p.Name)
	}
	elem, err := r.resolveType(obj, p)
	if err != nil {
		return ir.Field{}, err
	}
	switch {
	case p.IsArray:
		f.Type = ir.ArrayOf(elem, r.codecFor(obj, p.Name, elem))
	case p.IsDictionary:
		f.Type = ir.DictionaryOf(elem)
	default:
		f.Type = elem
	}
	return f, nil
}

func (r *resolver) resolveType(obj *ir.Object, p schema.Property) (ir.Type, error) {
	if s, ok := scalars[p.Type]; ok {
		return ir.ScalarType(s), nil
	}
	if id, ok := r.byName[p.Type]; ok {
		if r.root.Object(id).Interface {
			return ir.Type{}, &ir.UnsupportedFeatureError{
				Object:  obj.Name,
				Feature: fmt.Sprintf("field %s refers to interface-only object %s, which has no codec", p.Name, p.Type),
			}
		}
		return ir.ObjectType(id), nil
	}
	return ir.Type{}, &ir.UnresolvedTypeError{Object: obj.Name, Field: p.Name, Type: p.Type}
}

// codecFor registers an array codec for field on a concrete object. The id
// derives from the owner's type name and the field name so output is stable
// across runs. Interface-only objects get no codec.
func (r *resolver) codecFor(obj *ir.Object, field string, elem ir.Type) string {
	if obj.Interface {
		return ""
	}
	base := obj.TypeName + ir.ExportName(field)
	id := base
	for n := 2; ; n++ {
		if _, taken := r.codecIDs[id]; !taken {
			break
		}
		id = base + strconv.Itoa(n)
	}
	r.codecIDs[id] = struct{}{}
	r.root.Arrays = append(r.root.Arrays, &ir.ArrayCodec{ID: id, Owner: obj.ID, Field: field, Elem: elem})
	return id
}
