package ir

import "fmt"

// SchemaSyntaxError reports a malformed schema line.
type SchemaSyntaxError struct {
	Line   int
	Text   string
	Reason string
}

func (e *SchemaSyntaxError) Error() string {
	return fmt.Sprintf("schema syntax error at line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// UnresolvedTypeError reports a field type or base name that names no
// declared object.
type UnresolvedTypeError struct {
	Object string
	Field  string // empty for inheritance references
	Type   string
}

func (e *UnresolvedTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: unable to find base type %q", e.Object, e.Type)
	}
	return fmt.Sprintf("%s.%s: unable to find requested type %q", e.Object, e.Field, e.Type)
}

// UnsupportedFeatureError reports schema constructs the compiler does not
// handle.
type UnsupportedFeatureError struct {
	Object  string
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("%s: not supported: %s", e.Object, e.Feature)
}

// DuplicateFieldError reports two fields of one object sharing a wire key or
// field name, or a second wildcard.
type DuplicateFieldError struct {
	Object string
	Key    string
	First  string // qualified name of the object that contributed the first field
	Second string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s: field %q from %s conflicts with the one from %s", e.Object, e.Key, e.Second, e.First)
}

// GenerateError reports a failure to emit or format Go source.
type GenerateError struct {
	Err error
}

func (e *GenerateError) Error() string { return "generate: " + e.Err.Error() }

func (e *GenerateError) Unwrap() error { return e.Err }
