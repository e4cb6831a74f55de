package codecgen

import (
	"errors"
	"fmt"

	eng "github.com/reoring/codecgen/internal/engine"
	"github.com/reoring/codecgen/internal/ir"
)

// Compile errors. They are defined in the compiler packages and aliased here
// so callers can match them with errors.As.
type (
	SchemaSyntaxError       = ir.SchemaSyntaxError
	UnresolvedTypeError     = ir.UnresolvedTypeError
	UnsupportedFeatureError = ir.UnsupportedFeatureError
	DuplicateFieldError     = ir.DuplicateFieldError
	GenerateError           = ir.GenerateError
)

// Decode errors.
var (
	// ErrEndOfStream is wrapped by Reader.Next when input ends before the
	// value being decoded is complete.
	ErrEndOfStream = errors.New("unexpected end of token stream")
	// ErrMaxDepth is returned by readers built with ReadOptions.MaxDepth.
	ErrMaxDepth = eng.ErrMaxDepth
)

// DuplicateKeyError is returned by readers built with
// ReadOptions.RejectDuplicateKeys.
type DuplicateKeyError = eng.DuplicateKeyError

// UnexpectedTokenError reports a token whose kind does not fit the declared
// type of the field being decoded.
type UnexpectedTokenError struct {
	Field string
	Kind  TokenKind
}

func (e *UnexpectedTokenError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unexpected token type: %s", e.Kind)
	}
	return fmt.Sprintf("unexpected token type for %s: %s", e.Field, e.Kind)
}

// UnexpectedToken returns an *UnexpectedTokenError. Generated code calls it
// from the default branch of every value dispatch.
func UnexpectedToken(field string, kind TokenKind) error {
	return &UnexpectedTokenError{Field: field, Kind: kind}
}

// NullElementError reports a null inside an array of scalars.
type NullElementError struct {
	Field string
}

func (e *NullElementError) Error() string {
	return fmt.Sprintf("null element in %s", e.Field)
}

// FieldError wraps a conversion failure (overflow, malformed number) with the
// field being decoded.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// WrapField returns err wrapped in a *FieldError, or nil.
func WrapField(field string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Field: field, Err: err}
}
