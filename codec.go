package codecgen

import (
	"bytes"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// Codec is the encode/decode pair generated for one concrete type.
//
// Decode expects r to be positioned on the object's start token and consumes
// everything up to and including the matching end token. Encode writes v,
// or null when v is nil.
type Codec[T any] interface {
	Encode(w Writer, v *T) error
	Decode(r Reader, v *T) error
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs[T any] struct {
	EncodeFunc func(Writer, *T) error
	DecodeFunc func(Reader, *T) error
}

func (c CodecFuncs[T]) Encode(w Writer, v *T) error { return c.EncodeFunc(w, v) }
func (c CodecFuncs[T]) Decode(r Reader, v *T) error { return c.DecodeFunc(r, v) }

// Decode reads one top-level value from r into v. A null value leaves v
// untouched.
func Decode[T any](c Codec[T], r Reader, v *T) error {
	kind, err := r.Next()
	if err != nil {
		return err
	}
	switch kind {
	case TokenNull:
		return nil
	case TokenStartObject:
		return c.Decode(r, v)
	default:
		return UnexpectedToken("", kind)
	}
}

// Unmarshal decodes JSON data into v.
func Unmarshal[T any](c Codec[T], data []byte, v *T) error {
	return Decode(c, JSONBytes(data), v)
}

// UnmarshalFrom decodes JSON read from r into v.
func UnmarshalFrom[T any](c Codec[T], r io.Reader, opt ReadOptions, v *T) error {
	return Decode(c, JSONReaderWith(r, opt), v)
}

// Marshal encodes v as compact JSON.
func Marshal[T any](c Codec[T], v *T) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(NewJSONWriter(&buf), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes v as JSON with one indent per nesting level.
func MarshalIndent[T any](c Codec[T], v *T, indent string) ([]byte, error) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	w.Indent = indent
	if err := c.Encode(w, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// ReadInt32 converts the current number token.
func ReadInt32(r Reader) (int32, error) {
	n, err := strconv.ParseInt(r.Text(), 10, 32)
	return int32(n), err
}

// ReadInt64 converts the current number token.
func ReadInt64(r Reader) (int64, error) {
	return strconv.ParseInt(r.Text(), 10, 64)
}

// ReadFloat32 converts the current number token.
func ReadFloat32(r Reader) (float32, error) {
	f, err := strconv.ParseFloat(r.Text(), 32)
	return float32(f), err
}

// ReadFloat64 converts the current number token.
func ReadFloat64(r Reader) (float64, error) {
	return strconv.ParseFloat(r.Text(), 64)
}

// ReadDecimal converts the current number token without loss of precision.
func ReadDecimal(r Reader) (decimal.Decimal, error) {
	return decimal.NewFromString(r.Text())
}
