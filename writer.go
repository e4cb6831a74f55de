package codecgen

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Writer is a forward-only token sink. Generated encoders call it in
// document order.
type Writer interface {
	WriteStartObject() error
	WriteEndObject() error
	WriteStartArray() error
	WriteEndArray() error
	WriteFieldName(name string) error
	WriteNull() error
	WriteBool(v bool) error
	WriteInt32(v int32) error
	WriteInt64(v int64) error
	WriteFloat32(v float32) error
	WriteFloat64(v float64) error
	WriteDecimal(v decimal.Decimal) error
	WriteString(v string) error
}

var (
	errUnbalanced = errors.New("codecgen: unbalanced end token")
	errNonFinite  = errors.New("codecgen: NaN and infinity are not valid JSON numbers")
	errFieldName  = errors.New("codecgen: field name outside an object or without a value")
)

// JSONWriter writes tokens as JSON text. Output is compact unless Indent is
// set.
type JSONWriter struct {
	Indent string

	w     io.Writer
	stack []jsonFrame
	named bool
}

type jsonFrame struct {
	object bool
	count  int
}

// NewJSONWriter returns a JSONWriter writing to w.
func NewJSONWriter(w io.Writer) *JSONWriter { return &JSONWriter{w: w} }

func (jw *JSONWriter) raw(s string) error {
	_, err := io.WriteString(jw.w, s)
	return err
}

func (jw *JSONWriter) newline(depth int) error {
	if jw.Indent == "" {
		return nil
	}
	return jw.raw("\n" + strings.Repeat(jw.Indent, depth))
}

// element writes the separator that precedes a new array element or object
// member.
func (jw *JSONWriter) element() error {
	if jw.named {
		jw.named = false
		return nil
	}
	n := len(jw.stack)
	if n == 0 {
		return nil
	}
	top := &jw.stack[n-1]
	if top.count > 0 {
		if err := jw.raw(","); err != nil {
			return err
		}
	}
	top.count++
	return jw.newline(n)
}

func (jw *JSONWriter) scalar(s string) error {
	if err := jw.element(); err != nil {
		return err
	}
	return jw.raw(s)
}

func (jw *JSONWriter) open(object bool, tok string) error {
	if err := jw.element(); err != nil {
		return err
	}
	jw.stack = append(jw.stack, jsonFrame{object: object})
	return jw.raw(tok)
}

func (jw *JSONWriter) close(object bool, tok string) error {
	n := len(jw.stack)
	if n == 0 || jw.stack[n-1].object != object || jw.named {
		return errUnbalanced
	}
	count := jw.stack[n-1].count
	jw.stack = jw.stack[:n-1]
	if count > 0 {
		if err := jw.newline(n - 1); err != nil {
			return err
		}
	}
	return jw.raw(tok)
}

func (jw *JSONWriter) WriteStartObject() error { return jw.open(true, "{") }
func (jw *JSONWriter) WriteEndObject() error   { return jw.close(true, "}") }
func (jw *JSONWriter) WriteStartArray() error  { return jw.open(false, "[") }
func (jw *JSONWriter) WriteEndArray() error    { return jw.close(false, "]") }

// WriteFieldName starts an object member. It fails unless the innermost open
// container is an object whose previous member has its value.
func (jw *JSONWriter) WriteFieldName(name string) error {
	if n := len(jw.stack); n == 0 || !jw.stack[n-1].object || jw.named {
		return errFieldName
	}
	if err := jw.element(); err != nil {
		return err
	}
	q, err := j.Marshal(name)
	if err != nil {
		return err
	}
	sep := ":"
	if jw.Indent != "" {
		sep = ": "
	}
	if err := jw.raw(string(q) + sep); err != nil {
		return err
	}
	jw.named = true
	return nil
}

func (jw *JSONWriter) WriteNull() error { return jw.scalar("null") }

func (jw *JSONWriter) WriteBool(v bool) error { return jw.scalar(strconv.FormatBool(v)) }

func (jw *JSONWriter) WriteInt32(v int32) error { return jw.scalar(strconv.FormatInt(int64(v), 10)) }

func (jw *JSONWriter) WriteInt64(v int64) error { return jw.scalar(strconv.FormatInt(v, 10)) }

func (jw *JSONWriter) WriteFloat32(v float32) error { return jw.float(float64(v), 32) }

func (jw *JSONWriter) WriteFloat64(v float64) error { return jw.float(v, 64) }

func (jw *JSONWriter) float(v float64, bits int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errNonFinite
	}
	return jw.scalar(strconv.FormatFloat(v, 'g', -1, bits))
}

func (jw *JSONWriter) WriteDecimal(v decimal.Decimal) error { return jw.scalar(v.String()) }

func (jw *JSONWriter) WriteString(v string) error {
	q, err := j.Marshal(v)
	if err != nil {
		return err
	}
	return jw.scalar(string(q))
}
