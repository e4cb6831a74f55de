// Package json provides a codecgen.JSONDriver backed by encoding/json. It
// reports byte offsets through Location, which the default driver does not.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/reoring/codecgen"
	eng "github.com/reoring/codecgen/internal/engine"
)

// Driver returns a codecgen.JSONDriver backed by encoding/json.
func Driver() codecgen.JSONDriver { return driver{} }

type driver struct{}

func (driver) NewReader(r io.Reader) codecgen.Reader { return codecgen.SourceFromEngine(NewReader(r)) }
func (driver) NewBytes(b []byte) codecgen.Reader     { return codecgen.SourceFromEngine(NewBytes(b)) }
func (driver) Name() string                          { return "encoding/json" }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type jsonSource struct {
	dec        *json.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine token source.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine token source.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return s.token(eng.Token{Kind: eng.KindBeginObject}), nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return s.token(eng.Token{Kind: eng.KindBeginArray}), nil
		case '}':
			s.pop()
			return s.value(eng.Token{Kind: eng.KindEndObject}), nil
		default:
			s.pop()
			return s.value(eng.Token{Kind: eng.KindEndArray}), nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return s.token(eng.Token{Kind: eng.KindKey, String: v}), nil
		}
		return s.value(eng.Token{Kind: eng.KindString, String: v}), nil
	case bool:
		return s.value(eng.Token{Kind: eng.KindBool, Bool: v}), nil
	case json.Number:
		return s.value(eng.Token{Kind: eng.KindNumber, Number: string(v)}), nil
	case float64:
		return s.value(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}), nil
	}
	return s.value(eng.Token{Kind: eng.KindNull}), nil
}

func (s *jsonSource) token(t eng.Token) eng.Token {
	t.Offset = s.lastOffset
	return t
}

// value marks the pending member of the enclosing object as complete.
func (s *jsonSource) value(t eng.Token) eng.Token {
	if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject {
		s.stack[n-1].expectingKey = true
	}
	return s.token(t)
}

func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
