package codecgen

import (
	"errors"
	"fmt"
	"io"
	"sync"

	eng "github.com/reoring/codecgen/internal/engine"
)

// TokenKind is the category of the token a Reader is positioned on.
type TokenKind int

const (
	TokenNone TokenKind = iota
	TokenStartObject
	TokenEndObject
	TokenStartArray
	TokenEndArray
	TokenFieldName
	TokenNull
	TokenTrue
	TokenFalse
	TokenNumber
	TokenString
)

func (k TokenKind) String() string {
	switch k {
	case TokenNone:
		return "None"
	case TokenStartObject:
		return "StartObject"
	case TokenEndObject:
		return "EndObject"
	case TokenStartArray:
		return "StartArray"
	case TokenEndArray:
		return "EndArray"
	case TokenFieldName:
		return "FieldName"
	case TokenNull:
		return "Null"
	case TokenTrue:
		return "True"
	case TokenFalse:
		return "False"
	case TokenNumber:
		return "Number"
	case TokenString:
		return "String"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Reader is a forward-only token cursor. Generated decoders call Next to
// advance, inspect Kind and Text, and Skip values they do not handle.
type Reader interface {
	// Next advances to the next token. Exhausted input is reported as an
	// error wrapping ErrEndOfStream.
	Next() (TokenKind, error)
	// Kind returns the current token kind.
	Kind() TokenKind
	// Text returns the field name, string value or number literal of the
	// current token.
	Text() string
	// Skip moves past the current value. On a field name it skips the
	// field's value; on a start token it skips to the matching end token;
	// on any other token it does nothing.
	Skip() error
}

// ReadOptions controls runtime enforcement on a Reader.
type ReadOptions struct {
	// MaxDepth rejects input nested deeper than this many containers (0 = unlimited).
	MaxDepth int
	// RejectDuplicateKeys fails on an object repeating a key.
	RejectDuplicateKeys bool
}

func (o ReadOptions) engine() eng.EnforceOptions {
	return eng.EnforceOptions{MaxDepth: o.MaxDepth, RejectDuplicates: o.RejectDuplicateKeys}
}

// JSONDriver converts JSON input into a Reader via a pluggable SPI. The default
// implementation is based on goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Reader
	NewBytes(b []byte) Reader
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) Reader { return SourceFromEngine(eng.NewJSONReader(r)) }
func (defaultJSONDriver) NewBytes(b []byte) Reader     { return SourceFromEngine(eng.NewJSONBytes(b)) }
func (defaultJSONDriver) Name() string                 { return "go-json" }

// JSONReader wraps an io.Reader as a JSON Reader.
func JSONReader(r io.Reader) Reader { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Reader.
func JSONBytes(b []byte) Reader { return CurrentJSONDriver().NewBytes(b) }

// JSONReaderWith wraps an io.Reader as a JSON Reader with enforcement.
func JSONReaderWith(r io.Reader, opt ReadOptions) Reader {
	return Enforce(JSONReader(r), opt)
}

// SourceFromEngine wraps an engine token source as a Reader. Alternative
// sources under source/ use it to plug into generated code.
func SourceFromEngine(inner eng.TokenSource) Reader {
	return &tokenReader{src: inner}
}

// Enforce wraps r with the checks in opt. Readers built by this package are
// unwrapped to their token source so enforcement also covers skipped values.
func Enforce(r Reader, opt ReadOptions) Reader {
	if !opt.engine().Enabled() {
		return r
	}
	if tr, ok := r.(*tokenReader); ok && tr.kind == TokenNone {
		return SourceFromEngine(eng.WrapWithEnforcement(tr.src, opt.engine()))
	}
	return SourceFromEngine(eng.WrapWithEnforcement(&readerSource{r: r}, opt.engine()))
}

type tokenReader struct {
	src  eng.TokenSource
	tok  eng.Token
	kind TokenKind
}

func (t *tokenReader) Next() (TokenKind, error) {
	tok, err := t.src.NextToken()
	if err != nil {
		return TokenNone, t.fail(err)
	}
	t.tok = tok
	t.kind = fromEngineToken(tok)
	return t.kind, nil
}

func (t *tokenReader) fail(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrEndOfStream, err)
	}
	return err
}

func (t *tokenReader) Kind() TokenKind { return t.kind }

func (t *tokenReader) Text() string {
	switch t.tok.Kind {
	case eng.KindNumber:
		return t.tok.Number
	case eng.KindBool:
		if t.tok.Bool {
			return "true"
		}
		return "false"
	default:
		return t.tok.String
	}
}

func (t *tokenReader) Skip() error {
	switch t.kind {
	case TokenFieldName:
		if _, err := t.Next(); err != nil {
			return err
		}
		if t.kind != TokenStartObject && t.kind != TokenStartArray {
			return nil
		}
	case TokenStartObject, TokenStartArray:
	default:
		return nil
	}
	if err := eng.SkipValue(t.src, t.tok); err != nil {
		return t.fail(err)
	}
	if t.kind == TokenStartObject {
		t.kind = TokenEndObject
		t.tok = eng.Token{Kind: eng.KindEndObject}
	} else {
		t.kind = TokenEndArray
		t.tok = eng.Token{Kind: eng.KindEndArray}
	}
	return nil
}

func fromEngineToken(t eng.Token) TokenKind {
	switch t.Kind {
	case eng.KindBeginObject:
		return TokenStartObject
	case eng.KindEndObject:
		return TokenEndObject
	case eng.KindBeginArray:
		return TokenStartArray
	case eng.KindEndArray:
		return TokenEndArray
	case eng.KindKey:
		return TokenFieldName
	case eng.KindString:
		return TokenString
	case eng.KindNumber:
		return TokenNumber
	case eng.KindBool:
		if t.Bool {
			return TokenTrue
		}
		return TokenFalse
	case eng.KindNull:
		return TokenNull
	default:
		return TokenNone
	}
}

// readerSource adapts a foreign Reader back into an engine token source.
type readerSource struct{ r Reader }

func (s *readerSource) NextToken() (eng.Token, error) {
	kind, err := s.r.Next()
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	switch kind {
	case TokenStartObject:
		return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
	case TokenEndObject:
		return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
	case TokenStartArray:
		return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
	case TokenEndArray:
		return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
	case TokenFieldName:
		return eng.Token{Kind: eng.KindKey, String: s.r.Text(), Offset: -1}, nil
	case TokenString:
		return eng.Token{Kind: eng.KindString, String: s.r.Text(), Offset: -1}, nil
	case TokenNumber:
		return eng.Token{Kind: eng.KindNumber, Number: s.r.Text(), Offset: -1}, nil
	case TokenTrue, TokenFalse:
		return eng.Token{Kind: eng.KindBool, Bool: kind == TokenTrue, Offset: -1}, nil
	default:
		return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
	}
}

func (s *readerSource) Location() int64 { return -1 }
