package codecgen

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	eng "github.com/reoring/codecgen/internal/engine"
)

// point is a hand-written codec in the shape the generator produces.
type point struct {
	X *int32
	Y *string
}

var pointCodec Codec[point] = CodecFuncs[point]{EncodeFunc: encodePoint, DecodeFunc: decodePoint}

func encodePoint(w Writer, v *point) error {
	if v == nil {
		return w.WriteNull()
	}
	if err := w.WriteStartObject(); err != nil {
		return err
	}
	if v.X != nil {
		if err := w.WriteFieldName("x"); err != nil {
			return err
		}
		if err := w.WriteInt32(*v.X); err != nil {
			return err
		}
	}
	if v.Y != nil {
		if err := w.WriteFieldName("y"); err != nil {
			return err
		}
		if err := w.WriteString(*v.Y); err != nil {
			return err
		}
	}
	return w.WriteEndObject()
}

func decodePoint(r Reader, v *point) error {
	for {
		kind, err := r.Next()
		if err != nil {
			return err
		}
		switch kind {
		case TokenEndObject:
			return nil
		case TokenFieldName:
			switch r.Text() {
			case "x":
				kind, err := r.Next()
				if err != nil {
					return err
				}
				if kind != TokenNumber {
					return UnexpectedToken("X", kind)
				}
				x, err := ReadInt32(r)
				if err != nil {
					return WrapField("X", err)
				}
				v.X = &x
			case "y":
				kind, err := r.Next()
				if err != nil {
					return err
				}
				if kind != TokenString {
					return UnexpectedToken("Y", kind)
				}
				v.Y = Ptr(r.Text())
			default:
				if err := r.Skip(); err != nil {
					return err
				}
			}
		}
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	in := &point{X: Ptr[int32](3), Y: Ptr("y")}
	data, err := Marshal(pointCodec, in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"x":3,"y":"y"}` {
		t.Fatalf("Marshal = %s", data)
	}
	out := new(point)
	if err := Unmarshal(pointCodec, data, out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip (-in +out):\n%s", diff)
	}

	if data, _ := Marshal(pointCodec, nil); string(data) != "null" {
		t.Fatalf("Marshal(nil) = %s", data)
	}
	ind, err := MarshalIndent(pointCodec, &point{X: Ptr[int32](1)}, "  ")
	if err != nil || string(ind) != "{\n  \"x\": 1\n}" {
		t.Fatalf("MarshalIndent = %q, %v", ind, err)
	}
}

func TestDecode_TopLevel(t *testing.T) {
	keep := &point{X: Ptr[int32](9)}
	if err := Unmarshal(pointCodec, []byte(`null`), keep); err != nil || *keep.X != 9 {
		t.Fatalf("null must leave the value untouched: %v %+v", err, keep)
	}

	err := Unmarshal(pointCodec, []byte(`[1]`), new(point))
	var ut *UnexpectedTokenError
	if !errors.As(err, &ut) || ut.Field != "" || ut.Kind != TokenStartArray {
		t.Fatalf("expected UnexpectedTokenError at top level, got %v", err)
	}
	if err := Unmarshal(pointCodec, nil, new(point)); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("empty input: %v", err)
	}
}

func TestUnmarshalFrom(t *testing.T) {
	err := UnmarshalFrom(pointCodec, strings.NewReader(`{"x":1,"x":2}`), ReadOptions{RejectDuplicateKeys: true}, new(point))
	var de *DuplicateKeyError
	if !errors.As(err, &de) || de.Key != "x" {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	v := new(point)
	if err := UnmarshalFrom(pointCodec, strings.NewReader(`{"z":{"q":[]},"y":"ok"}`), ReadOptions{MaxDepth: 3}, v); err != nil || *v.Y != "ok" {
		t.Fatalf("UnmarshalFrom: %v %+v", err, v)
	}
}

func numberReader(text string) Reader {
	r := SourceFromEngine(eng.Tokens(eng.Token{Kind: eng.KindNumber, Number: text}))
	r.Next()
	return r
}

func TestReadNumbers(t *testing.T) {
	if v, err := ReadInt32(numberReader("-2147483648")); err != nil || v != -2147483648 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if _, err := ReadInt32(numberReader("2147483648")); !errors.Is(err, strconv.ErrRange) {
		t.Fatalf("ReadInt32 overflow: %v", err)
	}
	if _, err := ReadInt64(numberReader("1.0")); !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("ReadInt64 fraction: %v", err)
	}
	if v, err := ReadFloat32(numberReader("0.5")); err != nil || v != 0.5 {
		t.Fatalf("ReadFloat32 = %v, %v", v, err)
	}
	if v, err := ReadFloat64(numberReader("-1e-3")); err != nil || v != -0.001 {
		t.Fatalf("ReadFloat64 = %v, %v", v, err)
	}
	d, err := ReadDecimal(numberReader("79228162514264337593543950335.0000001"))
	if err != nil || !d.Equal(decimal.RequireFromString("79228162514264337593543950335.0000001")) {
		t.Fatalf("ReadDecimal = %s, %v", d, err)
	}
}

func TestErrors(t *testing.T) {
	if WrapField("F", nil) != nil {
		t.Fatal("WrapField(nil) must be nil")
	}
	err := WrapField("F", strconv.ErrRange)
	if !errors.Is(err, strconv.ErrRange) || err.Error() != "F: value out of range" {
		t.Fatalf("WrapField = %v", err)
	}
	if got := UnexpectedToken("Id", TokenString).Error(); got != "unexpected token type for Id: String" {
		t.Fatalf("UnexpectedToken message = %q", got)
	}
	if got := (&NullElementError{Field: "Items"}).Error(); got != "null element in Items" {
		t.Fatalf("NullElementError message = %q", got)
	}
}
