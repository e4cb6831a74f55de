package yaml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/reoring/codecgen"
	eng "github.com/reoring/codecgen/internal/engine"
)

var _ codecgen.Writer = (*Writer)(nil)

func drain(t *testing.T, src eng.TokenSource) ([]eng.Token, error) {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}

func TestTokens(t *testing.T) {
	doc := `
name: x
count: 0x10
ratio: 1.50
big: 123456789012345678901234567890
flag: true
none: ~
quoted: "12"
list:
  - a
  - {k: v}
`
	got, err := drain(t, NewSource(strings.NewReader(doc)))
	if err != nil {
		t.Fatal(err)
	}
	want := []eng.Token{
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindKey, String: "name"},
		{Kind: eng.KindString, String: "x"},
		{Kind: eng.KindKey, String: "count"},
		{Kind: eng.KindNumber, Number: "16"},
		{Kind: eng.KindKey, String: "ratio"},
		{Kind: eng.KindNumber, Number: "1.50"},
		{Kind: eng.KindKey, String: "big"},
		{Kind: eng.KindNumber, Number: "123456789012345678901234567890"},
		{Kind: eng.KindKey, String: "flag"},
		{Kind: eng.KindBool, Bool: true},
		{Kind: eng.KindKey, String: "none"},
		{Kind: eng.KindNull},
		{Kind: eng.KindKey, String: "quoted"},
		{Kind: eng.KindString, String: "12"},
		{Kind: eng.KindKey, String: "list"},
		{Kind: eng.KindBeginArray},
		{Kind: eng.KindString, String: "a"},
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindKey, String: "k"},
		{Kind: eng.KindString, String: "v"},
		{Kind: eng.KindEndObject},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindEndObject},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(eng.Token{}, "Offset")); diff != "" {
		t.Fatalf("tokens (-want +got):\n%s", diff)
	}
}

func TestAliases(t *testing.T) {
	doc := "base: &b {x: 1}\ncopy: *b\n"
	got, err := drain(t, NewSource(strings.NewReader(doc)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 12 {
		t.Fatalf("expected the alias to expand, got %d tokens", len(got))
	}
	if got[7].Kind != eng.KindBeginObject || got[8].String != "x" {
		t.Fatalf("copy did not expand: %+v", got[6:])
	}
}

func TestAliasCycle(t *testing.T) {
	_, err := drain(t, NewSource(strings.NewReader("a: &x [*x]\n")))
	if !errors.Is(err, ErrAliasCycle) {
		t.Fatalf("expected ErrAliasCycle, got %v", err)
	}
}

// nestedAliases builds a document in which every level lists the previous
// anchor ten times, so it expands to 10^levels scalars.
func nestedAliases(levels int) string {
	var sb strings.Builder
	sb.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&sb, "l%d: &l%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "*l%d", i-1)
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

func TestAliasExpansionLimit(t *testing.T) {
	doc := nestedAliases(9)
	got, err := drain(t, NewSource(strings.NewReader(doc)))
	if !errors.Is(err, ErrAliasExpansion) {
		t.Fatalf("expected ErrAliasExpansion, got %v", err)
	}
	if len(got) > 2*minExpansionBudget {
		t.Fatalf("expansion ran past the budget: %d tokens", len(got))
	}

	// A couple of levels stays well inside the budget.
	if _, err := drain(t, NewSource(strings.NewReader(nestedAliases(2)))); err != nil {
		t.Fatalf("small document: %v", err)
	}
}

func TestEmptyAndInvalid(t *testing.T) {
	if _, err := NewBytes(nil).Next(); !errors.Is(err, codecgen.ErrEndOfStream) {
		t.Fatalf("empty input: %v", err)
	}
	if _, err := NewBytes([]byte("a: [1, 2\n")).Next(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLocation(t *testing.T) {
	src := NewSource(strings.NewReader("a: 1\nb: 2\n"))
	if src.Location() != -1 {
		t.Fatalf("location before reading = %d", src.Location())
	}
	for i := 0; i < 4; i++ {
		if _, err := src.NextToken(); err != nil {
			t.Fatal(err)
		}
	}
	if src.Location() != 2 {
		t.Fatalf("key b reported on line %d", src.Location())
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter()
	steps := []func() error{
		w.WriteStartObject,
		func() error { return w.WriteFieldName("name") },
		func() error { return w.WriteString("true") },
		func() error { return w.WriteFieldName("n") },
		func() error { return w.WriteInt64(-3) },
		func() error { return w.WriteFieldName("d") },
		func() error { return w.WriteDecimal(decimal.RequireFromString("0.10")) },
		func() error { return w.WriteFieldName("inf") },
		func() error { return w.WriteFloat64(math.Inf(1)) },
		func() error { return w.WriteFieldName("list") },
		w.WriteStartArray,
		func() error { return w.WriteBool(false) },
		w.WriteNull,
		w.WriteEndArray,
		func() error { return w.WriteFieldName("empty") },
		w.WriteStartObject,
		w.WriteEndObject,
		w.WriteEndObject,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	out, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	want := `name: "true"
n: -3
d: 0.1
inf: .inf
list:
  - false
  - null
empty: {}
`
	if string(out) != want {
		t.Fatalf("output:\n%s\nwant:\n%s", out, want)
	}

	r := NewBytes(out)
	var kinds []codecgen.TokenKind
	for {
		kind, err := r.Next()
		if errors.Is(err, codecgen.ErrEndOfStream) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, kind)
	}
	if kinds[2] != codecgen.TokenString {
		t.Fatalf("quoted string read back as %s", kinds[2])
	}
}

func TestWriterErrors(t *testing.T) {
	w := NewWriter()
	if _, err := w.Bytes(); err == nil {
		t.Fatal("empty writer should not render")
	}
	if err := w.WriteEndObject(); err == nil {
		t.Fatal("unbalanced end accepted")
	}
	if err := w.WriteStartObject(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteString("v"); err == nil {
		t.Fatal("value without field name accepted")
	}
	if _, err := w.Bytes(); err == nil {
		t.Fatal("incomplete document rendered")
	}

	w = NewWriter()
	if err := w.WriteNull(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteNull(); err == nil {
		t.Fatal("second root accepted")
	}
}
