package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func drain(t *testing.T, src TokenSource) ([]Token, error) {
	t.Helper()
	var out []Token
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}

func TestJSONTokens_KeysAndValues(t *testing.T) {
	src := NewJSONBytes([]byte(`{"a":"x","b":[1,true,null,{"c":"d"}],"e":2.5}`))
	got, err := drain(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Token{
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "a"},
		{Kind: KindString, String: "x"},
		{Kind: KindKey, String: "b"},
		{Kind: KindBeginArray},
		{Kind: KindNumber, Number: "1"},
		{Kind: KindBool, Bool: true},
		{Kind: KindNull},
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "c"},
		{Kind: KindString, String: "d"},
		{Kind: KindEndObject},
		{Kind: KindEndArray},
		{Kind: KindKey, String: "e"},
		{Kind: KindNumber, Number: "2.5"},
		{Kind: KindEndObject},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Token{}, "Offset")); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONTokens_StringAfterNestedValueIsKey(t *testing.T) {
	got, err := drain(t, NewJSONBytes([]byte(`{"a":{"x":1},"b":[],"c":"v"}`)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	for _, tok := range got {
		if tok.Kind == KindKey {
			keys = append(keys, tok.String)
		}
	}
	if diff := cmp.Diff([]string{"a", "x", "b", "c"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipValue(t *testing.T) {
	src := Tokens(
		Token{Kind: KindBeginObject},
		Token{Kind: KindKey, String: "a"},
		Token{Kind: KindBeginArray},
		Token{Kind: KindNumber, Number: "1"},
		Token{Kind: KindEndArray},
		Token{Kind: KindEndObject},
		Token{Kind: KindString, String: "after"},
	)
	first, _ := src.NextToken()
	if err := SkipValue(src, first); err != nil {
		t.Fatalf("skip: %v", err)
	}
	next, err := src.NextToken()
	if err != nil || next.String != "after" {
		t.Fatalf("expected the token after the skipped subtree, got %+v err=%v", next, err)
	}
}

func TestSkipValue_Truncated(t *testing.T) {
	src := Tokens(Token{Kind: KindBeginArray}, Token{Kind: KindNull})
	first, _ := src.NextToken()
	if err := SkipValue(src, first); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestEnforce_MaxDepth(t *testing.T) {
	src := WrapWithEnforcement(NewJSONBytes([]byte(`{"a":{"b":{"c":1}}}`)), EnforceOptions{MaxDepth: 2})
	_, err := drain(t, src)
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
	ok := WrapWithEnforcement(NewJSONBytes([]byte(`{"a":{"b":1}}`)), EnforceOptions{MaxDepth: 2})
	if _, err := drain(t, ok); err != nil {
		t.Fatalf("depth 2 input should pass: %v", err)
	}
}

func TestEnforce_DuplicateKeys(t *testing.T) {
	src := WrapWithEnforcement(NewJSONBytes([]byte(`{"a":{"k":1,"k":2}}`)), EnforceOptions{RejectDuplicates: true})
	_, err := drain(t, src)
	var de *DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if de.Key != "k" || de.Path != "/a/k" {
		t.Fatalf("unexpected duplicate report: %+v", de)
	}

	// keys repeat legitimately across sibling objects
	sib := WrapWithEnforcement(NewJSONBytes([]byte(`[{"k":1},{"k":2}]`)), EnforceOptions{RejectDuplicates: true})
	if _, err := drain(t, sib); err != nil {
		t.Fatalf("sibling objects should pass: %v", err)
	}
}

func TestWrapWithEnforcement_Disabled(t *testing.T) {
	inner := Tokens()
	if got := WrapWithEnforcement(inner, EnforceOptions{}); got != inner {
		t.Fatalf("disabled options should return the inner source")
	}
}
