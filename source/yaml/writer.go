package yaml

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	errUnbalanced = errors.New("yaml: unbalanced end token")
	errIncomplete = errors.New("yaml: document is incomplete")
	errTwoRoots   = errors.New("yaml: more than one top-level value")
)

// Writer implements codecgen.Writer by building a yaml.Node tree. Call
// Bytes or WriteTo once the top-level value is complete.
type Writer struct {
	// Indent is the number of spaces per nesting level; zero means 2.
	Indent int

	root  *yaml.Node
	stack []*yaml.Node
	named bool
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Node returns the root of the written document.
func (w *Writer) Node() (*yaml.Node, error) {
	if w.root == nil || len(w.stack) > 0 {
		return nil, errIncomplete
	}
	return w.root, nil
}

// WriteTo encodes the written document to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	b, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(b)
	return int64(n), err
}

// Bytes encodes the written document.
func (w *Writer) Bytes() ([]byte, error) {
	root, err := w.Node()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := w.Indent
	if indent == 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Writer) add(n *yaml.Node) error {
	if len(w.stack) == 0 {
		if w.root != nil {
			return errTwoRoots
		}
		w.root = n
		return nil
	}
	top := w.stack[len(w.stack)-1]
	if top.Kind == yaml.MappingNode {
		if !w.named {
			return errors.New("yaml: value written without a field name")
		}
		w.named = false
	}
	top.Content = append(top.Content, n)
	return nil
}

func (w *Writer) open(kind yaml.Kind, tag string) error {
	n := &yaml.Node{Kind: kind, Tag: tag}
	if err := w.add(n); err != nil {
		return err
	}
	w.stack = append(w.stack, n)
	return nil
}

func (w *Writer) close(kind yaml.Kind) error {
	k := len(w.stack)
	if k == 0 || w.stack[k-1].Kind != kind || w.named {
		return errUnbalanced
	}
	w.stack = w.stack[:k-1]
	return nil
}

func (w *Writer) plain(v string) error {
	return w.add(&yaml.Node{Kind: yaml.ScalarNode, Value: v})
}

func (w *Writer) WriteStartObject() error { return w.open(yaml.MappingNode, "!!map") }
func (w *Writer) WriteEndObject() error   { return w.close(yaml.MappingNode) }
func (w *Writer) WriteStartArray() error  { return w.open(yaml.SequenceNode, "!!seq") }
func (w *Writer) WriteEndArray() error    { return w.close(yaml.SequenceNode) }

func (w *Writer) WriteFieldName(name string) error {
	k := len(w.stack)
	if k == 0 || w.stack[k-1].Kind != yaml.MappingNode || w.named {
		return errors.New("yaml: field name outside of an object")
	}
	top := w.stack[k-1]
	top.Content = append(top.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})
	w.named = true
	return nil
}

func (w *Writer) WriteNull() error             { return w.plain("null") }
func (w *Writer) WriteBool(v bool) error       { return w.plain(strconv.FormatBool(v)) }
func (w *Writer) WriteInt32(v int32) error     { return w.plain(strconv.FormatInt(int64(v), 10)) }
func (w *Writer) WriteInt64(v int64) error     { return w.plain(strconv.FormatInt(v, 10)) }
func (w *Writer) WriteFloat32(v float32) error { return w.float(float64(v), 32) }
func (w *Writer) WriteFloat64(v float64) error { return w.float(v, 64) }

func (w *Writer) float(v float64, bits int) error {
	switch {
	case math.IsNaN(v):
		return w.plain(".nan")
	case math.IsInf(v, 1):
		return w.plain(".inf")
	case math.IsInf(v, -1):
		return w.plain("-.inf")
	}
	return w.plain(strconv.FormatFloat(v, 'g', -1, bits))
}

func (w *Writer) WriteDecimal(v decimal.Decimal) error { return w.plain(v.String()) }

func (w *Writer) WriteString(v string) error {
	return w.add(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
}
