// Package yaml plugs YAML documents into generated codecs. NewReader and
// NewBytes expose a document as a codecgen.Reader; Writer collects encoder
// output into a YAML node tree.
//
// Mapping keys become field names. Scalars are classified by their resolved
// YAML tag: !!int and !!float are numbers, !!bool and !!null map to the
// matching tokens and everything else is a string. Aliases are expanded in
// place, up to a token budget proportional to the size of the parsed tree.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/reoring/codecgen"
	eng "github.com/reoring/codecgen/internal/engine"
)

// ErrAliasCycle is returned for an alias that refers to one of its own
// ancestors.
var ErrAliasCycle = errors.New("yaml: alias refers to an enclosing node")

// ErrAliasExpansion is returned when expanding aliases would produce more
// tokens than the document's budget allows.
var ErrAliasExpansion = errors.New("yaml: document is too large after expanding aliases")

// A document may expand to expansionRatio tokens per parsed node, and always
// to at least minExpansionBudget tokens.
const (
	expansionRatio     = 16
	minExpansionBudget = 1 << 16
)

// NewReader reads the first document of r.
func NewReader(r io.Reader) codecgen.Reader { return codecgen.SourceFromEngine(NewSource(r)) }

// NewBytes reads the first document of b.
func NewBytes(b []byte) codecgen.Reader { return NewReader(bytes.NewReader(b)) }

// NewSource returns the engine token source behind NewReader. The document
// is parsed on the first call to NextToken.
func NewSource(r io.Reader) eng.TokenSource { return &source{r: r} }

type source struct {
	r      io.Reader
	loaded bool
	err    error
	toks   []eng.Token
	pos    int
	budget int
}

func (s *source) load() {
	s.loaded = true
	var doc yaml.Node
	if err := yaml.NewDecoder(s.r).Decode(&doc); err != nil {
		s.err = err
		return
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			s.err = io.EOF
			return
		}
		root = doc.Content[0]
	}
	s.budget = max(minExpansionBudget, expansionRatio*countNodes(root))
	s.err = s.walk(root, map[*yaml.Node]bool{})
}

func (s *source) NextToken() (eng.Token, error) {
	if !s.loaded {
		s.load()
	}
	if s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++
		return t, nil
	}
	if s.err != nil {
		return eng.Token{}, s.err
	}
	return eng.Token{}, io.EOF
}

// Location returns the line of the most recently returned token, or -1.
func (s *source) Location() int64 {
	if s.pos == 0 {
		return -1
	}
	return s.toks[s.pos-1].Offset
}

func (s *source) emit(n *yaml.Node, t eng.Token) {
	t.Offset = int64(n.Line)
	s.toks = append(s.toks, t)
}

// countNodes counts the nodes of the tree rooted at n without following
// aliases.
func countNodes(n *yaml.Node) int {
	c := 1
	for _, child := range n.Content {
		c += countNodes(child)
	}
	return c
}

// walk appends the tokens of n. active holds the nodes on the current path
// so that recursive aliases are rejected instead of expanded forever.
func (s *source) walk(n *yaml.Node, active map[*yaml.Node]bool) error {
	if active[n] {
		return fmt.Errorf("%w at line %d", ErrAliasCycle, n.Line)
	}
	if len(s.toks) > s.budget {
		return fmt.Errorf("%w: more than %d tokens at line %d", ErrAliasExpansion, s.budget, n.Line)
	}
	active[n] = true
	defer delete(active, n)

	switch n.Kind {
	case yaml.AliasNode:
		return s.walk(n.Alias, active)
	case yaml.MappingNode:
		s.emit(n, eng.Token{Kind: eng.KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind == yaml.AliasNode {
				key = key.Alias
			}
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("yaml: line %d: mapping key must be a scalar", key.Line)
			}
			s.emit(key, eng.Token{Kind: eng.KindKey, String: key.Value})
			if err := s.walk(n.Content[i+1], active); err != nil {
				return err
			}
		}
		s.emit(n, eng.Token{Kind: eng.KindEndObject})
	case yaml.SequenceNode:
		s.emit(n, eng.Token{Kind: eng.KindBeginArray})
		for _, c := range n.Content {
			if err := s.walk(c, active); err != nil {
				return err
			}
		}
		s.emit(n, eng.Token{Kind: eng.KindEndArray})
	case yaml.ScalarNode:
		t, err := scalar(n)
		if err != nil {
			return err
		}
		s.emit(n, t)
	default:
		return fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
	}
	return nil
}

func scalar(n *yaml.Node) (eng.Token, error) {
	switch n.ShortTag() {
	case "!!null":
		return eng.Token{Kind: eng.KindNull}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return eng.Token{}, err
		}
		return eng.Token{Kind: eng.KindBool, Bool: b}, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Out of int64 range; the codec reports the overflow.
			return eng.Token{Kind: eng.KindNumber, Number: n.Value}, nil
		}
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(i, 10)}, nil
	case "!!float":
		// Plain decimal literals pass through untouched to keep precision.
		if _, err := decimal.NewFromString(n.Value); err == nil {
			return eng.Token{Kind: eng.KindNumber, Number: n.Value}, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return eng.Token{}, err
		}
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	default:
		return eng.Token{Kind: eng.KindString, String: n.Value}, nil
	}
}
