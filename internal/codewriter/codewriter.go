// Package codewriter is an indentation-aware line sink for generated Go
// source.
package codewriter

import (
	"bytes"
	"fmt"
	"strings"
)

// Writer accumulates lines, indenting each by the current brace depth.
type Writer struct {
	buf    bytes.Buffer
	indent int
}

// New returns an empty Writer.
func New() *Writer { return &Writer{} }

// Line writes one indented line.
func (w *Writer) Line(text string) {
	if text == "" {
		w.buf.WriteByte('\n')
		return
	}
	w.buf.WriteString(strings.Repeat("\t", w.indent))
	w.buf.WriteString(text)
	w.buf.WriteByte('\n')
}

// Linef writes one formatted, indented line.
func (w *Writer) Linef(format string, args ...any) { w.Line(fmt.Sprintf(format, args...)) }

// Blank writes an empty line.
func (w *Writer) Blank() { w.buf.WriteByte('\n') }

// Comment writes a "//" comment line.
func (w *Writer) Comment(format string, args ...any) { w.Line("// " + fmt.Sprintf(format, args...)) }

// Open writes header followed by " {" and indents subsequent lines.
func (w *Writer) Open(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...) + " {")
	w.indent++
}

// Close dedents and writes the closing brace.
func (w *Writer) Close() { w.CloseWith("") }

// CloseWith dedents and writes the closing brace followed by suffix, as in
// "})".
func (w *Writer) CloseWith(suffix string) {
	if w.indent > 0 {
		w.indent--
	}
	w.Line("}" + suffix)
}

// Case writes a switch case label one level out from the current body and
// leaves the body indentation in place.
func (w *Writer) Case(format string, args ...any) {
	w.indent--
	w.Line("case " + fmt.Sprintf(format, args...) + ":")
	w.indent++
}

// Default writes the default label of a switch.
func (w *Writer) Default() {
	w.indent--
	w.Line("default:")
	w.indent++
}

// Depth returns the current indentation level.
func (w *Writer) Depth() int { return w.indent }

// Bytes returns the accumulated text.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// String returns the accumulated text.
func (w *Writer) String() string { return w.buf.String() }
