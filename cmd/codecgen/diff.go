package main

import (
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// lineDiff renders a line oriented diff from one text to another. Unchanged
// lines are omitted except for one line of context on either side of a
// change.
func lineDiff(from, to string, colored bool) string {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	if !colored {
		del.DisableColor()
		ins.DisableColor()
	}

	var sb strings.Builder
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffpatch.DiffDelete:
			for _, l := range text {
				sb.WriteString(del.Sprint("-"+l) + "\n")
			}
		case diffpatch.DiffInsert:
			for _, l := range text {
				sb.WriteString(ins.Sprint("+"+l) + "\n")
			}
		case diffpatch.DiffEqual:
			if i > 0 {
				sb.WriteString(" " + text[0] + "\n")
				text = text[1:]
			}
			if i < len(diffs)-1 && len(text) > 0 {
				if len(text) > 1 {
					sb.WriteString(" ...\n")
				}
				sb.WriteString(" " + text[len(text)-1] + "\n")
			}
		}
	}
	return sb.String()
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
