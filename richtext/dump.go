package richtext

import (
	"fmt"
	"strings"

	"retainformat/utils/debug"
)

// String returns readable tree of the document with resolved styles. It
// exists solely for debugging and goes into debug report.
func (d *Document) String() string {
	if d == nil || d.root == nil {
		return "<nil Document>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Document: %d elements, %d runs, %d rules", len(d.elements), len(d.runs), len(d.rules))
	tw.Line(1, "surface style %s", d.rootBase)

	depth := make(map[*Element]int, len(d.elements))
	for _, e := range d.elements {
		lvl := 1
		if e.parent != nil {
			lvl = depth[e.parent] + 1
		}
		depth[e] = lvl

		var sel strings.Builder
		sel.WriteString(e.name)
		if e.id != "" {
			sel.WriteString("#" + e.id)
		}
		for _, c := range e.classes {
			sel.WriteString("." + c)
		}
		tw.Line(lvl, "<%s> %s", sel.String(), e.style)
		tw.Map(lvl+1, "specified", e.specified)
	}

	tw.Line(0, "Runs")
	for i, r := range d.runs {
		if r.Kind == RunBreak {
			tw.Line(1, "[%d] break", i)
			continue
		}
		tw.TextBlock(1, fmt.Sprintf("[%d] %s", i, r.Node.Tag()), r.Text)
	}
	return tw.String()
}

// String is compact single line form of the style.
func (s Style) String() string {
	parts := []string{
		"color=" + s.Color,
		"align=" + s.TextAlign,
		"weight=" + s.FontWeight,
		"style=" + s.FontStyle,
	}
	if s.TextDecoration != "" {
		parts = append(parts, "decoration="+s.TextDecoration)
	}
	return "{" + strings.Join(parts, " ") + "}"
}
