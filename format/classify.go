// Package format detects formatting dimensions present in a document and
// keeps user assigned semantic labels for them.
package format

import (
	"strconv"

	"retainformat/common"
	"retainformat/richtext"
)

// BoldThreshold is the lowest numeric weight considered bold.
const BoldThreshold = 600

// Baseline is computed style of unformatted text on the surface. Empty
// values mean unknown.
type Baseline struct {
	Color      string
	TextAlign  string
	FontWeight string
}

// BaselineFromStyle captures baseline from a probe style.
func BaselineFromStyle(s richtext.Style) Baseline {
	return Baseline{Color: s.Color, TextAlign: s.TextAlign, FontWeight: s.FontWeight}
}

// Traits are formatting facts of a single node.
type Traits struct {
	Bold      bool
	Italic    bool
	Underline bool
	// Heading level 1-6 of the closest heading element (the node itself or
	// an ancestor), 0 when there is none
	Heading   int
	Color     string
	Alignment string
}

// Classify derives traits of node. Canonical bold, italic and heading
// elements count when they are the node itself or any of its ancestors.
// Color and alignment are reported only when they differ from baseline.
func Classify(node richtext.StyledNode, base Baseline) Traits {
	var t Traits
	if node == nil {
		return t
	}
	st := node.Style()

	if w, ok := st.Weight(); ok && w >= BoldThreshold {
		if bw, err := strconv.Atoi(base.FontWeight); err != nil || w > bw {
			t.Bold = true
		}
	}
	t.Italic = st.Italic()
	t.Underline = st.Underlined()

	for n := node; n != nil; n = n.Parent() {
		switch n.Tag() {
		case "b", "strong":
			t.Bold = true
		case "i", "em":
			t.Italic = true
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if t.Heading == 0 {
				t.Heading = int(n.Tag()[1] - '0')
			}
		}
	}

	if st.Color != "" && st.Color != base.Color && st.Color != richtext.Black {
		t.Color = st.Color
	}
	if st.TextAlign != "" && st.TextAlign != base.TextAlign {
		t.Alignment = st.TextAlign
	}
	return t
}

// HeadingKey returns key of the heading dimension for level.
func HeadingKey(level int) string {
	return "H" + strconv.Itoa(level)
}

// AppliesTo reports whether (dimension, key) pair applies to node. This is
// the single predicate used both for detection and for segmentation.
func AppliesTo(dim common.Dimension, key string, node richtext.StyledNode, base Baseline) bool {
	return Classify(node, base).Has(dim, key)
}

// Has reports whether traits include (dimension, key) pair.
func (t Traits) Has(dim common.Dimension, key string) bool {
	switch dim {
	case common.DimensionBold:
		return t.Bold
	case common.DimensionItalic:
		return t.Italic
	case common.DimensionUnderline:
		return t.Underline
	case common.DimensionHeading:
		return t.Heading > 0 && HeadingKey(t.Heading) == key
	case common.DimensionColor:
		return t.Color != "" && t.Color == key
	case common.DimensionAlignment:
		return t.Alignment != "" && t.Alignment == key
	}
	return false
}
