// Package richtext reads visually formatted text (HTML produced by editable
// surfaces or Markdown) into a tree of styled elements with resolved
// computed style, and flattens it into runs of text in document order.
package richtext

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"retainformat/css"
)

// Style is the subset of computed style formatting detection looks at. All
// values use computed style notation: colors are "rgb(r, g, b)", weights are
// numeric.
type Style struct {
	Color          string
	TextAlign      string
	FontWeight     string
	FontStyle      string
	TextDecoration string // space separated lines including propagated ones
}

// Weight returns numeric font weight, fractional weights are truncated.
func (s Style) Weight() (int, bool) {
	if len(s.FontWeight) == 0 {
		return 0, false
	}
	w, err := strconv.ParseFloat(s.FontWeight, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, false
	}
	return int(w), true
}

// Italic reports whether font style is slanted.
func (s Style) Italic() bool {
	return s.FontStyle == "italic" || strings.HasPrefix(s.FontStyle, "oblique")
}

// Underlined reports whether text is decorated with underline.
func (s Style) Underlined() bool {
	return slices.Contains(strings.Fields(s.TextDecoration), "underline")
}

// StyledNode is an element with resolved style.
type StyledNode interface {
	// Tag returns lower case element name.
	Tag() string
	Style() Style
	// Parent returns nil for the root of the document.
	Parent() StyledNode
}

// Element is a single element of the document.
type Element struct {
	name    string
	id      string
	classes []string
	parent  *Element

	// specified values after cascade, before inheritance
	specified map[string]string
	style     Style
}

func (e *Element) Tag() string  { return e.name }
func (e *Element) Style() Style { return e.style }

func (e *Element) Parent() StyledNode {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// LocalName, HasClass, ID and ParentElement allow selector matching.

func (e *Element) LocalName() string { return e.name }
func (e *Element) ID() string        { return e.id }

func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

func (e *Element) ParentElement() css.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// RunKind distinguishes text runs and line breaks.
type RunKind int

const (
	RunText RunKind = iota
	RunBreak
)

// Run is a text node with its containing element or a break marker.
type Run struct {
	Kind RunKind
	Text string
	Node StyledNode
}

// Document is read rich text: root element, all elements in document order
// and flattened runs.
type Document struct {
	root     *Element
	elements []*Element
	runs     []Run
	rules    []sourcedRule
	rootBase Style
}

// Root returns document root (body of HTML document).
func (d *Document) Root() StyledNode {
	if d == nil || d.root == nil {
		return nil
	}
	return d.root
}

// Elements returns every element in document order, root first.
func (d *Document) Elements() []StyledNode {
	if d == nil {
		return nil
	}
	out := make([]StyledNode, 0, len(d.elements))
	for _, e := range d.elements {
		out = append(out, e)
	}
	return out
}

// Runs returns text runs and breaks in document order.
func (d *Document) Runs() []Run {
	if d == nil {
		return nil
	}
	return d.runs
}

// Text returns plain text, breaks are newlines.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, r := range d.Runs() {
		if r.Kind == RunBreak {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// HasContent reports whether document has any visible text: whitespace and
// zero width spaces do not count.
func (d *Document) HasContent() bool {
	for _, r := range d.Runs() {
		if r.Kind != RunText {
			continue
		}
		if len(strings.TrimSpace(strings.ReplaceAll(r.Text, "\u200b", ""))) > 0 {
			return true
		}
	}
	return false
}
