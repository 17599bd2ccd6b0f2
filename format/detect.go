package format

import (
	"fmt"
	"strings"

	"retainformat/common"
	"retainformat/richtext"
)

// EmptyMessage is shown when nothing was detected.
const EmptyMessage = "No special formatting detected. Try adding bold, color, headings, or alignment."

// Detected is a single detected (dimension, key) pair with the label user
// assigned to it.
type Detected struct {
	ID          string           `json:"id"`
	Dimension   common.Dimension `json:"dimension"`
	Key         string           `json:"key"`
	DisplayName string           `json:"display_name"`
	UserLabel   string           `json:"label"`
}

// Active is true when user assigned non blank label.
func (d Detected) Active() bool {
	return len(strings.TrimSpace(d.UserLabel)) > 0
}

// MakeID builds format identifier "dimension:key".
func MakeID(dim common.Dimension, key string) string {
	return dim.String() + ":" + key
}

func newDetected(dim common.Dimension, key string) Detected {
	d := Detected{ID: MakeID(dim, key), Dimension: dim, Key: key}
	switch dim {
	case common.DimensionBold:
		d.DisplayName = "Bold"
	case common.DimensionItalic:
		d.DisplayName = "Italic"
	case common.DimensionUnderline:
		d.DisplayName = "Underline"
	case common.DimensionHeading:
		d.DisplayName = key + " heading"
	case common.DimensionColor:
		d.DisplayName = "Color"
	case common.DimensionAlignment:
		d.DisplayName = "Alignment: " + key
	}
	return d
}

// Source is what detection needs from a document.
type Source interface {
	Root() richtext.StyledNode
	Elements() []richtext.StyledNode
}

// Detect returns formats present in the document in presentation order:
// bold, italic, underline, headings H1 to H6, colors and alignments in
// order of first appearance. The document root contributes alignment
// only. Every call returns a new set.
func Detect(src Source, base Baseline) *Set {
	var (
		bold, italic, underline bool
		headings                [7]bool
		colors, alignments      []string
		seen                    = make(map[string]bool)
	)
	firstSeen := func(list *[]string, dim common.Dimension, key string) {
		id := MakeID(dim, key)
		if key == "" || seen[id] {
			return
		}
		seen[id] = true
		*list = append(*list, key)
	}

	root := src.Root()
	for _, el := range src.Elements() {
		t := Classify(el, base)
		if el == root {
			firstSeen(&alignments, common.DimensionAlignment, t.Alignment)
			continue
		}
		bold = bold || t.Bold
		italic = italic || t.Italic
		underline = underline || t.Underline
		headings[t.Heading] = true
		firstSeen(&colors, common.DimensionColor, t.Color)
		firstSeen(&alignments, common.DimensionAlignment, t.Alignment)
	}

	set := &Set{}
	add := func(dim common.Dimension, key string) {
		set.formats = append(set.formats, newDetected(dim, key))
	}
	if bold {
		add(common.DimensionBold, common.DimensionBold.String())
	}
	if italic {
		add(common.DimensionItalic, common.DimensionItalic.String())
	}
	if underline {
		add(common.DimensionUnderline, common.DimensionUnderline.String())
	}
	for lvl := 1; lvl <= 6; lvl++ {
		if headings[lvl] {
			add(common.DimensionHeading, HeadingKey(lvl))
		}
	}
	for _, c := range colors {
		add(common.DimensionColor, c)
	}
	for _, a := range alignments {
		add(common.DimensionAlignment, a)
	}
	return set
}

// LabelUpdate assigns label to format with given id.
type LabelUpdate struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// ErrUnknownFormat is returned for updates of formats not in the set.
type ErrUnknownFormat string

func (e ErrUnknownFormat) Error() string {
	return fmt.Sprintf("format %q was not detected", string(e))
}

// Set is the result of a single detection pass. Labels are changed only
// through Apply.
type Set struct {
	formats []Detected
}

// Empty is true when detection found nothing.
func (s *Set) Empty() bool {
	return s == nil || len(s.formats) == 0
}

// Len returns number of detected formats.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.formats)
}

// Formats returns copy of detected formats in presentation order.
func (s *Set) Formats() []Detected {
	if s == nil {
		return nil
	}
	out := make([]Detected, len(s.formats))
	copy(out, s.formats)
	return out
}

// Lookup finds format by id.
func (s *Set) Lookup(id string) (Detected, bool) {
	if s != nil {
		for _, f := range s.formats {
			if f.ID == id {
				return f, true
			}
		}
	}
	return Detected{}, false
}

// Apply records label for the format identified in update. Blank label
// deactivates the format.
func (s *Set) Apply(u LabelUpdate) error {
	if s != nil {
		for i := range s.formats {
			if s.formats[i].ID == u.ID {
				s.formats[i].UserLabel = u.Label
				return nil
			}
		}
	}
	return ErrUnknownFormat(u.ID)
}

// Active returns formats with non blank labels in presentation order.
func (s *Set) Active() []Detected {
	var out []Detected
	if s == nil {
		return out
	}
	for _, f := range s.formats {
		if f.Active() {
			out = append(out, f)
		}
	}
	return out
}
