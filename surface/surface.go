// Package surface models editing surface the document is placed into: it
// owns the document, the active theme and the baseline style derived from
// it.
package surface

import (
	"go.uber.org/zap"

	"retainformat/config"
	"retainformat/format"
	"retainformat/richtext"
	"retainformat/segment"
)

// Theme is a named root style of the surface.
type Theme struct {
	Name string
	Root richtext.Style
}

// ThemeFromConfig converts configured theme.
func ThemeFromConfig(name string, tc config.ThemeConfig) Theme {
	return Theme{
		Name: name,
		Root: richtext.Style{
			Color:      tc.Color,
			TextAlign:  tc.TextAlign,
			FontWeight: tc.FontWeight,
			FontStyle:  "normal",
		},
	}
}

// Surface holds document with its theme. Not safe for concurrent use.
type Surface struct {
	doc   *richtext.Document
	theme Theme
	log   *zap.Logger

	baseline *format.Baseline
}

// New places document onto the surface styled with theme.
func New(doc *richtext.Document, theme Theme, log *zap.Logger) *Surface {
	if log == nil {
		log = zap.NewNop()
	}
	doc.Restyle(theme.Root)
	return &Surface{doc: doc, theme: theme, log: log.Named("surface")}
}

func (s *Surface) Document() *richtext.Document { return s.doc }
func (s *Surface) Theme() Theme                 { return s.theme }

// SetTheme switches theme, previously captured baseline is discarded.
func (s *Surface) SetTheme(theme Theme) {
	s.theme = theme
	s.baseline = nil
	s.doc.Restyle(theme.Root)
	s.log.Debug("Theme changed", zap.String("theme", theme.Name))
}

// Baseline returns computed style of unformatted text, captured once per
// theme.
func (s *Surface) Baseline() format.Baseline {
	if s.baseline == nil {
		b := format.BaselineFromStyle(s.doc.Probe())
		s.baseline = &b
		s.log.Debug("Baseline captured",
			zap.String("theme", s.theme.Name),
			zap.String("color", b.Color),
			zap.String("align", b.TextAlign),
			zap.String("weight", b.FontWeight))
	}
	return *s.baseline
}

// HasContent reports whether there is any visible text on the surface.
func (s *Surface) HasContent() bool {
	return s.doc.HasContent()
}

// Detect runs new detection pass.
func (s *Surface) Detect() *format.Set {
	set := format.Detect(s.doc, s.Baseline())
	if set.Empty() {
		s.log.Info(format.EmptyMessage)
	} else {
		s.log.Debug("Formats detected", zap.Int("count", set.Len()))
	}
	return set
}

// Result of generation.
type Result struct {
	Output string
	// Raw is set when output is plain document text: either nothing has a
	// label or surface is empty.
	Raw bool
}

// Generate serializes document with labels active in set.
func (s *Surface) Generate(set *format.Set) Result {
	if !s.HasContent() {
		s.log.Info("Nothing to generate, document is empty")
		return Result{Raw: true}
	}
	active := set.Active()
	if len(active) == 0 {
		s.log.Warn("No labels assigned, producing plain text")
		return Result{Output: segment.RawText(s.doc.Runs()), Raw: true}
	}
	return Result{Output: segment.New(s.Baseline(), s.log).Serialize(s.doc.Runs(), active)}
}
