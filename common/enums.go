// Package common holds enums shared by the engine, the command line and the
// HTTP API. Run "go tool go-enum --names --marshal -f enums.go" after
// changing any ENUM declaration below.
package common

// Formatting axis recognized by the detector.
// ENUM(bold, italic, underline, heading, color, alignment)
type Dimension int

// Single variant dimensions use the dimension name as their key.
func (d Dimension) SingleVariant() bool {
	return d == DimensionBold || d == DimensionItalic || d == DimensionUnderline
}

// Rich text input flavor.
// ENUM(html, markdown)
type InputFmt int

// Ext returns the canonical file extension for the input flavor.
func (f InputFmt) Ext() string {
	switch f {
	case InputFmtMarkdown:
		return ".md"
	default:
		return ".html"
	}
}

// Kind of feedback event.
// ENUM(unknown, like, dislike, question)
type FeedbackKind int
