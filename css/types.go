package css

import (
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw       string  // Original CSS value string (e.g., "700", "bold", "#ff0000")
	Value     float64 // Numeric value if applicable
	Unit      string  // Unit if applicable: "em", "px", "%", etc.
	Keyword   string  // Keyword if applicable: "bold", "italic", "center", etc.
	Important bool    // Declared with !important
}

// IsNumeric returns true if the value has a numeric component, explicit
// zero values like "0" included.
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Keyword != "" || v.Raw == "" {
		return false
	}
	c := rune(v.Raw[0])
	return unicode.IsDigit(c) || c == '.' || c == '-' || c == '+'
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Element is what selectors are matched against.
type Element interface {
	LocalName() string
	HasClass(name string) bool
	ID() string
	// ParentElement must return untyped nil for the root.
	ParentElement() Element
}

// Selector is a compound selector (element, classes, id) with optional
// chain of ancestors joined by descendant or child combinators.
type Selector struct {
	Raw      string
	Element  string // empty or "*" matches any element
	Classes  []string
	IDName   string
	Ancestor *Selector
	Child    bool // Ancestor must be the direct parent
}

// IsEmpty is true for selectors which could not be parsed and never match.
func (s Selector) IsEmpty() bool {
	return s.Element == "" && len(s.Classes) == 0 && s.IDName == ""
}

// Specificity is computed the usual way and packed into single integer:
// ids, classes and element names.
func (s Selector) Specificity() int {
	specificity := 0
	for cur := &s; cur != nil; cur = cur.Ancestor {
		if cur.IDName != "" {
			specificity += 10000
		}
		specificity += 100 * len(cur.Classes)
		if cur.Element != "" && cur.Element != "*" {
			specificity++
		}
	}
	return specificity
}

// Matches checks selector against element and its ancestors.
func (s *Selector) Matches(el Element) bool {
	if el == nil || !s.matchCompound(el) {
		return false
	}
	if s.Ancestor == nil {
		return true
	}
	if s.Child {
		return s.Ancestor.Matches(el.ParentElement())
	}
	for p := el.ParentElement(); p != nil; p = p.ParentElement() {
		if s.Ancestor.Matches(p) {
			return true
		}
	}
	return false
}

func (s *Selector) matchCompound(el Element) bool {
	if s.IsEmpty() {
		return false
	}
	if s.Element != "" && s.Element != "*" && !strings.EqualFold(s.Element, el.LocalName()) {
		return false
	}
	if s.IDName != "" && s.IDName != el.ID() {
		return false
	}
	for _, c := range s.Classes {
		if !el.HasClass(c) {
			return false
		}
	}
	return true
}

// Rule is a single selector with its declarations. Grouped selectors
// produce one rule per selector sharing the same properties.
type Rule struct {
	Selector   Selector
	Properties map[string]Value
}

// Stylesheet keeps rules in source order.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string
}

// Len returns number of rules.
func (s *Stylesheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rules)
}

// Append adds rules of other stylesheet after rules of this one.
func (s *Stylesheet) Append(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
	s.Warnings = append(s.Warnings, other.Warnings...)
}
