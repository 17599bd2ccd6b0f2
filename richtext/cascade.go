package richtext

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"retainformat/css"
)

type origin int

const (
	originAgent origin = iota
	originHint
	originAuthor
	originInline
)

type sourcedRule struct {
	rule   css.Rule
	origin origin
}

type declaration struct {
	name        string
	value       string
	important   bool
	origin      origin
	specificity int
	order       int
	// longhands win over shorthands from the same rule
	longhand bool
}

// properties formatting detection cares about, shorthands are expanded
// into these
var longhands = map[string]bool{
	"color":                true,
	"text-align":           true,
	"font-weight":          true,
	"font-style":           true,
	"text-decoration-line": true,
}

var textAlignments = []string{"start", "end", "left", "right", "center", "justify"}

// expand converts shorthand properties into longhands, unrelated
// properties are dropped.
func expand(name string, v css.Value) map[string]string {
	raw := strings.ToLower(v.Raw)
	if v.Keyword != "" && v.Unit == "" && !strings.ContainsAny(v.Keyword, " (") {
		raw = strings.ToLower(v.Keyword)
	}
	switch name {
	case "font":
		if isWideKeyword(raw) {
			return map[string]string{"font-style": raw, "font-weight": raw}
		}
		out := map[string]string{"font-style": "normal", "font-weight": "normal"}
		for _, w := range strings.Fields(raw) {
			switch {
			case w == "italic" || w == "oblique":
				out["font-style"] = w
			case w == "bold" || w == "bolder" || w == "lighter":
				out["font-weight"] = w
			case isNumericWeight(w):
				out["font-weight"] = w
			}
		}
		return out
	case "text-decoration":
		if isWideKeyword(raw) {
			return map[string]string{"text-decoration-line": raw}
		}
		var lines []string
		for _, w := range strings.Fields(raw) {
			switch w {
			case "underline", "overline", "line-through", "blink":
				lines = append(lines, w)
			}
		}
		if len(lines) == 0 {
			return map[string]string{"text-decoration-line": "none"}
		}
		return map[string]string{"text-decoration-line": strings.Join(lines, " ")}
	}
	if longhands[name] {
		return map[string]string{name: raw}
	}
	return nil
}

func isWideKeyword(v string) bool {
	return v == "inherit" || v == "initial" || v == "unset" || v == "revert"
}

func isNumericWeight(v string) bool {
	n, err := strconv.ParseFloat(v, 64)
	return err == nil && n >= 1 && n <= 1000
}

// cascade resolves specified values for the element from all rules, legacy
// presentational attributes and inline style.
func (d *Document) cascade(e *Element, hints map[string]string, inline map[string]css.Value) map[string]string {
	var decls []declaration
	add := func(props map[string]css.Value, o origin, specificity, order int) {
		for name, v := range props {
			for ln, lv := range expand(name, v) {
				decls = append(decls, declaration{
					name: ln, value: lv, important: v.Important,
					origin: o, specificity: specificity, order: order, longhand: longhands[name],
				})
			}
		}
	}

	for i, sr := range d.rules {
		if sr.rule.Selector.Matches(e) {
			add(sr.rule.Properties, sr.origin, sr.rule.Selector.Specificity(), i)
		}
	}
	for name, v := range hints {
		decls = append(decls, declaration{name: name, value: v, origin: originHint, longhand: true})
	}
	add(inline, originInline, 0, len(d.rules))

	sort.SliceStable(decls, func(i, j int) bool {
		a, b := decls[i], decls[j]
		switch {
		case a.important != b.important:
			return !a.important
		case a.origin != b.origin:
			return a.origin < b.origin
		case a.specificity != b.specificity:
			return a.specificity < b.specificity
		case a.order != b.order:
			return a.order < b.order
		}
		return !a.longhand && b.longhand
	})

	specified := make(map[string]string, len(decls))
	for _, dc := range decls {
		specified[dc.name] = dc.value
	}
	return specified
}

// compute derives computed style from specified values and parent style.
func compute(specified map[string]string, parent Style) Style {
	s := Style{
		Color:      parent.Color,
		TextAlign:  parent.TextAlign,
		FontWeight: parent.FontWeight,
		FontStyle:  parent.FontStyle,
	}

	switch v := specified["color"]; v {
	case "", "inherit", "unset", "currentcolor", "revert":
	case "initial":
		s.Color = Black
	default:
		if c, ok := NormalizeColor(v); ok {
			s.Color = c
		}
	}

	switch v := specified["text-align"]; {
	case slices.Contains(textAlignments, v):
		s.TextAlign = v
	case v == "-webkit-center" || v == "-moz-center":
		s.TextAlign = "center"
	case v == "initial":
		s.TextAlign = "start"
	}

	if v, ok := specified["font-weight"]; ok {
		s.FontWeight = computeWeight(v, parent.FontWeight)
	}

	switch v := strings.Fields(specified["font-style"]); {
	case len(v) == 0:
	case v[0] == "normal" || v[0] == "italic" || v[0] == "oblique":
		s.FontStyle = v[0]
	case v[0] == "initial":
		s.FontStyle = "normal"
	}

	lines := strings.Fields(parent.TextDecoration)
	for _, l := range strings.Fields(specified["text-decoration-line"]) {
		switch l {
		case "underline", "overline", "line-through", "blink":
			if !slices.Contains(lines, l) {
				lines = append(lines, l)
			}
		}
	}
	s.TextDecoration = strings.Join(lines, " ")
	return s
}

// computeWeight resolves keywords and relative weights the way browsers do.
func computeWeight(v, parent string) string {
	p, err := strconv.ParseFloat(parent, 64)
	if err != nil {
		p = 400
	}
	switch v {
	case "normal", "initial":
		return "400"
	case "bold":
		return "700"
	case "bolder":
		switch {
		case p < 350:
			return "400"
		case p < 550:
			return "700"
		case p < 900:
			return "900"
		}
		return strconv.FormatFloat(p, 'f', -1, 64)
	case "lighter":
		switch {
		case p < 550:
			return "100"
		case p < 750:
			return "400"
		}
		return "700"
	}
	if isNumericWeight(v) {
		n, _ := strconv.ParseFloat(v, 64)
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return parent
}

// Restyle recomputes styles of all elements for the new root style (theme).
// Matching of stylesheets is not repeated.
func (d *Document) Restyle(root Style) {
	if d == nil {
		return
	}
	d.rootBase = root
	for _, e := range d.elements {
		parent := root
		if e.parent != nil {
			parent = e.parent.style
		}
		e.style = compute(e.specified, parent)
	}
}

// Probe returns computed style an empty span would have if placed directly
// into the surface: root style plus rules matching bare span.
func (d *Document) Probe() Style {
	probe := &Element{name: "span"}
	return compute(d.cascade(probe, nil, nil), d.rootBase)
}
