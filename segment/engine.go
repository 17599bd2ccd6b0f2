// Package segment serializes document runs into text with properly nested
// semantic tags.
package segment

import (
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"retainformat/format"
	"retainformat/richtext"
)

// Engine turns runs and active formats into tagged text. It never changes
// formats it is given.
type Engine struct {
	base format.Baseline
	log  *zap.Logger
}

// New returns engine classifying runs against baseline.
func New(base format.Baseline, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{base: base, log: log.Named("segment")}
}

// label groups all active formats sharing the same tag name.
type label struct {
	name    string
	formats []format.Detected
	first   int
	last    int
}

func (l *label) span() int {
	if l.first < 0 {
		return -1
	}
	return l.last - l.first
}

// RawText returns text of runs with breaks as newlines.
func RawText(runs []richtext.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		if r.Kind == richtext.RunBreak {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Serialize writes run text wrapping every stretch of runs a label applies
// to in <label>...</label>. Labels covering larger part of the document
// become outer tags. Output is always properly nested and stripping tags
// from it yields RawText.
func (e *Engine) Serialize(runs []richtext.Run, active []format.Detected) string {
	labels := e.collect(active)
	if len(labels) == 0 {
		return RawText(runs)
	}

	// classification
	applies := make([][]bool, len(runs))
	for i, r := range runs {
		if r.Kind != richtext.RunText {
			continue
		}
		applies[i] = make([]bool, len(labels))
		t := format.Classify(r.Node, e.base)
		for li, l := range labels {
			for _, f := range l.formats {
				if t.Has(f.Dimension, f.Key) {
					applies[i][li] = true
					if l.first < 0 {
						l.first = i
					}
					l.last = i
					break
				}
			}
		}
	}

	// global opening order
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return labels[order[a]].span() > labels[order[b]].span()
	})
	rank := make([]int, len(labels))
	for r, li := range order {
		rank[li] = r
	}
	if ce := e.log.Check(zap.DebugLevel, "Opening order"); ce != nil {
		names := make([]string, 0, len(order))
		for _, li := range order {
			names = append(names, labels[li].name)
		}
		ce.Write(zap.Strings("labels", names))
	}

	// stack is always ordered by rank
	var (
		sb    strings.Builder
		stack []int
	)
	for i, r := range runs {
		if r.Kind == richtext.RunBreak {
			sb.WriteByte('\n')
			continue
		}
		set := applies[i]

		// Labels above a stale one or above a label which has to be opened
		// outside of them are closed, still applicable ones are reopened
		// right after.
		lowest := len(order)
		for li, on := range set {
			if on && rank[li] < lowest && !slices.Contains(stack, li) {
				lowest = rank[li]
			}
		}
		if pos := slices.IndexFunc(stack, func(li int) bool { return !set[li] || rank[li] > lowest }); pos >= 0 {
			for k := len(stack) - 1; k >= pos; k-- {
				closeTag(&sb, labels[stack[k]].name)
			}
			stack = stack[:pos]
		}
		for _, li := range order {
			if set[li] && !slices.Contains(stack, li) {
				openTag(&sb, labels[li].name)
				stack = append(stack, li)
			}
		}
		sb.WriteString(r.Text)
	}
	for k := len(stack) - 1; k >= 0; k-- {
		closeTag(&sb, labels[stack[k]].name)
	}
	return sb.String()
}

// collect groups active formats by label in order of discovery.
func (e *Engine) collect(active []format.Detected) []*label {
	var (
		labels []*label
		index  = make(map[string]*label)
	)
	for _, f := range active {
		if !f.Active() {
			continue
		}
		name := strings.TrimSpace(f.UserLabel)
		l, ok := index[name]
		if !ok {
			l = &label{name: name, first: -1, last: -1}
			index[name] = l
			labels = append(labels, l)
		}
		l.formats = append(l.formats, f)
	}
	return labels
}

func openTag(sb *strings.Builder, name string) {
	sb.WriteByte('<')
	sb.WriteString(name)
	sb.WriteByte('>')
}

func closeTag(sb *strings.Builder, name string) {
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}
