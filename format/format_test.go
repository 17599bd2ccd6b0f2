package format_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"retainformat/common"
	"retainformat/format"
	"retainformat/richtext"
)

var (
	rootStyle = richtext.Style{Color: "rgb(17, 24, 39)", TextAlign: "start", FontWeight: "400", FontStyle: "normal"}
	baseline  = format.Baseline{Color: "rgb(17, 24, 39)", TextAlign: "start", FontWeight: "400"}
)

func readDoc(t *testing.T, src string) *richtext.Document {
	t.Helper()
	d, err := richtext.ReadString(src, richtext.Options{Root: rootStyle, Log: zap.NewNop()})
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	return d
}

func ids(set *format.Set) []string {
	var out []string
	for _, f := range set.Formats() {
		out = append(out, f.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// node is a minimal styled node for classification tests.
type node struct {
	tag    string
	style  richtext.Style
	parent *node
}

func (n *node) Tag() string           { return n.tag }
func (n *node) Style() richtext.Style { return n.style }
func (n *node) Parent() richtext.StyledNode {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func TestClassify(t *testing.T) {
	root := &node{tag: "body", style: rootStyle}
	plain := func(mod func(*richtext.Style)) richtext.Style {
		s := rootStyle
		mod(&s)
		return s
	}

	tests := []struct {
		name string
		n    *node
		base format.Baseline
		want format.Traits
	}{
		{"plain", &node{tag: "span", style: rootStyle, parent: root}, baseline, format.Traits{}},
		{"weight 600", &node{tag: "span", style: plain(func(s *richtext.Style) { s.FontWeight = "600" }), parent: root}, baseline, format.Traits{Bold: true}},
		{"weight 500", &node{tag: "span", style: plain(func(s *richtext.Style) { s.FontWeight = "500" }), parent: root}, baseline, format.Traits{}},
		{"heavy baseline", &node{tag: "span", style: plain(func(s *richtext.Style) { s.FontWeight = "700" }), parent: root},
			format.Baseline{Color: baseline.Color, TextAlign: "start", FontWeight: "700"}, format.Traits{}},
		{"unknown baseline weight", &node{tag: "span", style: plain(func(s *richtext.Style) { s.FontWeight = "600" }), parent: root},
			format.Baseline{Color: baseline.Color, TextAlign: "start"}, format.Traits{Bold: true}},
		{"oblique", &node{tag: "span", style: plain(func(s *richtext.Style) { s.FontStyle = "oblique" }), parent: root}, baseline, format.Traits{Italic: true}},
		{"underline", &node{tag: "span", style: plain(func(s *richtext.Style) { s.TextDecoration = "line-through underline" }), parent: root}, baseline, format.Traits{Underline: true}},
		{"black is ignored", &node{tag: "span", style: plain(func(s *richtext.Style) { s.Color = richtext.Black }), parent: root}, baseline, format.Traits{}},
		{"color", &node{tag: "span", style: plain(func(s *richtext.Style) { s.Color = "rgb(255, 0, 0)" }), parent: root}, baseline, format.Traits{Color: "rgb(255, 0, 0)"}},
		{"alignment", &node{tag: "p", style: plain(func(s *richtext.Style) { s.TextAlign = "center" }), parent: root}, baseline, format.Traits{Alignment: "center"}},
		{"ancestor tags", &node{tag: "span", style: rootStyle, parent: &node{tag: "em", style: rootStyle, parent: &node{tag: "strong", style: rootStyle, parent: &node{tag: "h3", style: rootStyle, parent: root}}}},
			baseline, format.Traits{Bold: true, Italic: true, Heading: 3}},
		{"closest heading", &node{tag: "h2", style: rootStyle, parent: &node{tag: "h1", style: rootStyle, parent: root}}, baseline, format.Traits{Heading: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format.Classify(tt.n, tt.base); got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if got := format.Classify(nil, baseline); got != (format.Traits{}) {
		t.Errorf("Classify(nil) = %+v", got)
	}
}

func TestAppliesTo(t *testing.T) {
	n := &node{tag: "span", style: rootStyle, parent: &node{tag: "h1", style: rootStyle}}
	if !format.AppliesTo(common.DimensionHeading, "H1", n, baseline) {
		t.Error("heading H1 should apply through ancestor")
	}
	if format.AppliesTo(common.DimensionHeading, "H2", n, baseline) {
		t.Error("heading H2 should not apply")
	}
	if format.AppliesTo(common.DimensionColor, "", n, baseline) {
		t.Error("empty color key should never apply")
	}
}

func TestDetect_Order(t *testing.T) {
	d := readDoc(t, `<body style="text-align: right">
<p style="color: rgb(0, 128, 0)"><u>u</u> <i>i</i></p>
<h3>three</h3><h1>one</h1>
<p><b>b</b><span style="color: red">r</span><span style="color: #008000">g again</span></p>
<p style="text-align: center">c</p>
</body>`)
	set := format.Detect(d, baseline)
	want := []string{
		"bold:bold", "italic:italic", "underline:underline",
		"heading:H1", "heading:H3",
		"color:rgb(0, 128, 0)", "color:rgb(255, 0, 0)",
		"alignment:right", "alignment:center",
	}
	if got := ids(set); !equal(got, want) {
		t.Errorf("Detect() = %v\nwant %v", got, want)
	}

	names := map[string]string{}
	for _, f := range set.Formats() {
		names[f.ID] = f.DisplayName
	}
	for id, name := range map[string]string{
		"bold:bold":            "Bold",
		"heading:H3":           "H3 heading",
		"alignment:right":      "Alignment: right",
		"color:rgb(255, 0, 0)": "Color",
	} {
		if names[id] != name {
			t.Errorf("DisplayName(%s) = %q, want %q", id, names[id], name)
		}
	}
}

func TestDetect_RootContributesAlignmentOnly(t *testing.T) {
	d := readDoc(t, `<body style="color: red; font-weight: bold">text</body>`)
	if set := format.Detect(d, baseline); !set.Empty() {
		t.Errorf("root must not contribute color or weight, got %v", ids(set))
	}
}

func TestDetect_BaselineSensitivity(t *testing.T) {
	if set := format.Detect(readDoc(t, `<p>nothing special</p><div>at all</div>`), baseline); !set.Empty() || set.Len() != 0 {
		t.Errorf("plain document detected %v", ids(set))
	}
	set := format.Detect(readDoc(t, `<p><b>one</b> and <b>two</b> and <strong>three</strong></p>`), baseline)
	if got := ids(set); !equal(got, []string{"bold:bold"}) {
		t.Errorf("expected single bold candidate, got %v", got)
	}
}

func TestDetect_NewValueEveryPass(t *testing.T) {
	d := readDoc(t, `<b>x</b>`)
	first := format.Detect(d, baseline)
	if err := first.Apply(format.LabelUpdate{ID: "bold:bold", Label: "B"}); err != nil {
		t.Fatal(err)
	}
	second := format.Detect(d, baseline)
	if len(second.Active()) != 0 {
		t.Error("new detection pass must not carry labels of previous one")
	}
	if len(first.Active()) != 1 {
		t.Error("previous set must be unaffected by new pass")
	}
}

func TestSet_Apply(t *testing.T) {
	set := format.Detect(readDoc(t, `<b>x</b><i>y</i>`), baseline)

	if err := set.Apply(format.LabelUpdate{ID: "italic:italic", Label: "  "}); err != nil {
		t.Fatal(err)
	}
	if len(set.Active()) != 0 {
		t.Error("blank label must not activate format")
	}
	if err := set.Apply(format.LabelUpdate{ID: "italic:italic", Label: "Emph"}); err != nil {
		t.Fatal(err)
	}
	act := set.Active()
	if len(act) != 1 || act[0].UserLabel != "Emph" || act[0].Key != "italic" {
		t.Errorf("Active() = %+v", act)
	}

	err := set.Apply(format.LabelUpdate{ID: "heading:H1", Label: "T"})
	var unknown format.ErrUnknownFormat
	if !errors.As(err, &unknown) || string(unknown) != "heading:H1" {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	f, ok := set.Lookup("bold:bold")
	if !ok || f.Dimension != common.DimensionBold || f.Active() {
		t.Errorf("Lookup(bold:bold) = %+v, %v", f, ok)
	}

	// formats returned are copies
	fs := set.Formats()
	fs[0].UserLabel = "changed"
	if f, _ := set.Lookup(fs[0].ID); f.UserLabel == "changed" {
		t.Error("Formats() must return a copy")
	}

	var empty *format.Set
	if !empty.Empty() || empty.Apply(format.LabelUpdate{ID: "x"}) == nil {
		t.Error("nil set must be empty and reject updates")
	}
}
