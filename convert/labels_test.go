package convert

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"retainformat/format"
	"retainformat/richtext"
)

func TestParseLabelFlags(t *testing.T) {
	got, err := parseLabelFlags([]string{"bold:bold=Emph", " heading:H1 =Title", "color:rgb(1, 2, 3)=a=b", "italic:italic="})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"bold:bold":          "Emph",
		"heading:H1":         "Title",
		"color:rgb(1, 2, 3)": "a=b",
		"italic:italic":      "",
	}
	if len(got) != len(want) {
		t.Fatalf("parseLabelFlags() = %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("label[%q] = %q, want %q", k, got[k], v)
		}
	}

	for _, bad := range []string{"nolabel", "=Label"} {
		if _, err := parseLabelFlags([]string{bad}); err == nil {
			t.Errorf("parseLabelFlags(%q) expected error", bad)
		}
	}
}

func TestLoadLabelsFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "labels.yaml")
	if err := os.WriteFile(good, []byte("bold:bold: Strong\n\"alignment:center\": Centered\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := loadLabelsFile(good)
	if err != nil {
		t.Fatal(err)
	}
	if got["bold:bold"] != "Strong" || got["alignment:center"] != "Centered" {
		t.Errorf("loadLabelsFile() = %v", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("- not\n- a map\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadLabelsFile(bad); err == nil {
		t.Error("expected error for list")
	}
	if _, err := loadLabelsFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyLabels(t *testing.T) {
	root := richtext.Style{Color: "rgb(0, 0, 1)", TextAlign: "start", FontWeight: "400"}
	doc, err := richtext.ReadString("<b>x</b><i>y</i>", richtext.Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	set := format.Detect(doc, format.BaselineFromStyle(root))

	n := applyLabels(set, map[string]string{
		"bold:bold":     "B",
		"italic:italic": "I",
		"heading:H2":    "Sub",
	}, zap.NewNop())
	if n != 2 {
		t.Errorf("applyLabels() = %d, want 2", n)
	}
	if len(set.Active()) != 2 {
		t.Errorf("Active() = %+v", set.Active())
	}
}
