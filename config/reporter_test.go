package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]bool {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestReport_Archive(t *testing.T) {
	tmp := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(tmp, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(tmp, "input.html")
	if err := os.WriteFile(stored, []byte("<b>x</b>"), 0644); err != nil {
		t.Fatal(err)
	}
	srcDir := filepath.Join(tmp, "dir")
	if err := os.MkdirAll(filepath.Join(srcDir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "sub", "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("source", stored)
	r.StoreData("formats.txt", []byte("bold:bold"))
	if err := r.StoreCopy("copy", stored); err != nil {
		t.Fatalf("StoreCopy(file) error = %v", err)
	}
	if err := r.StoreCopy("tree", srcDir); err != nil {
		t.Fatalf("StoreCopy(dir) error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	names := readArchive(t, r.Name())
	for _, want := range []string{"MANIFEST", "source", "formats.txt", "copy/input.html", "tree/sub/a.txt"} {
		if !names[want] {
			t.Errorf("report is missing %q, has %v", want, names)
		}
	}
}

func TestReport_CloseRemovesCopies(t *testing.T) {
	tmp := t.TempDir()
	r, err := (&ReporterConfig{Destination: filepath.Join(tmp, "r.zip")}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(tmp, "a.txt")
	if err := os.WriteFile(src, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("a", src); err != nil {
		t.Fatal(err)
	}
	var copies []string
	for _, e := range r.entries {
		copies = append(copies, e.actual)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	for _, c := range copies {
		if _, err := os.Stat(c); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s was not removed", c)
		}
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original file should be kept: %v", err)
	}
}

func TestReport_StoreCopyVersionsNames(t *testing.T) {
	tmp := t.TempDir()
	r := &Report{entries: make(map[string]entry)}
	src := filepath.Join(tmp, "a.txt")
	if err := os.WriteFile(src, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if err := r.StoreCopy("a", src); err != nil {
			t.Fatal(err)
		}
	}
	if len(r.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(r.entries))
	}
	versioned := 0
	for name, e := range r.entries {
		if strings.HasPrefix(name, "a-") {
			versioned++
		}
		os.RemoveAll(e.actual)
	}
	if versioned != 1 {
		t.Errorf("expected one versioned name, got %d", versioned)
	}
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("x", "y")
	r.StoreData("x", nil)
	if err := r.StoreCopy("x", "y"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name on nil report = %q, want empty", r.Name())
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	r.StoreData("x", []byte("2"))
}
