package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func makeZip(t *testing.T, names ...string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zf.Close()

	w := zip.NewWriter(zf)
	for _, n := range names {
		fw, err := w.Create(n)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", n, err)
		}
		if strings.HasSuffix(n, "/") {
			continue
		}
		if _, err := fw.Write([]byte("content of " + n)); err != nil {
			t.Fatalf("Failed to write %s: %v", n, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		"docs/chapter10.html",
		"docs/chapter2.html",
		"docs/",
		"docs/chapter1.md",
		"notes/readme.md",
		"index.html",
	)

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"everything", "", []string{"docs/chapter1.md", "docs/chapter2.html", "docs/chapter10.html", "index.html", "notes/readme.md"}},
		{"prefix", "docs/", []string{"docs/chapter1.md", "docs/chapter2.html", "docs/chapter10.html"}},
		{"single file", "notes/readme.md", []string{"notes/readme.md"}},
		{"case sensitive", "Docs/", nil},
		{"nothing", "missing/", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			err := Walk(zipPath, tt.pattern, func(archive string, f *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				got = append(got, f.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Walk() visited %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk_Stop(t *testing.T) {
	zipPath := makeZip(t, "a.html", "b.html", "c.html")
	stop := errors.New("stop")
	count := 0
	err := Walk(zipPath, "", func(string, *zip.File) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || count != 2 {
		t.Errorf("Walk() = %v after %d files", err, count)
	}
}

func TestWalk_Errors(t *testing.T) {
	if err := Walk(filepath.Join(t.TempDir(), "missing.zip"), "", nil); err == nil {
		t.Error("expected error for missing archive")
	}

	bad := filepath.Join(t.TempDir(), "bad.zip")
	if err := os.WriteFile(bad, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(bad, "", nil); err == nil {
		t.Error("expected error for invalid archive")
	}

	unsafe := makeZip(t, "ok.html", "../escape.html")
	err := Walk(unsafe, "", func(string, *zip.File) error { return nil })
	if err == nil {
		t.Error("expected error for path traversal entry")
	}
}

func TestIsSafePath(t *testing.T) {
	for name, want := range map[string]bool{
		"a/b.html":       true,
		"a..b/c.html":    true,
		"/abs.html":      false,
		`\win.html`:      false,
		"a/../../b.html": false,
		"..":             false,
	} {
		if got := isSafePath(name); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWalkDir(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"b/file10.md", "b/file9.md", "a.html", "c/d/deep.html"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(p), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	var got []string
	err := WalkDir(root, func(path string, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir() error = %v", err)
	}
	want := []string{"a.html", "b/file9.md", "b/file10.md", "c/d/deep.html"}
	if !slices.Equal(got, want) {
		t.Errorf("WalkDir() = %v, want %v", got, want)
	}

	var reported error
	_ = WalkDir(filepath.Join(root, "missing"), func(_ string, err error) error {
		reported = err
		return nil
	})
	if reported == nil {
		t.Error("missing root must be reported to callback")
	}
}
