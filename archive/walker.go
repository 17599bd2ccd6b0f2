// Package archive walks document sources: directory trees and zip archives,
// visiting entries in natural sort order.
package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to Walk
// The file argument is the zip.File structure for file in archive which satisfies
// match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk walks the all files in the archive with names starting with
// pattern, calling walkFn for each in natural order of names. Archives
// with absolute entries or entries containing ".." are rejected.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(f.Name, pattern) {
			files = append(files, f)
		}
	}
	slices.SortStableFunc(files, func(a, b *zip.File) int {
		return compare(a.Name, b.Name)
	})

	for _, f := range files {
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// DirFunc is called for every regular file under the root visited by
// WalkDir. When directory could not be read it is called with non nil err
// for that directory. Returning an error stops walking.
type DirFunc func(path string, err error) error

// WalkDir walks directory tree rooted at root in natural order of names.
// Symbolic links are not followed.
func WalkDir(root string, fn DirFunc) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fn(root, err)
	}
	slices.SortStableFunc(entries, func(a, b os.DirEntry) int {
		return compare(a.Name(), b.Name())
	})
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		switch {
		case e.IsDir():
			if err := WalkDir(p, fn); err != nil {
				return err
			}
		case e.Type().IsRegular():
			if err := fn(p, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func compare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(name, "/"), "..")
}
