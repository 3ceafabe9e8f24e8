package platform

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are skipped by CopyTree and Walk: VCS metadata, OS
// litter, and archive-tool artifacts. Patterns are doublestar globs matched
// against slash-separated paths relative to the tree root.
var DefaultExcludes = []string{
	"**/.git",
	"**/.DS_Store",
	"**/__MACOSX",
	"**/node_modules",
}

// Excluded reports whether rel (slash-separated) matches any pattern.
func Excluded(rel string, patterns []string) bool {
	return Match(rel, patterns)
}

// Match reports whether rel (slash-separated) matches any doublestar pattern.
func Match(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Walk returns the slash-separated relative paths of every regular file
// under root, sorted, skipping anything matched by exclude. Symlinks and
// other special files are ignored.
func Walk(root string, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if Excluded(rel, exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// CopyTree copies every file Walk finds under src into dst, creating
// directories as needed and overwriting existing files. It returns the
// copied relative paths.
func CopyTree(src, dst string, exclude []string) ([]string, error) {
	return CopySelected(src, dst, nil, exclude)
}

// CopySelected is CopyTree restricted to files matching an include
// pattern. A nil include copies everything.
func CopySelected(src, dst string, include, exclude []string) ([]string, error) {
	files, err := Walk(src, exclude)
	if err != nil {
		return nil, err
	}
	var copied []string
	for _, rel := range files {
		if include != nil && !Match(rel, include) {
			continue
		}
		from := filepath.Join(src, filepath.FromSlash(rel))
		to := filepath.Join(dst, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(to), err)
		}
		if err := CopyFile(from, to); err != nil {
			return nil, err
		}
		copied = append(copied, rel)
	}
	return copied, nil
}

// CopyFile copies a single file from src to dst, preserving permissions.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
