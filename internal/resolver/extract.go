package resolver

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/platform"
)

// archiveExcludes are archive-tool artifacts dropped during extraction.
var archiveExcludes = []string{
	"__MACOSX",
	"__MACOSX/**",
	"**/.DS_Store",
}

// Extract unpacks the zip at archivePath into dest. Entries that would
// escape dest are rejected. When every entry sits under one top-level
// directory other than the project home directory, that directory is
// stripped so its contents land in dest.
func Extract(archivePath, dest string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrArchive, filepath.Base(archivePath), err)
	}
	defer zr.Close()

	type entry struct {
		f   *zip.File
		rel string
	}
	var entries []entry
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if strings.HasPrefix(name, "/") || filepath.IsAbs(f.Name) {
			return nil, fmt.Errorf("%w: absolute path %q in archive", ErrArchive, f.Name)
		}
		clean := path.Clean(name)
		if clean == ".." || strings.HasPrefix(clean, "../") {
			return nil, fmt.Errorf("%w: entry %q escapes the extraction directory", ErrArchive, f.Name)
		}
		if clean == "." || platform.Excluded(clean, archiveExcludes) {
			continue
		}
		if f.FileInfo().IsDir() || !f.Mode().IsRegular() {
			continue
		}
		entries = append(entries, entry{f: f, rel: clean})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s contains no files", ErrArchive, filepath.Base(archivePath))
	}

	rels := make([]string, len(entries))
	for i, e := range entries {
		rels[i] = e.rel
	}
	if prefix := commonRoot(rels); prefix != "" && prefix != branding.HomeDir()+"/" {
		for i := range entries {
			entries[i].rel = strings.TrimPrefix(entries[i].rel, prefix)
		}
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		target := filepath.Join(dest, filepath.FromSlash(e.rel))
		if err := writeEntry(e.f, target); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrArchive, e.f.Name, err)
		}
		files = append(files, e.rel)
	}
	return files, nil
}

// commonRoot returns "dir/" when every path sits under that single
// top-level directory, and "" otherwise.
func commonRoot(paths []string) string {
	top, _, nested := strings.Cut(paths[0], "/")
	if !nested {
		return ""
	}
	prefix := top + "/"
	for _, p := range paths[1:] {
		if !strings.HasPrefix(p, prefix) {
			return ""
		}
	}
	return prefix
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
