package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/platform"
)

// SettingsFile is merged into an existing copy instead of replacing it.
const SettingsFile = ".vscode/settings.json"

// Payload is a staged template tree. Materialize closes it on every path.
type Payload interface {
	Dir() string
	Files() []string
	Close() error
}

// WriteError reports a write failure part-way through materialization.
// Files already written are left in place and listed in Completed.
type WriteError struct {
	Path      string
	Completed []string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v (%d file(s) written before the failure)", e.Path, e.Err, len(e.Completed))
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result describes a completed materialization. Paths are slash-separated
// and relative to Dir.
type Result struct {
	Dir         string
	Created     bool
	Written     []string
	Overwritten []string
	Merged      []string
	Executable  []string
	Warnings    []string
}

// Materialize writes payload into the planned destination, creating it if
// needed. Files outside the payload are never touched. On a write failure
// it stops and returns a *WriteError without undoing earlier writes.
func Materialize(ctx context.Context, plan *Plan, payload Payload) (res *Result, err error) {
	log := logger.ForComponent("scaffold")
	defer func() {
		if cerr := payload.Close(); cerr != nil {
			log.Warn("removing staging directory", "error", cerr)
		}
	}()

	res = &Result{Dir: plan.Dir}
	if plan.State == StateNonexistent {
		if err := os.MkdirAll(plan.Dir, 0755); err != nil {
			return nil, &WriteError{Path: plan.Dir, Err: err}
		}
		res.Created = true
	}

	src := payload.Dir()
	for _, rel := range payload.Files() {
		if err := ctx.Err(); err != nil {
			return res, &WriteError{Path: rel, Completed: res.Written, Err: err}
		}
		if err := writeOne(res, src, plan.Dir, rel); err != nil {
			return res, &WriteError{Path: rel, Completed: res.Written, Err: err}
		}
	}

	makeScriptsExecutable(res, plan.Dir)
	log.Debug("materialized", "dir", plan.Dir, "written", len(res.Written),
		"overwritten", len(res.Overwritten), "merged", len(res.Merged))
	return res, nil
}

// ErrOutsideDestination indicates a payload path whose parent directory
// resolves, through a symbolic link, to somewhere outside the destination.
var ErrOutsideDestination = errors.New("path resolves outside the destination")

func writeOne(res *Result, srcRoot, destRoot, rel string) error {
	from := filepath.Join(srcRoot, filepath.FromSlash(rel))
	to := filepath.Join(destRoot, filepath.FromSlash(rel))

	if err := ensureParent(destRoot, filepath.Dir(to)); err != nil {
		return err
	}

	existing, statErr := os.Lstat(to)
	exists := statErr == nil
	if exists && existing.IsDir() {
		return fmt.Errorf("%s is a directory in the destination", rel)
	}
	link := exists && existing.Mode()&os.ModeSymlink != 0

	if exists && rel == SettingsFile {
		merged, err := mergedSettings(from, to)
		if err != nil {
			return err
		}
		if link {
			if err := os.Remove(to); err != nil {
				return err
			}
		}
		if err := os.WriteFile(to, merged, 0644); err != nil {
			return err
		}
		res.Merged = append(res.Merged, rel)
		res.Written = append(res.Written, rel)
		return nil
	}

	// The link itself is replaced; its target is never written through.
	if link {
		if err := os.Remove(to); err != nil {
			return err
		}
	}
	if err := platform.CopyFile(from, to); err != nil {
		return err
	}
	if exists {
		res.Overwritten = append(res.Overwritten, rel)
	}
	res.Written = append(res.Written, rel)
	return nil
}

// WriteFile writes data to rel under root as a regular file. A symbolic
// link at rel is replaced rather than followed.
func WriteFile(root, rel string, data []byte, perm os.FileMode) error {
	to := filepath.Join(root, filepath.FromSlash(rel))
	if err := ensureParent(root, filepath.Dir(to)); err != nil {
		return err
	}
	if info, err := os.Lstat(to); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(to); err != nil {
			return err
		}
	}
	return os.WriteFile(to, data, perm)
}

// ensureParent creates dir under root after checking that its deepest
// existing ancestor resolves inside root.
func ensureParent(root, dir string) error {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	ancestor := dir
	for {
		if _, err := os.Lstat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	resolved, err := filepath.EvalSymlinks(ancestor)
	if err != nil {
		return err
	}
	if !within(realRoot, resolved) {
		return fmt.Errorf("%w: %s -> %s", ErrOutsideDestination, ancestor, resolved)
	}
	return os.MkdirAll(dir, 0755)
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// makeScriptsExecutable marks shebang .sh scripts under the home
// directory's scripts folder executable. Failures become warnings.
func makeScriptsExecutable(res *Result, dir string) {
	prefix := branding.HomeDir() + "/scripts/"
	var failures []string
	for _, rel := range res.Written {
		if !strings.HasPrefix(rel, prefix) || path.Ext(rel) != ".sh" {
			continue
		}
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if !platform.HasShebang(abs) {
			continue
		}
		changed, err := platform.MakeExecutable(abs)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		if changed {
			res.Executable = append(res.Executable, rel)
		}
	}
	if len(failures) > 0 {
		res.Warnings = append(res.Warnings, "could not mark scripts executable: "+strings.Join(failures, "; "))
	}
}
