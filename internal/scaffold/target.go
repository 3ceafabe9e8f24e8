package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrDestinationNotEmpty indicates a non-empty destination that was
	// neither forced nor confirmed.
	ErrDestinationNotEmpty = errors.New("destination is not empty")

	// ErrCancelled indicates the user declined to merge into a non-empty
	// destination.
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidTarget indicates a bad combination of project name and
	// --here.
	ErrInvalidTarget = errors.New("invalid project target")
)

// State classifies the destination before anything is written.
type State int

const (
	StateNonexistent State = iota
	StateEmpty
	StateNonEmpty
)

func (s State) String() string {
	switch s {
	case StateNonexistent:
		return "nonexistent"
	case StateEmpty:
		return "empty"
	case StateNonEmpty:
		return "non-empty"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Target is where a project is scaffolded.
type Target struct {
	Path    string // project name or path; ignored when Here is set
	Here    bool   // scaffold into the working directory
	Force   bool   // merge into a non-empty destination without asking
	SkipGit bool
}

// NewTarget builds a Target from the init arguments. Exactly one of name
// and here must be given; "." is the same as here.
func NewTarget(name string, here bool) (Target, error) {
	name = strings.TrimSpace(name)
	if name == "." {
		name, here = "", true
	}
	switch {
	case here && name != "":
		return Target{}, fmt.Errorf("%w: cannot specify both a project name and --here", ErrInvalidTarget)
	case !here && name == "":
		return Target{}, fmt.Errorf("%w: specify a project name, or use --here (or \".\") for the current directory", ErrInvalidTarget)
	}
	return Target{Path: name, Here: here}, nil
}

// Options control the non-empty gate.
type Options struct {
	// Interactive allows Confirm to be asked. When false a non-empty,
	// unforced destination fails with ErrDestinationNotEmpty.
	Interactive bool

	// Confirm asks the user a yes/no question.
	Confirm func(question string) (bool, error)

	// Getwd returns the working directory. Nil means os.Getwd.
	Getwd func() (string, error)
}

// Plan is a destination that has passed the gate.
type Plan struct {
	Target   Target
	Dir      string // absolute
	State    State
	Existing int // entries already present when State is StateNonEmpty
}

// Merge reports whether the package is written over existing content.
func (p *Plan) Merge() bool { return p.State == StateNonEmpty }

// Name is the project's display name, the base name of Dir.
func (p *Plan) Name() string { return filepath.Base(p.Dir) }

// Prepare resolves the destination to an absolute path, classifies it,
// and applies the non-empty gate. It does not modify the filesystem.
func Prepare(t Target, opts Options) (*Plan, error) {
	dir, err := resolveDir(t, opts.Getwd)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Target: t, Dir: dir}
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		plan.State = StateNonexistent
		return plan, nil
	case err != nil:
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			return nil, fmt.Errorf("%w: %s exists and is not a directory", ErrInvalidTarget, dir)
		}
		return nil, fmt.Errorf("inspecting %s: %w", dir, err)
	case len(entries) == 0:
		plan.State = StateEmpty
		return plan, nil
	}

	plan.State = StateNonEmpty
	plan.Existing = len(entries)
	if t.Force {
		return plan, nil
	}
	if !opts.Interactive || opts.Confirm == nil {
		return nil, fmt.Errorf("%w: %s has %d existing item(s)", ErrDestinationNotEmpty, dir, len(entries))
	}

	question := fmt.Sprintf("%s is not empty (%d items). Template files will be merged with existing content and may overwrite existing files. Continue?", dir, len(entries))
	ok, err := opts.Confirm(question)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCancelled
	}
	return plan, nil
}

func resolveDir(t Target, getwd func() (string, error)) (string, error) {
	if t.Here {
		if getwd == nil {
			getwd = os.Getwd
		}
		dir, err := getwd()
		if err != nil {
			return "", fmt.Errorf("resolving current directory: %w", err)
		}
		return filepath.Abs(dir)
	}
	if t.Path == "" {
		return "", fmt.Errorf("%w: empty project path", ErrInvalidTarget)
	}
	dir, err := filepath.Abs(t.Path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", t.Path, err)
	}
	return dir, nil
}
