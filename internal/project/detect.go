package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/platform"
)

var (
	// ErrNotInitialized indicates a directory without the project home
	// directory.
	ErrNotInitialized = errors.New("not an initialized project")

	// ErrNoAgents indicates a project with no installed agent commands and
	// nothing requested to add.
	ErrNoAgents = errors.New("no installed agents detected")
)

// Home returns the project home directory under dir.
func Home(dir string) string {
	return filepath.Join(dir, branding.HomeDir())
}

// Initialized reports whether dir holds a project home directory.
func Initialized(dir string) bool {
	info, err := os.Stat(Home(dir))
	return err == nil && info.IsDir()
}

// InstalledAgents returns, in registry order, the agents whose command
// directory under dir holds at least one command file.
func InstalledAgents(dir string, reg *agent.Registry) []agent.Profile {
	prefix := branding.CommandPrefix() + "."
	var found []agent.Profile
	for _, p := range reg.Agents() {
		if hasPrefixedFile(filepath.Join(dir, filepath.FromSlash(p.CommandDir)), prefix) {
			found = append(found, p)
		}
	}
	return found
}

func hasPrefixedFile(dir, prefix string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), prefix) {
			return true
		}
	}
	return false
}

// DetectScript returns the key of the first script variant whose folder
// exists under the project's scripts directory, falling back to the
// platform default.
func DetectScript(dir string, reg *agent.Registry) string {
	scripts := filepath.Join(Home(dir), "scripts")
	for _, s := range reg.Scripts() {
		if info, err := os.Stat(filepath.Join(scripts, s.Dir)); err == nil && info.IsDir() {
			return s.Key
		}
	}
	return agent.DefaultScriptKey("")
}

// MemoryFiles counts the files under the project's memory directory.
func MemoryFiles(dir string) int {
	files, err := platform.Walk(filepath.Join(Home(dir), "memory"), nil)
	if err != nil {
		return 0
	}
	return len(files)
}
