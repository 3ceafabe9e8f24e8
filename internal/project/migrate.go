package project

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/platform"
	"github.com/specforge-labs/forge/internal/scaffold"
)

// Move is a rename of a slash-separated path relative to the project.
type Move struct {
	From string
	To   string
}

// Migration lists what must change to move a project off the legacy names.
type Migration struct {
	Dir string

	Home      bool   // the legacy home directory exists
	MergeHome bool   // the current home directory exists too
	Commands  []Move // legacy command files
	Rewrites  []string
	AgentDirs []Move // legacy agents/ subfolders
	Settings  bool   // editor settings mention legacy names
}

// Needed reports whether anything would change.
func (m *Migration) Needed() bool {
	return m.Home || len(m.Commands) > 0 || len(m.Rewrites) > 0 || len(m.AgentDirs) > 0 || m.Settings
}

// MigrationResult counts what Apply changed.
type MigrationResult struct {
	HomeMerged bool
	Renamed    int
	Rewritten  int
	AgentDirs  int
	Settings   bool
}

// legacyReplacer rewrites legacy command, directory, and environment names.
func legacyReplacer() *strings.Replacer {
	oldPrefix, newPrefix := branding.LegacyCommandPrefix()+".", branding.CommandPrefix()+"."
	return strings.NewReplacer(
		"/"+oldPrefix, "/"+newPrefix,
		oldPrefix, newPrefix,
		branding.LegacyHomeDir()+"/", branding.HomeDir()+"/",
		branding.LegacyEnvVar("FEATURE"), branding.EnvVar("FEATURE"),
	)
}

func hasLegacyRef(content string) bool {
	return strings.Contains(content, branding.LegacyCommandPrefix()+".") ||
		strings.Contains(content, branding.LegacyHomeDir()+"/") ||
		strings.Contains(content, branding.LegacyEnvVar("FEATURE"))
}

// PlanMigration inspects dir without changing it.
func PlanMigration(dir string, reg *agent.Registry) (*Migration, error) {
	m := &Migration{Dir: dir}
	if isDir(filepath.Join(dir, branding.LegacyHomeDir())) {
		m.Home = true
		m.MergeHome = Initialized(dir)
	}

	oldPrefix, newPrefix := branding.LegacyCommandPrefix()+".", branding.CommandPrefix()+"."
	seenDirs := make(map[string]bool)
	for _, p := range reg.Agents() {
		cmdDir := strings.TrimSuffix(p.CommandDir, "/")
		if cmdDir != "" && !seenDirs[cmdDir] {
			seenDirs[cmdDir] = true
			entries, err := os.ReadDir(filepath.Join(dir, filepath.FromSlash(cmdDir)))
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			for _, e := range entries {
				if !e.Type().IsRegular() {
					continue
				}
				name := e.Name()
				switch {
				case strings.HasPrefix(name, oldPrefix):
					m.Commands = append(m.Commands, Move{
						From: path.Join(cmdDir, name),
						To:   path.Join(cmdDir, newPrefix+strings.TrimPrefix(name, oldPrefix)),
					})
				case strings.HasPrefix(name, newPrefix):
					data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(cmdDir), name))
					if err == nil && hasLegacyRef(string(data)) {
						m.Rewrites = append(m.Rewrites, path.Join(cmdDir, name))
					}
				}
			}
		}

		if folder := p.Dir(); folder != "" {
			from := path.Join(folder, "agents", branding.LegacyCommandPrefix())
			if isDir(filepath.Join(dir, filepath.FromSlash(from))) && !seenDirs[from] {
				seenDirs[from] = true
				m.AgentDirs = append(m.AgentDirs, Move{From: from, To: path.Join(folder, "agents", branding.CommandPrefix())})
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(scaffold.SettingsFile))); err == nil {
		m.Settings = hasLegacyRef(string(data))
	}
	return m, nil
}

// Apply performs the migration. Memory files already present in the
// current home directory are never overwritten by legacy copies.
func (m *Migration) Apply() (*MigrationResult, error) {
	log := logger.ForComponent("project")
	res := &MigrationResult{}
	dir := m.Dir

	if m.Home {
		legacy := filepath.Join(dir, branding.LegacyHomeDir())
		if m.MergeHome {
			if err := mergeHome(dir, legacy); err != nil {
				return res, fmt.Errorf("merging %s: %w", branding.LegacyHomeDir(), err)
			}
			res.HomeMerged = true
		} else if err := os.Rename(legacy, Home(dir)); err != nil {
			return res, fmt.Errorf("renaming %s: %w", branding.LegacyHomeDir(), err)
		}
	}

	rewrite := make(map[string]bool)
	for _, mv := range m.Commands {
		from := filepath.Join(dir, filepath.FromSlash(mv.From))
		to := filepath.Join(dir, filepath.FromSlash(mv.To))
		if _, err := os.Lstat(to); err == nil {
			if err := os.Remove(from); err != nil {
				return res, err
			}
		} else if err := os.Rename(from, to); err != nil {
			return res, err
		}
		rewrite[mv.To] = true
		res.Renamed++
	}
	for _, rel := range m.Rewrites {
		rewrite[rel] = true
	}

	r := legacyReplacer()
	for rel := range rewrite {
		changed, err := rewriteFile(dir, rel, r)
		if err != nil {
			return res, err
		}
		if changed {
			res.Rewritten++
		}
	}

	for _, mv := range m.AgentDirs {
		from := filepath.Join(dir, filepath.FromSlash(mv.From))
		to := filepath.Join(dir, filepath.FromSlash(mv.To))
		if isDir(to) {
			if err := mergeDir(dir, mv.From, mv.To); err != nil {
				return res, err
			}
			if err := os.RemoveAll(from); err != nil {
				return res, err
			}
		} else if err := os.Rename(from, to); err != nil {
			return res, err
		}
		res.AgentDirs++
	}

	if m.Settings {
		changed, err := rewriteFile(dir, scaffold.SettingsFile, r)
		if err != nil {
			return res, err
		}
		res.Settings = changed
	}

	log.Debug("migrated", "dir", dir, "renamed", res.Renamed, "rewritten", res.Rewritten)
	return res, nil
}

func rewriteFile(dir, rel string, r *strings.Replacer) (bool, error) {
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return false, err
	}
	updated := r.Replace(string(data))
	if updated == string(data) {
		return false, nil
	}
	return true, scaffold.WriteFile(dir, rel, []byte(updated), info.Mode().Perm())
}

// mergeHome copies the legacy home directory into the current one and
// removes it. Existing memory files win.
func mergeHome(dir, legacy string) error {
	files, err := platform.Walk(legacy, platform.DefaultExcludes)
	if err != nil {
		return err
	}
	home := Home(dir)
	for _, rel := range files {
		if strings.HasPrefix(rel, "memory/") {
			if _, err := os.Lstat(filepath.Join(home, filepath.FromSlash(rel))); err == nil {
				continue
			}
		}
		if err := copyInto(dir, filepath.Join(legacy, filepath.FromSlash(rel)), path.Join(branding.HomeDir(), rel)); err != nil {
			return err
		}
	}
	return os.RemoveAll(legacy)
}

// mergeDir copies every file under from into to, both relative to dir.
func mergeDir(dir, from, to string) error {
	root := filepath.Join(dir, filepath.FromSlash(from))
	files, err := platform.Walk(root, platform.DefaultExcludes)
	if err != nil {
		return err
	}
	for _, rel := range files {
		if err := copyInto(dir, filepath.Join(root, filepath.FromSlash(rel)), path.Join(to, rel)); err != nil {
			return err
		}
	}
	return nil
}

func copyInto(dir, src, rel string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return scaffold.WriteFile(dir, rel, data, info.Mode().Perm())
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
