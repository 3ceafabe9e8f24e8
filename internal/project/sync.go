package project

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/platform"
	"github.com/specforge-labs/forge/internal/scaffold"
)

// ContextSync reports a context-file sync. Source is empty when no agent
// had a context file to copy from.
type ContextSync struct {
	Source  string // agent key whose file won
	Path    string // slash-separated, relative to the project
	Synced  int
	Created int
}

// SyncContext copies the most recently modified context file among agents
// to every other agent's context file, creating missing ones. Agents that
// share a context path are written once.
func SyncContext(dir string, agents []agent.Profile) (*ContextSync, error) {
	log := logger.ForComponent("project")

	type candidate struct {
		key, rel string
		mod      time.Time
	}
	var newest *candidate
	seen := make(map[string]bool)
	for _, a := range agents {
		rel := a.ContextPath
		if rel == "" || seen[rel] {
			continue
		}
		seen[rel] = true
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if newest == nil || info.ModTime().After(newest.mod) {
			newest = &candidate{key: a.Key, rel: rel, mod: info.ModTime()}
		}
	}
	if newest == nil {
		return &ContextSync{}, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(newest.rel)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", newest.rel, err)
	}
	body := markdownBody(string(data))

	res := &ContextSync{Source: newest.key, Path: newest.rel}
	written := map[string]bool{newest.rel: true}
	for _, a := range agents {
		rel := a.ContextPath
		if rel == "" || written[rel] {
			continue
		}
		written[rel] = true

		target := filepath.Join(dir, filepath.FromSlash(rel))
		content := contextFor(rel, body)
		old, readErr := os.ReadFile(target)
		if readErr == nil && string(old) == content {
			continue
		}
		if err := scaffold.WriteFile(dir, rel, []byte(content), 0644); err != nil {
			return res, fmt.Errorf("writing %s: %w", rel, err)
		}
		if readErr != nil {
			res.Created++
		}
		res.Synced++
	}
	log.Debug("context synced", "source", res.Source, "synced", res.Synced, "created", res.Created)
	return res, nil
}

// markdownBody strips a leading front matter block.
func markdownBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	end := strings.Index(content[3:], "---")
	if end < 0 {
		return content
	}
	return strings.TrimLeft(content[3+end+3:], "\n")
}

// contextFor wraps body in the front matter rule files (.mdc) require.
func contextFor(rel, body string) string {
	if path.Ext(rel) != ".mdc" {
		return body
	}
	return "---\ndescription: " + branding.DisplayName() + " project context\nglobs: \n---\n\n" + body
}

// WorkingDirs are the agent subfolders kept in step by SyncWorking.
func WorkingDirs() []string {
	return []string{"skills", "agents/" + branding.CommandPrefix()}
}

// SyncWorking copies each file under the agents' working folders to every
// other agent folder where it is missing or older. The newest copy of a
// file wins and its modification time is carried over. It returns the
// number of files written.
func SyncWorking(dir string, agents []agent.Profile) (int, error) {
	var folders []string
	seen := make(map[string]bool)
	for _, a := range agents {
		if d := a.Dir(); d != "" && !seen[d] {
			seen[d] = true
			folders = append(folders, d)
		}
	}

	type copyOf struct {
		folder string
		mod    time.Time
		mode   os.FileMode
	}
	total := 0
	for _, sub := range WorkingDirs() {
		versions := make(map[string][]copyOf)
		for _, folder := range folders {
			root := filepath.Join(dir, filepath.FromSlash(folder), filepath.FromSlash(sub))
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				continue
			}
			files, err := platform.Walk(root, platform.DefaultExcludes)
			if err != nil {
				return total, err
			}
			for _, rel := range files {
				info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
				if err != nil {
					return total, err
				}
				versions[rel] = append(versions[rel], copyOf{folder, info.ModTime(), info.Mode().Perm()})
			}
		}

		rels := make([]string, 0, len(versions))
		for rel := range versions {
			rels = append(rels, rel)
		}
		sort.Strings(rels)

		for _, rel := range rels {
			newest := versions[rel][0]
			for _, v := range versions[rel][1:] {
				if v.mod.After(newest.mod) {
					newest = v
				}
			}
			from := path.Join(newest.folder, sub, rel)
			var data []byte
			for _, folder := range folders {
				if folder == newest.folder {
					continue
				}
				to := path.Join(folder, sub, rel)
				abs := filepath.Join(dir, filepath.FromSlash(to))
				if info, err := os.Stat(abs); err == nil && !info.ModTime().Before(newest.mod) {
					continue
				}
				if data == nil {
					var err error
					if data, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(from))); err != nil {
						return total, err
					}
				}
				if err := scaffold.WriteFile(dir, to, data, newest.mode); err != nil {
					return total, fmt.Errorf("writing %s: %w", to, err)
				}
				if err := os.Chtimes(abs, newest.mod, newest.mod); err != nil {
					return total, err
				}
				total++
			}
		}
	}
	return total, nil
}
