package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/platform"
)

// ErrNotBundle indicates a directory without templates/commands.
var ErrNotBundle = errors.New("not a template bundle")

const (
	vscodeSettings = "vscode-settings.json"
	commandPattern = "*.md"
)

// Result lists what Build wrote, as slash-separated paths relative to the
// destination.
type Result struct {
	Files    []string
	Commands []string
}

// IsBundle reports whether dir has the bundle layout.
func IsBundle(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "templates", "commands"))
	return err == nil && info.IsDir()
}

// Build renders the bundle at src into dest for one agent and script
// variant. dest is created if needed.
func Build(src, dest string, profile agent.Profile, script agent.ScriptVariant) (*Result, error) {
	if !IsBundle(src) {
		return nil, fmt.Errorf("%s: %w", src, ErrNotBundle)
	}
	log := logger.ForComponent("bundle")
	b := &builder{src: src, dest: dest, home: filepath.Join(dest, branding.HomeDir())}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"memory", b.copyMemory},
		{"scripts", func() error { return b.copyScripts(script) }},
		{"templates", b.copyTemplates},
		{"commands", func() error { return b.renderCommands(profile, script) }},
		{"agent files", func() error { return b.copyAgentFiles(profile) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("building %s: %w", s.name, err)
		}
	}

	sort.Strings(b.files)
	log.Debug("bundle built", "agent", profile.Key, "script", script.Key, "files", len(b.files))
	return &Result{Files: b.files, Commands: b.commands}, nil
}

type builder struct {
	src, dest, home string
	files           []string
	commands        []string
}

func (b *builder) record(abs string) {
	rel, err := filepath.Rel(b.dest, abs)
	if err != nil {
		return
	}
	b.files = append(b.files, filepath.ToSlash(rel))
}

func (b *builder) copyDir(from, to string, exclude []string) error {
	if info, err := os.Stat(from); err != nil || !info.IsDir() {
		return nil
	}
	files, err := platform.CopyTree(from, to, exclude)
	if err != nil {
		return err
	}
	for _, rel := range files {
		b.record(filepath.Join(to, filepath.FromSlash(rel)))
	}
	return nil
}

func (b *builder) copyFile(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return err
	}
	if err := platform.CopyFile(from, to); err != nil {
		return err
	}
	b.record(to)
	return nil
}

func (b *builder) writeFile(to string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(to, data, 0644); err != nil {
		return err
	}
	b.record(to)
	return nil
}

// topFiles returns the regular files directly inside dir, sorted.
func topFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && !platform.Excluded(e.Name(), platform.DefaultExcludes) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (b *builder) copyMemory() error {
	return b.copyDir(filepath.Join(b.src, "memory"), filepath.Join(b.home, "memory"), platform.DefaultExcludes)
}

func (b *builder) copyScripts(script agent.ScriptVariant) error {
	scripts := filepath.Join(b.src, "scripts")
	dest := filepath.Join(b.home, "scripts")
	if err := b.copyDir(filepath.Join(scripts, script.Dir), filepath.Join(dest, script.Dir), platform.DefaultExcludes); err != nil {
		return err
	}
	names, err := topFiles(scripts)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := b.copyFile(filepath.Join(scripts, name), filepath.Join(dest, name)); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) copyTemplates() error {
	exclude := append([]string{"commands", vscodeSettings}, platform.DefaultExcludes...)
	return b.copyDir(filepath.Join(b.src, "templates"), filepath.Join(b.home, "templates"), exclude)
}

func (b *builder) renderCommands(profile agent.Profile, script agent.ScriptVariant) error {
	commandsDir := filepath.Join(b.src, "templates", "commands")
	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		return err
	}

	outDir := filepath.Join(b.dest, filepath.FromSlash(profile.CommandDir))
	for _, e := range entries {
		if ok, _ := doublestar.Match(commandPattern, e.Name()); !ok || !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(commandsDir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), ".md")
		cmd := RenderCommand(name, string(raw), profile, script)
		data, err := Encode(cmd, profile.CommandFormat)
		if err != nil {
			return err
		}
		if err := b.writeFile(filepath.Join(outDir, profile.CommandFileName(name)), data); err != nil {
			return err
		}
		b.commands = append(b.commands, name)

		if profile.CommandFormat == agent.FormatAgentMD {
			stub := filepath.Join(b.dest, ".github", "prompts", branding.CommandPrefix()+"."+name+".prompt.md")
			if err := b.writeFile(stub, PromptStub(name)); err != nil {
				return err
			}
		}
	}

	if profile.CommandFormat == agent.FormatAgentMD {
		settings := filepath.Join(b.src, "templates", vscodeSettings)
		if _, err := os.Stat(settings); err == nil {
			if err := b.copyFile(settings, filepath.Join(b.dest, ".vscode", "settings.json")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) copyAgentFiles(profile agent.Profile) error {
	dir := filepath.Join(b.src, "agent_templates", profile.Key)
	names, err := topFiles(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := b.copyFile(filepath.Join(dir, name), filepath.Join(b.dest, name)); err != nil {
			return err
		}
	}
	return nil
}
