//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/resolver"
	"github.com/specforge-labs/forge/internal/scaffold"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // HOME and SPECFORGE_HOME parent
	WorkDir     string // current directory for the run
	TemplateDir string // local template bundle
}

// setupTestEnv isolates HOME and the config directory so git identity and
// settings come from nowhere but the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:     t.TempDir(),
		WorkDir:     t.TempDir(),
		TemplateDir: t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	t.Setenv("USERPROFILE", env.HomeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.HomeDir, ".config"))
	t.Setenv("SPECFORGE_HOME", filepath.Join(env.HomeDir, ".specforge"))
	t.Chdir(env.WorkDir)

	setupBundle(t, env.TemplateDir)
	return env
}

// setupBundle writes a template bundle in source layout: command sources
// under templates/commands, both script families, and agent extras.
func setupBundle(t *testing.T, root string) {
	t.Helper()

	writeFile(t, filepath.Join(root, "templates/commands/specify.md"), `---
description: Create or update the feature specification
scripts:
  sh: scripts/bash/create-new-feature.sh --json "{ARGS}"
  ps: scripts/powershell/create-new-feature.ps1 -Json "{ARGS}"
---
Run {SCRIPT} from the repo root. Use templates/spec-template.md.

User input: $ARGUMENTS
`)
	writeFile(t, filepath.Join(root, "templates/commands/plan.md"), `---
description: Execute the implementation planning workflow
scripts:
  sh: scripts/bash/setup-plan.sh --json
  ps: scripts/powershell/setup-plan.ps1 -Json
---
Run {SCRIPT}. Read memory/constitution.md for __AGENT__.
`)
	writeFile(t, filepath.Join(root, "templates/spec-template.md"), "# Feature Specification\n")
	writeFile(t, filepath.Join(root, "templates/plan-template.md"), "# Implementation Plan\n")
	writeFile(t, filepath.Join(root, "templates/vscode-settings.json"), `{"chat.promptFiles": true, "chat.tools.terminal.autoApprove": {".specforge/scripts/bash/": true}}`)
	writeFile(t, filepath.Join(root, "memory/constitution.md"), "# Project Constitution\n")
	writeFile(t, filepath.Join(root, "scripts/bash/create-new-feature.sh"), "#!/usr/bin/env bash\necho new\n")
	writeFile(t, filepath.Join(root, "scripts/bash/setup-plan.sh"), "#!/usr/bin/env bash\necho plan\n")
	writeFile(t, filepath.Join(root, "scripts/bash/common.sh"), "# sourced, no shebang\n")
	writeFile(t, filepath.Join(root, "scripts/powershell/create-new-feature.ps1"), "Write-Output new\n")
	writeFile(t, filepath.Join(root, "scripts/powershell/setup-plan.ps1"), "Write-Output plan\n")
}

// initProject runs the resolve and materialize stages the way `forge init` does.
func initProject(t *testing.T, env *testEnv, target scaffold.Target, agentKey, scriptKey string) (*scaffold.Result, error) {
	t.Helper()

	reg, err := agent.Load()
	if err != nil {
		t.Fatalf("loading registry: %v", err)
	}
	sel, err := reg.Select(context.Background(), agent.Request{Agent: agentKey, Script: scriptKey}, nil, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	plan, err := scaffold.Prepare(target, scaffold.Options{})
	if err != nil {
		return nil, err
	}

	src, err := resolver.ParseSource(env.TemplateDir)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	pkg, err := resolver.New().Resolve(context.Background(), resolver.Request{
		Source: src,
		Agent:  sel.Agent,
		Script: sel.Script,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return scaffold.Materialize(context.Background(), plan, pkg)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
