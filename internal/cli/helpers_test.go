package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupCLI isolates config, HOME, and PATH, and pins the terminal seams to
// non-interactive. The release API points at a server that answers 404.
func setupCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SPECFORGE_HOME", filepath.Join(home, ".specforge"))
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("PATH", t.TempDir())
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	prevInteractive, prevTerminal, prevAPI := isInteractive, stdoutIsTerminal, releaseAPIBase
	prevChooser, prevConfirm, prevProber := newChooser, newConfirm, newProber
	t.Cleanup(func() {
		isInteractive, stdoutIsTerminal, releaseAPIBase = prevInteractive, prevTerminal, prevAPI
		newChooser, newConfirm, newProber = prevChooser, prevConfirm, prevProber
	})
	isInteractive = func() bool { return false }
	stdoutIsTerminal = func() bool { return false }
	releaseAPIBase = server.URL

	work := t.TempDir()
	t.Chdir(work)
	return work
}

// runCLI executes the command tree with fresh flag values.
func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// prebuiltTemplate is a local template that already has the project layout.
func prebuiltTemplate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".specforge/memory/constitution.md":         "# Constitution\n",
		".specforge/scripts/bash/create-feature.sh": "#!/usr/bin/env bash\necho feature\n",
		".specforge/templates/spec-template.md":     "# Spec\n",
		".claude/commands/specforge.plan.md":        "---\ndescription: Plan\n---\nPlan $ARGUMENTS\n",
	})
	return root
}

// sourceBundle is a local template in source layout, rendered per agent.
func sourceBundle(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"templates/commands/plan.md":     "---\ndescription: Plan it\nscripts:\n  sh: scripts/bash/plan.sh\n  ps: scripts/powershell/plan.ps1\n---\nRun {SCRIPT} {ARGS}\n",
		"templates/spec-template.md":     "# Spec\n",
		"templates/vscode-settings.json": `{"chat.promptFiles": true}`,
		"scripts/bash/plan.sh":           "#!/usr/bin/env bash\n",
		"scripts/powershell/plan.ps1":    "Write-Host plan\n",
		"memory/constitution.md":         "# Constitution\n",
	})
	return root
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s not to exist (err=%v)", path, err)
	}
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q:\n%s", want, got)
	}
}
