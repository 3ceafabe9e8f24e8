package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specforge-labs/forge/internal/agent"
)

func profiles(t *testing.T, keys ...string) []agent.Profile {
	t.Helper()
	reg := loadRegistry(t)
	out := make([]agent.Profile, 0, len(keys))
	for _, k := range keys {
		p, err := reg.LookupAgent(k)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	return out
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
}

func TestSyncContextNewestWins(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"CLAUDE.md": "# Old\n",
		"GEMINI.md": "---\ntitle: x\n---\n\n# New\n",
	})
	now := time.Now()
	touch(t, filepath.Join(dir, "CLAUDE.md"), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, "GEMINI.md"), now)

	res, err := SyncContext(dir, profiles(t, "claude", "gemini", "cursor-agent", "codex", "amp"))
	if err != nil {
		t.Fatalf("SyncContext: %v", err)
	}
	if res.Source != "gemini" {
		t.Errorf("Source = %q, want gemini", res.Source)
	}
	// codex and amp share AGENTS.md, written once.
	if res.Synced != 3 || res.Created != 2 {
		t.Errorf("Synced = %d, Created = %d, want 3 and 2", res.Synced, res.Created)
	}
	if got := readFile(t, filepath.Join(dir, "CLAUDE.md")); got != "# New\n" {
		t.Errorf("CLAUDE.md = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "AGENTS.md")); got != "# New\n" {
		t.Errorf("AGENTS.md = %q", got)
	}
	rules := readFile(t, filepath.Join(dir, ".cursor", "rules", "specify-rules.mdc"))
	if !strings.HasPrefix(rules, "---\ndescription: SpecForge project context\n") || !strings.HasSuffix(rules, "# New\n") {
		t.Errorf("cursor rules = %q", rules)
	}
	if got := readFile(t, filepath.Join(dir, "GEMINI.md")); !strings.HasPrefix(got, "---\ntitle") {
		t.Errorf("source file rewritten: %q", got)
	}
}

func TestSyncContextNothingToSync(t *testing.T) {
	res, err := SyncContext(t.TempDir(), profiles(t, "claude", "gemini"))
	if err != nil {
		t.Fatalf("SyncContext: %v", err)
	}
	if res.Source != "" || res.Synced != 0 {
		t.Errorf("res = %+v, want empty", res)
	}
}

func TestMarkdownBody(t *testing.T) {
	tests := []struct{ in, want string }{
		{"# Plain\n", "# Plain\n"},
		{"---\ndescription: x\n---\n\n# Body\n", "# Body\n"},
		{"---\nunterminated\n", "---\nunterminated\n"},
	}
	for _, tt := range tests {
		if got := markdownBody(tt.in); got != tt.want {
			t.Errorf("markdownBody(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSyncWorkingPerFileNewestWins(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".claude/skills/review/SKILL.md":       "claude v2",
		".gemini/skills/review/SKILL.md":       "gemini v1",
		".gemini/skills/only-gemini.md":        "gemini only",
		".claude/agents/specforge/reviewer.md": "reviewer",
		".claude/agents/other/untouched.md":    "other",
	})
	now := time.Now()
	touch(t, filepath.Join(dir, ".gemini", "skills", "review", "SKILL.md"), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, ".claude", "skills", "review", "SKILL.md"), now)

	n, err := SyncWorking(dir, profiles(t, "claude", "gemini"))
	if err != nil {
		t.Fatalf("SyncWorking: %v", err)
	}
	if n != 3 {
		t.Errorf("synced %d files, want 3", n)
	}
	if got := readFile(t, filepath.Join(dir, ".gemini", "skills", "review", "SKILL.md")); got != "claude v2" {
		t.Errorf("gemini SKILL.md = %q, want newest copy", got)
	}
	if got := readFile(t, filepath.Join(dir, ".claude", "skills", "only-gemini.md")); got != "gemini only" {
		t.Errorf("claude only-gemini.md = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, ".gemini", "agents", "specforge", "reviewer.md")); got != "reviewer" {
		t.Errorf("gemini reviewer.md = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, ".gemini", "agents", "other")); !os.IsNotExist(err) {
		t.Error("agents/other synced, want only the command-prefix subfolder")
	}

	again, err := SyncWorking(dir, profiles(t, "claude", "gemini"))
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Errorf("second sync wrote %d files, want 0", again)
	}
}
