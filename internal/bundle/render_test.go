package bundle

import (
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/specforge-labs/forge/internal/agent"
)

const planTemplate = "---\r\n" +
	"description: Generate an implementation plan.\r\n" +
	"scripts:\r\n" +
	"  sh: scripts/bash/setup-plan.sh --json\r\n" +
	"  ps: scripts/powershell/setup-plan.ps1 -Json\r\n" +
	"agent_scripts:\r\n" +
	"  sh: scripts/bash/update-agent-context.sh __AGENT__\r\n" +
	"---\r\n" +
	"\r\n" +
	"Run `{SCRIPT}` with {ARGS}.\r\n" +
	"Context lives in __AGENT_CONTEXT_FILE__ under __AGENT_DIR__ for __AGENT_NAME__.\r\n" +
	"Update agent __AGENT__ from __AGENT_PROJECT_DIR_ENV__.\r\n" +
	"Read memory/constitution.md and templates/plan-template.md.\r\n"

func mustRegistry(t *testing.T) *agent.Registry {
	t.Helper()
	reg, err := agent.Load()
	if err != nil {
		t.Fatalf("agent.Load: %v", err)
	}
	return reg
}

func TestRenderCommandClaude(t *testing.T) {
	reg := mustRegistry(t)
	claude, _ := reg.Agent("claude")
	sh, _ := reg.Script("sh")

	cmd := RenderCommand("plan", planTemplate, claude, sh)

	if cmd.Description != "Generate an implementation plan." {
		t.Errorf("Description = %q", cmd.Description)
	}
	if strings.Contains(cmd.Body, "\r") {
		t.Error("body still contains carriage returns")
	}

	wantContains := []string{
		"Run `.specforge/scripts/bash/setup-plan.sh --json` with $ARGUMENTS.",
		"Context lives in CLAUDE.md under .claude for Claude Code.",
		"Update agent claude from $CLAUDE_PROJECT_DIR.",
		"Read .specforge/memory/constitution.md and .specforge/templates/plan-template.md.",
	}
	for _, want := range wantContains {
		if !strings.Contains(cmd.Body, want) {
			t.Errorf("body missing %q\n%s", want, cmd.Body)
		}
	}

	for _, gone := range []string{"scripts:", "agent_scripts:", "ps: ", "__AGENT", "{SCRIPT}", "{ARGS}"} {
		if strings.Contains(cmd.Body, gone) {
			t.Errorf("body still contains %q\n%s", gone, cmd.Body)
		}
	}
	if !strings.HasPrefix(cmd.Body, "---\ndescription: Generate an implementation plan.\n---\n") {
		t.Errorf("frontmatter not preserved:\n%s", cmd.Body)
	}
}

func TestRenderCommandPowerShell(t *testing.T) {
	reg := mustRegistry(t)
	gemini, _ := reg.Agent("gemini")
	ps, _ := reg.Script("ps")

	cmd := RenderCommand("plan", planTemplate, gemini, ps)

	if !strings.Contains(cmd.Body, "Run `.specforge/scripts/powershell/setup-plan.ps1 -Json` with {{args}}.") {
		t.Errorf("unexpected body:\n%s", cmd.Body)
	}
}

func TestRewritePaths(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"memory/a.md", ".specforge/memory/a.md"},
		{"/scripts/x.sh", ".specforge/scripts/x.sh"},
		{"see `templates/t.md`", "see `.specforge/templates/t.md`"},
		{`"memory/a" 'scripts/b'`, `".specforge/memory/a" '.specforge/scripts/b'`},
		{".specforge/memory/a.md", ".specforge/memory/a.md"},
		{"docs/memory/a.md", "docs/memory/a.md"},
		{"memorymemory/", "memorymemory/"},
		{"a\nscripts/b", "a\n.specforge/scripts/b"},
	}
	for _, tt := range tests {
		if got := RewritePaths(tt.in); got != tt.want {
			t.Errorf("RewritePaths(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeTOML(t *testing.T) {
	cmd := Command{
		Name:        "plan",
		Description: `Plan with "quotes"`,
		Body:        "line one\nC:\\path\\to\nline three",
	}

	data, err := Encode(cmd, agent.FormatTOML)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded struct {
		Description string `toml:"description"`
		Prompt      string `toml:"prompt"`
	}
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid toml: %v\n%s", err, data)
	}
	if decoded.Description != cmd.Description {
		t.Errorf("description = %q, want %q", decoded.Description, cmd.Description)
	}
	if strings.TrimSpace(decoded.Prompt) != cmd.Body {
		t.Errorf("prompt = %q, want %q", decoded.Prompt, cmd.Body)
	}
}

func TestEncodeMarkdownPassthrough(t *testing.T) {
	cmd := Command{Name: "plan", Body: "# Plan\n"}
	for _, format := range []string{agent.FormatMarkdown, agent.FormatAgentMD} {
		data, err := Encode(cmd, format)
		if err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		if string(data) != cmd.Body {
			t.Errorf("Encode(%s) = %q, want %q", format, data, cmd.Body)
		}
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if _, err := Encode(Command{Name: "plan"}, "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestPromptStub(t *testing.T) {
	want := "---\nagent: specforge.plan\n---\n"
	if got := string(PromptStub("plan")); got != want {
		t.Errorf("PromptStub = %q, want %q", got, want)
	}
}
