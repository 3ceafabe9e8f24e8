package ui

import (
	"strings"
	"testing"
)

func TestToolTable(t *testing.T) {
	out := ToolTable([]ToolRow{
		{Status: StatusOK, Name: "git", Detail: "2.43.0"},
		{Status: StatusMiss, Name: "claude", Detail: "not found"},
		{Status: StatusSkip, Name: "copilot", Detail: "IDE-based, no CLI check"},
	})
	for _, want := range []string{"STATUS", "[ OK ]", "[MISS]", "[SKIP]", "git", "2.43.0", "IDE-based, no CLI check"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownPlain(t *testing.T) {
	md := "## Next Steps\n\n1. `cd demo`\n"
	if got := RenderMarkdown(md, 80, false); got != md {
		t.Errorf("RenderMarkdown(plain) = %q, want unchanged", got)
	}
}

func TestRenderMarkdownStyled(t *testing.T) {
	got := RenderMarkdown("## Next Steps\n\nRun the command.\n", 80, true)
	if !strings.Contains(got, "Next Steps") || !strings.Contains(got, "Run the command.") {
		t.Errorf("styled render lost content: %q", got)
	}
}

func TestLineHelpers(t *testing.T) {
	if !strings.Contains(Warn("careful"), "[WARN]") {
		t.Error("Warn missing tag")
	}
	if !strings.Contains(Fail("broken"), "[FAIL]") {
		t.Error("Fail missing tag")
	}
	if !strings.Contains(OK("fine"), "[ OK ]") {
		t.Error("OK missing tag")
	}
	if !strings.Contains(Panel("Title", "body"), "body") {
		t.Error("Panel missing body")
	}
}
