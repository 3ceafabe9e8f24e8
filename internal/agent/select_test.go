package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/specforge-labs/forge/internal/probe"
)

type scriptedChooser struct {
	answers  []string
	err      error
	titles   []string
	defaults []string
}

func (c *scriptedChooser) Choose(_ context.Context, title string, choices []Choice, defaultKey string) (string, error) {
	c.titles = append(c.titles, title)
	c.defaults = append(c.defaults, defaultKey)
	if c.err != nil {
		return "", c.err
	}
	if len(c.answers) == 0 {
		return defaultKey, nil
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

type stubProber struct {
	present map[string]bool
	probed  []string
}

func (p *stubProber) Probe(_ context.Context, name string) probe.Result {
	p.probed = append(p.probed, name)
	return probe.Result{Name: name, Present: p.present[name]}
}

func TestSelectAllValidPairs(t *testing.T) {
	r := loadRegistry(t)

	for _, a := range r.AgentKeys() {
		for _, s := range r.ScriptKeys() {
			t.Run(a+"/"+s, func(t *testing.T) {
				sel, err := r.Select(context.Background(), Request{Agent: a, Script: s}, nil, nil)
				if err != nil {
					t.Fatalf("Select: %v", err)
				}
				if sel.Agent.Key != a || sel.Script.Key != s {
					t.Errorf("got (%s, %s), want (%s, %s)", sel.Agent.Key, sel.Script.Key, a, s)
				}
			})
		}
	}
}

func TestSelectUnknownIdentifiers(t *testing.T) {
	r := loadRegistry(t)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"unknown agent", Request{Agent: "emacs", Script: "sh"}, ErrUnknownAgent},
		{"unknown script", Request{Agent: "claude", Script: "zsh"}, ErrUnknownScript},
		{"agent case sensitive", Request{Agent: "Claude", Script: "sh"}, ErrUnknownAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Select(context.Background(), tt.req, &scriptedChooser{}, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSelectNonInteractiveRequiresAgent(t *testing.T) {
	r := loadRegistry(t)
	chooser := &scriptedChooser{}

	_, err := r.Select(context.Background(), Request{Script: "sh"}, chooser, nil)
	if !errors.Is(err, ErrAmbiguousSelection) {
		t.Fatalf("error = %v, want ErrAmbiguousSelection", err)
	}
	if !strings.Contains(err.Error(), "--ai") {
		t.Errorf("error should suggest --ai: %v", err)
	}
	if len(chooser.titles) != 0 {
		t.Error("chooser must not be consulted when not interactive")
	}
}

func TestSelectNonInteractiveScriptDefaultsByPlatform(t *testing.T) {
	r := loadRegistry(t)

	tests := []struct {
		goos string
		want string
	}{
		{"windows", "ps"},
		{"linux", "sh"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			sel, err := r.Select(context.Background(), Request{Agent: "copilot", GOOS: tt.goos}, nil, nil)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if sel.Script.Key != tt.want {
				t.Errorf("script = %q, want %q", sel.Script.Key, tt.want)
			}
		})
	}
}

func TestSelectInteractive(t *testing.T) {
	r := loadRegistry(t)
	chooser := &scriptedChooser{answers: []string{"gemini", "ps"}}

	sel, err := r.Select(context.Background(), Request{Interactive: true, GOOS: "linux"}, chooser, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Agent.Key != "gemini" || sel.Script.Key != "ps" {
		t.Errorf("got (%s, %s), want (gemini, ps)", sel.Agent.Key, sel.Script.Key)
	}
	if len(chooser.defaults) != 2 || chooser.defaults[0] != "copilot" || chooser.defaults[1] != "sh" {
		t.Errorf("defaults offered = %v, want [copilot sh]", chooser.defaults)
	}
}

func TestSelectInteractiveConfiguredDefault(t *testing.T) {
	r := loadRegistry(t)
	chooser := &scriptedChooser{}

	sel, err := r.Select(context.Background(), Request{Interactive: true, Script: "sh", DefaultAgent: "codex"}, chooser, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Agent.Key != "codex" {
		t.Errorf("agent = %q, want codex", sel.Agent.Key)
	}
	if len(chooser.titles) != 1 {
		t.Errorf("script was given, chooser should run once; ran %d times", len(chooser.titles))
	}
}

func TestSelectInteractiveCancelled(t *testing.T) {
	r := loadRegistry(t)
	chooser := &scriptedChooser{err: fmt.Errorf("picker: %w", ErrSelectionCancelled)}

	_, err := r.Select(context.Background(), Request{Interactive: true}, chooser, nil)
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("error = %v, want ErrSelectionCancelled", err)
	}
}

func TestSelectToolCheck(t *testing.T) {
	r := loadRegistry(t)

	t.Run("missing CLI warns", func(t *testing.T) {
		prober := &stubProber{}
		sel, err := r.Select(context.Background(), Request{Agent: "claude", Script: "sh", CheckTools: true}, nil, prober)
		if err != nil {
			t.Fatalf("missing CLI must not be fatal: %v", err)
		}
		if len(sel.Warnings) != 1 || !strings.Contains(sel.Warnings[0], "--ignore-agent-tools") {
			t.Errorf("warnings = %v", sel.Warnings)
		}
		if sel.Tool == nil || sel.Tool.Present {
			t.Errorf("tool = %+v", sel.Tool)
		}
	})

	t.Run("present CLI", func(t *testing.T) {
		prober := &stubProber{present: map[string]bool{"gemini": true}}
		sel, err := r.Select(context.Background(), Request{Agent: "gemini", Script: "sh", CheckTools: true}, nil, prober)
		if err != nil {
			t.Fatal(err)
		}
		if len(sel.Warnings) != 0 {
			t.Errorf("unexpected warnings %v", sel.Warnings)
		}
	})

	t.Run("IDE agent not probed", func(t *testing.T) {
		prober := &stubProber{}
		if _, err := r.Select(context.Background(), Request{Agent: "copilot", Script: "sh", CheckTools: true}, nil, prober); err != nil {
			t.Fatal(err)
		}
		if len(prober.probed) != 0 {
			t.Errorf("probed %v for an IDE agent", prober.probed)
		}
	})

	t.Run("checks disabled", func(t *testing.T) {
		prober := &stubProber{}
		sel, err := r.Select(context.Background(), Request{Agent: "claude", Script: "sh"}, nil, prober)
		if err != nil {
			t.Fatal(err)
		}
		if len(prober.probed) != 0 || sel.Tool != nil {
			t.Error("probe ran with CheckTools=false")
		}
	})
}
