package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/specforge-labs/forge/internal/probe"
)

// fallbackAgent is highlighted first in the picker when no default is configured.
const fallbackAgent = "copilot"

// Choice is one entry of an interactive list.
type Choice struct {
	Key   string
	Label string
}

// Chooser presents a list and returns the chosen key. It returns an error
// wrapping ErrSelectionCancelled when the user dismisses the list.
type Chooser interface {
	Choose(ctx context.Context, title string, choices []Choice, defaultKey string) (string, error)
}

// ToolProber is the subset of *probe.Prober the selector needs.
type ToolProber interface {
	Probe(ctx context.Context, name string) probe.Result
}

// Request is the raw selection input from the command line.
type Request struct {
	Agent  string
	Script string

	// Interactive is true only when a terminal is attached; it is decided
	// by the caller and never sniffed here.
	Interactive bool

	// CheckTools enables probing the chosen agent's CLI.
	CheckTools bool

	// DefaultAgent is highlighted first in the agent picker.
	DefaultAgent string

	// GOOS selects the platform default script; empty means the running OS.
	GOOS string
}

// Selection is the resolved (agent, script) pair.
type Selection struct {
	Agent  Profile
	Script ScriptVariant

	// Tool is the probe result for the agent CLI, nil when not probed.
	Tool *probe.Result

	// Warnings are non-fatal notes for the user, e.g. a missing agent CLI.
	Warnings []string
}

// Select resolves req against the registry. Unknown identifiers fail with
// ErrUnknownAgent or ErrUnknownScript. An omitted agent is chosen
// interactively when possible and fails with ErrAmbiguousSelection
// otherwise. An omitted script is chosen interactively or falls back to the
// platform default.
func (r *Registry) Select(ctx context.Context, req Request, chooser Chooser, prober ToolProber) (*Selection, error) {
	sel := &Selection{}

	agentKey := req.Agent
	if agentKey == "" {
		if !req.Interactive || chooser == nil {
			return nil, fmt.Errorf("%w: no agent given and not running interactively; pass --ai with one of: %s",
				ErrAmbiguousSelection, strings.Join(r.AgentKeys(), ", "))
		}
		def := req.DefaultAgent
		if _, ok := r.Agent(def); !ok {
			def = fallbackAgent
		}
		choices := make([]Choice, 0, len(r.agents))
		for _, a := range r.agents {
			choices = append(choices, Choice{Key: a.Key, Label: a.Name})
		}
		chosen, err := chooser.Choose(ctx, "Choose your AI assistant", choices, def)
		if err != nil {
			return nil, err
		}
		agentKey = chosen
	}

	profile, err := r.LookupAgent(agentKey)
	if err != nil {
		return nil, err
	}
	sel.Agent = profile

	scriptKey := req.Script
	if scriptKey == "" {
		scriptKey = DefaultScriptKey(req.GOOS)
		if req.Interactive && chooser != nil {
			choices := make([]Choice, 0, len(r.scripts))
			for _, s := range r.scripts {
				choices = append(choices, Choice{Key: s.Key, Label: s.Label})
			}
			chosen, err := chooser.Choose(ctx, "Choose script type (or press Enter)", choices, scriptKey)
			if err != nil {
				return nil, err
			}
			scriptKey = chosen
		}
	}

	script, err := r.LookupScript(scriptKey)
	if err != nil {
		return nil, err
	}
	sel.Script = script

	if req.CheckTools && profile.RequiresCLI && prober != nil {
		res := prober.Probe(ctx, profile.Executable())
		sel.Tool = &res
		if !res.Present {
			sel.Warnings = append(sel.Warnings, fmt.Sprintf(
				"%s (%s) not found; install from %s or pass --ignore-agent-tools to skip this check",
				profile.Name, profile.Executable(), profile.InstallURL))
		}
	}

	return sel, nil
}
