package agent

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/specforge-labs/forge/internal/branding"
)

//go:embed agents.yaml
var registryYAML []byte

// Command file formats.
const (
	FormatMarkdown = "md"
	FormatTOML     = "toml"
	FormatAgentMD  = "agent.md"
)

// Profile describes one supported AI coding agent.
type Profile struct {
	Key           string `yaml:"key"`
	Name          string `yaml:"name"`
	Folder        string `yaml:"folder"`
	InstallURL    string `yaml:"install_url"`
	RequiresCLI   bool   `yaml:"requires_cli"`
	CLI           string `yaml:"cli"`
	ContextFile   string `yaml:"context_file"`
	ContextPath   string `yaml:"context_path"`
	CommandDir    string `yaml:"command_dir"`
	CommandFormat string `yaml:"command_format"`
	ArgFormat     string `yaml:"arg_format"`
	ProjectDirEnv string `yaml:"project_dir_env"`
}

// Executable returns the CLI name probed for this agent.
func (p Profile) Executable() string {
	if p.CLI != "" {
		return p.CLI
	}
	return p.Key
}

// Dir returns the agent folder without its trailing slash (e.g. ".claude").
func (p Profile) Dir() string {
	return strings.TrimSuffix(p.Folder, "/")
}

// ContextGlob returns the glob that matches this agent's context file.
func (p Profile) ContextGlob() string {
	if p.ContextFile == "" {
		return ""
	}
	return "**/*" + p.ContextFile
}

// CommandFileName returns the file name a slash command is written under,
// e.g. "specforge.plan.md" or "specforge.plan.toml".
func (p Profile) CommandFileName(command string) string {
	return branding.CommandPrefix() + "." + command + "." + p.CommandFormat
}

// ScriptVariant describes one helper-script shell family.
type ScriptVariant struct {
	Key         string `yaml:"key"`
	Label       string `yaml:"label"`
	Extension   string `yaml:"extension"`
	Dir         string `yaml:"dir"`
	Interpreter string `yaml:"interpreter"`
}

// Registry is the immutable set of agents and script variants.
type Registry struct {
	agents  []Profile
	scripts []ScriptVariant
}

type registryFile struct {
	Agents  []Profile       `yaml:"agents"`
	Scripts []ScriptVariant `yaml:"scripts"`
}

// Load parses the embedded registry.
func Load() (*Registry, error) {
	return Parse(registryYAML)
}

// Parse validates data against the registry schema and decodes it.
func Parse(data []byte) (*Registry, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		msgs := make([]string, 0, len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Path != "" {
				msgs = append(msgs, issue.Path+": "+issue.Message)
			} else {
				msgs = append(msgs, issue.Message)
			}
		}
		return nil, fmt.Errorf("invalid agent registry: %s", strings.Join(msgs, "; "))
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding agent registry: %w", err)
	}

	seen := make(map[string]bool)
	for _, a := range f.Agents {
		if seen["agent:"+a.Key] {
			return nil, fmt.Errorf("invalid agent registry: duplicate agent %q", a.Key)
		}
		seen["agent:"+a.Key] = true
	}
	for _, s := range f.Scripts {
		if seen["script:"+s.Key] {
			return nil, fmt.Errorf("invalid agent registry: duplicate script variant %q", s.Key)
		}
		seen["script:"+s.Key] = true
	}

	return &Registry{agents: f.Agents, scripts: f.Scripts}, nil
}

// Agents returns all agents in registry order.
func (r *Registry) Agents() []Profile {
	out := make([]Profile, len(r.agents))
	copy(out, r.agents)
	return out
}

// AgentKeys returns the agent identifiers in registry order.
func (r *Registry) AgentKeys() []string {
	keys := make([]string, len(r.agents))
	for i, a := range r.agents {
		keys[i] = a.Key
	}
	return keys
}

// Agent looks up an agent by key.
func (r *Registry) Agent(key string) (Profile, bool) {
	for _, a := range r.agents {
		if a.Key == key {
			return a, true
		}
	}
	return Profile{}, false
}

// LookupAgent is Agent with an ErrUnknownAgent that lists the valid keys.
func (r *Registry) LookupAgent(key string) (Profile, error) {
	if p, ok := r.Agent(key); ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("%w %q: choose from: %s", ErrUnknownAgent, key, strings.Join(r.AgentKeys(), ", "))
}

// Scripts returns all script variants in registry order.
func (r *Registry) Scripts() []ScriptVariant {
	out := make([]ScriptVariant, len(r.scripts))
	copy(out, r.scripts)
	return out
}

// ScriptKeys returns the script variant identifiers in registry order.
func (r *Registry) ScriptKeys() []string {
	keys := make([]string, len(r.scripts))
	for i, s := range r.scripts {
		keys[i] = s.Key
	}
	return keys
}

// Script looks up a script variant by key.
func (r *Registry) Script(key string) (ScriptVariant, bool) {
	for _, s := range r.scripts {
		if s.Key == key {
			return s, true
		}
	}
	return ScriptVariant{}, false
}

// LookupScript is Script with an ErrUnknownScript that lists the valid keys.
func (r *Registry) LookupScript(key string) (ScriptVariant, error) {
	if s, ok := r.Script(key); ok {
		return s, nil
	}
	return ScriptVariant{}, fmt.Errorf("%w %q: choose from: %s", ErrUnknownScript, key, strings.Join(r.ScriptKeys(), ", "))
}

// DefaultScriptKey returns the platform's default script variant: "ps" on
// Windows and "sh" elsewhere. An empty goos means the running platform.
func DefaultScriptKey(goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "windows" {
		return "ps"
	}
	return "sh"
}
