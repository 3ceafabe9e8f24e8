package bundle

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
)

var (
	descriptionRe = regexp.MustCompile(`(?m)^description:\s*(.+)$`)
	sectionRe     = regexp.MustCompile(`^(scripts|agent_scripts):\s*$`)
	bareDirRe     = regexp.MustCompile("(?m)(^|[\\s`\"'])/?(memory|scripts|templates)/")
)

// Command is one slash command rendered for a specific agent.
type Command struct {
	Name        string
	Description string
	Body        string
}

// RenderCommand applies the agent and script substitutions to a command
// template. name is the template's base name without extension.
func RenderCommand(name, content string, profile agent.Profile, script agent.ScriptVariant) Command {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var description string
	if m := descriptionRe.FindStringSubmatch(content); m != nil {
		description = unquote(strings.TrimSpace(m[1]))
	}

	scriptRe := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(script.Key) + `:\s*(.+)$`)
	var scriptLine string
	if m := scriptRe.FindStringSubmatch(content); m != nil {
		scriptLine = strings.TrimSpace(m[1])
	}
	content = strings.ReplaceAll(content, "{SCRIPT}", scriptLine)
	content = dropScriptSections(content)

	// __AGENT__ is a substring of the longer placeholders, so it goes last.
	content = strings.NewReplacer(
		"{ARGS}", profile.ArgFormat,
		"__AGENT_DIR__", profile.Dir(),
		"__AGENT_NAME__", profile.Name,
		"__AGENT_CONTEXT_FILE__", profile.ContextFile,
		"__AGENT_CONTEXT_GLOB__", profile.ContextGlob(),
		"__AGENT_PROJECT_DIR_ENV__", projectDirEnv(profile),
	).Replace(content)
	content = strings.ReplaceAll(content, "__AGENT__", profile.Key)
	content = RewritePaths(content)

	return Command{Name: name, Description: description, Body: content}
}

// RewritePaths points bare memory/, scripts/ and templates/ references at
// their location under the project's home directory.
func RewritePaths(content string) string {
	return bareDirRe.ReplaceAllString(content, "${1}"+branding.HomeDir()+"/${2}/")
}

// dropScriptSections removes the scripts: and agent_scripts: blocks from
// the frontmatter. Their indented children go with them.
func dropScriptSections(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	skip := false
	for _, line := range lines {
		if sectionRe.MatchString(line) {
			skip = true
			continue
		}
		if skip && strings.HasPrefix(line, "  ") {
			continue
		}
		if skip && (strings.HasPrefix(line, "---") || (line != "" && !strings.HasPrefix(line, " "))) {
			skip = false
		}
		if !skip {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func projectDirEnv(p agent.Profile) string {
	if p.ProjectDirEnv == "" {
		return "$PWD"
	}
	return p.ProjectDirEnv
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

type tomlCommand struct {
	Description string `toml:"description"`
	Prompt      string `toml:"prompt,multiline"`
}

// Encode serializes a rendered command in the given command file format.
func Encode(cmd Command, format string) ([]byte, error) {
	switch format {
	case agent.FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(tomlCommand{Description: cmd.Description, Prompt: cmd.Body}); err != nil {
			return nil, fmt.Errorf("encoding %s as toml: %w", cmd.Name, err)
		}
		return buf.Bytes(), nil
	case agent.FormatMarkdown, agent.FormatAgentMD:
		return []byte(cmd.Body), nil
	default:
		return nil, fmt.Errorf("unsupported command format %q", format)
	}
}

// PromptStub returns the .github/prompts entry that points Copilot's
// prompt picker at an agent file.
func PromptStub(command string) []byte {
	return []byte("---\nagent: " + branding.CommandPrefix() + "." + command + "\n---\n")
}
