// Package branding provides compile-time identity values for the CLI.
//
// The product name, home directory, environment prefix, and the GitHub
// repository that publishes template releases all live in branding.yaml,
// which //go:embed bakes into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	Tagline       string `yaml:"tagline"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	GoModule      string `yaml:"go_module"`
	GitHubRepo    string `yaml:"github_repo"`
	AssetPrefix   string `yaml:"asset_prefix"`
	CommandPrefix string `yaml:"command_prefix"`

	LegacyHomeDir       string `yaml:"legacy_home_dir"`
	LegacyCommandPrefix string `yaml:"legacy_command_prefix"`
	LegacyEnvPrefix     string `yaml:"legacy_env_prefix"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:       "forge",
			DisplayName:   "SpecForge",
			Description:   "Scaffold spec-driven development projects for AI coding agents",
			Tagline:       "SpecForge - Spec-Driven Development Toolkit",
			HomeDir:       ".specforge",
			EnvPrefix:     "SPECFORGE",
			GoModule:      "github.com/specforge-labs/forge",
			GitHubRepo:    "Censseo/specforge",
			AssetPrefix:   "specforge-template",
			CommandPrefix: "specforge",

			LegacyHomeDir:       ".specify",
			LegacyCommandPrefix: "speckit",
			LegacyEnvPrefix:     "SPECIFY",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "forge").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "SpecForge").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// Tagline returns the line printed under the banner.
func Tagline() string { load(); return defaults.Tagline }

// HomeDir returns the dot-directory name used both under $HOME for user
// settings and inside scaffolded projects (e.g., ".specforge").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SPECFORGE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" that publishes template releases.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// AssetPrefix returns the release asset name prefix (e.g., "specforge-template").
func AssetPrefix() string { load(); return defaults.AssetPrefix }

// CommandPrefix returns the slash-command namespace (e.g., "specforge").
func CommandPrefix() string { load(); return defaults.CommandPrefix }

// LegacyHomeDir returns the project directory used before the rename
// (e.g., ".specify"). The migrate command moves it to HomeDir.
func LegacyHomeDir() string { load(); return defaults.LegacyHomeDir }

// LegacyCommandPrefix returns the pre-rename slash-command namespace.
func LegacyCommandPrefix() string { load(); return defaults.LegacyCommandPrefix }

// LegacyEnvVar is EnvVar under the pre-rename prefix.
func LegacyEnvVar(suffix string) string {
	load()
	return defaults.LegacyEnvPrefix + "_" + strings.ToUpper(suffix)
}

// EnvVar returns a fully qualified env var name, e.g., EnvVar("FEATURE") → "SPECFORGE_FEATURE".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
