package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/specforge-labs/forge/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyGitHubToken    = "github_token"
	KeyTemplateSource = "template_source"
	KeyDefaultAgent   = "default_agent"
	KeyProbeTimeout   = "probe_timeout"
	KeyFetchTimeout   = "fetch_timeout"
)

const (
	defaultProbeTimeout = 3 * time.Second
	defaultFetchTimeout = 60 * time.Second
)

// Keys returns the recognized configuration keys in sorted order.
func Keys() []string {
	keys := []string{KeyGitHubToken, KeyTemplateSource, KeyDefaultAgent, KeyProbeTimeout, KeyFetchTimeout}
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key is one of Keys().
func IsKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Dir returns the path to the user config directory (~/.specforge/).
// SPECFORGE_HOME overrides the location.
func Dir() string {
	if override := os.Getenv(branding.EnvVar("HOME")); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.specforge/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyProbeTimeout, defaultProbeTimeout.String())
	viper.SetDefault(KeyFetchTimeout, defaultFetchTimeout.String())

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GitHubToken resolves the token used for release API requests. The flag
// value wins, then GH_TOKEN, then GITHUB_TOKEN, then the config file.
// An empty result means anonymous access.
func GitHubToken(flagValue string) string {
	for _, candidate := range []string{
		flagValue,
		os.Getenv("GH_TOKEN"),
		os.Getenv("GITHUB_TOKEN"),
		viper.GetString(KeyGitHubToken),
	} {
		if token := strings.TrimSpace(candidate); token != "" {
			return token
		}
	}
	return ""
}

// TemplateSource returns the configured default template source, if any.
func TemplateSource() string {
	return strings.TrimSpace(viper.GetString(KeyTemplateSource))
}

// DefaultAgent returns the agent highlighted first in the interactive picker.
func DefaultAgent() string {
	return strings.TrimSpace(viper.GetString(KeyDefaultAgent))
}

// ProbeTimeout bounds each tool `--version` invocation.
func ProbeTimeout() time.Duration {
	return durationOr(KeyProbeTimeout, defaultProbeTimeout)
}

// FetchTimeout bounds the whole remote template fetch.
func FetchTimeout() time.Duration {
	return durationOr(KeyFetchTimeout, defaultFetchTimeout)
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}
